package render

import (
	"fmt"

	apperrors "go-microplastic-inspector/internal/errors"
)

// Tab names shown in the page navigation
const (
	TabUpload  = "upload"
	TabResults = "results"
	TabHistory = "history"
	TabCharts  = "charts"
)

// DefaultTabs is the navigation order of the page
var DefaultTabs = []TabSpec{
	{Name: TabUpload, Title: "Upload"},
	{Name: TabResults, Title: "Results"},
	{Name: TabHistory, Title: "History"},
	{Name: TabCharts, Title: "Charts"},
}

// TabSpec names a tab
type TabSpec struct {
	Name  string
	Title string
}

// Tab is a tab with its visibility state
type Tab struct {
	TabSpec
	Active bool
}

// Navigator tracks which tab is shown. Exactly one tab is active at a time.
type Navigator struct {
	specs  []TabSpec
	active int
}

// NewNavigator creates a navigator with the first tab active
func NewNavigator(specs []TabSpec) *Navigator {
	if len(specs) == 0 {
		specs = DefaultTabs
	}
	return &Navigator{specs: specs}
}

// Activate marks the named tab active and hides every other tab.
// An empty name keeps the current tab.
func (n *Navigator) Activate(name string) error {
	if name == "" {
		return nil
	}
	for i, s := range n.specs {
		if s.Name == name {
			n.active = i
			return nil
		}
	}
	return apperrors.NewValidationError(fmt.Sprintf("unknown tab %q", name), nil)
}

// Active returns the name of the visible tab
func (n *Navigator) Active() string {
	return n.specs[n.active].Name
}

// Tabs returns every tab with its active flag
func (n *Navigator) Tabs() []Tab {
	tabs := make([]Tab, len(n.specs))
	for i, s := range n.specs {
		tabs[i] = Tab{TabSpec: s, Active: i == n.active}
	}
	return tabs
}
