package render

import "go-microplastic-inspector/pkg/models"

// PreviewURLFunc maps a record ID to the URL its preview is served from
type PreviewURLFunc func(id string) string

// CategoryCount is one labelled count shown on a card
type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
}

// Card is the visual summary of one analyzed image
type Card struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ShortName    string          `json:"short_name"`
	PreviewURL   string          `json:"preview_url,omitempty"`
	DominantType string          `json:"dominant_type"`
	SizeBucket   string          `json:"size_bucket"`
	Accuracy     string          `json:"accuracy"`
	Counts       []CategoryCount `json:"counts"`
}

// CardFor derives the card for a record
func CardFor(img models.AnalyzedImage, previewURL PreviewURLFunc) Card {
	card := Card{
		ID:           img.ID,
		Name:         img.Name,
		ShortName:    img.ShortName,
		DominantType: img.DominantType(),
		SizeBucket:   string(img.SizeBucket),
		Accuracy:     img.AccuracyPercent(),
		Counts:       make([]CategoryCount, models.CategoryCount),
	}
	if previewURL != nil && img.ID != "" {
		card.PreviewURL = previewURL(img.ID)
	}
	for i, cat := range models.Categories {
		card.Counts[i] = CategoryCount{Category: cat, Count: img.Counts[i]}
	}
	return card
}

// Cards derives the card list, most recent record first
func Cards(snapshot []models.AnalyzedImage, previewURL PreviewURLFunc) []Card {
	cards := make([]Card, len(snapshot))
	for i, img := range snapshot {
		cards[len(snapshot)-1-i] = CardFor(img, previewURL)
	}
	return cards
}
