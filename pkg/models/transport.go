package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// RenderedRecord pairs a record with the HTML fragments shown for it
type RenderedRecord struct {
	Record   AnalyzedImage `json:"record"`
	RowHTML  string        `json:"row_html"`
	CardHTML string        `json:"card_html"`
}

// UploadResponse is returned after a batch of files has been analyzed.
// Records are listed in the order they were appended to the history.
type UploadResponse struct {
	SessionID    string           `json:"session_id"`
	Records      []RenderedRecord `json:"records"`
	Rejected     []RejectedUpload `json:"rejected,omitempty"`
	HistoryCount int              `json:"history_count"`
	ChartVersion uint64           `json:"chart_version"`
}

// RejectedUpload names a file that could not be read
type RejectedUpload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// HistoryResponse is a read-only view of a session's history
type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Records   []AnalyzedImage `json:"records"`
	Count     int             `json:"count"`
}
