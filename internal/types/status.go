package types

// Coarse outcome of one run, returned to the host as-is.
const (
	StatusProcessed = "Image processed"
	StatusSkipped   = "Skipping folder"
	StatusError     = "Error processing image"
)

type Result struct {
	Status string `json:"status"`
}

// StatusData is the payload published to the status exchange after a run.
type StatusData struct {
	RunID    string   `json:"runId,omitempty"`
	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	Status   string   `json:"status"`
	Written  []string `json:"written,omitempty"`
	Failed   []string `json:"failed,omitempty"`
	ErrorMsg string   `json:"errorMsg,omitempty"`
}

// StatusMessage represents the full message envelope
type StatusMessage struct {
	Pattern string     `json:"pattern"`
	Data    StatusData `json:"data"`
}
