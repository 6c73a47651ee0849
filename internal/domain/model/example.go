package model

// ExampleItem is one entry of the read-only example gallery.
type ExampleItem struct {
	ID           string `json:"-"`
	Title        string `json:"title"`
	Prompt       string `json:"prompt"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Duration     string `json:"duration"`
}
