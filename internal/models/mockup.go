package models

import "time"

// MockupRequest is the JSON body accepted by the mockup endpoints.
type MockupRequest struct {
	Image string `json:"image"`
	Model string `json:"model,omitempty"`
	Color string `json:"color,omitempty"`
}

// Mockup is a composited device image.
type Mockup struct {
	PNG    []byte
	Model  string
	Color  string
	Width  int
	Height int
}

// MockupResult is the outcome of one mockup request, including persisted copies.
type MockupResult struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	Color       string    `json:"color"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	FileSize    int64     `json:"file_size"`
	UploadURL   string    `json:"upload_url,omitempty"`
	MockupURL   string    `json:"mockup_url,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

type BatchItem struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	URL      string `json:"url,omitempty"`
	Data     string `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

type BatchResponse struct {
	Model       string      `json:"model"`
	Color       string      `json:"color"`
	Images      []BatchItem `json:"images"`
	ProcessedAt time.Time   `json:"processed_at"`
}

// UploadFile is one object queued for upload to the blob store.
type UploadFile struct {
	Filename    string
	Data        []byte
	ContentType string
}
