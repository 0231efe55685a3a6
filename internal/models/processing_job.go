package models

import "time"

type MockupJob struct {
	ID            string        `json:"id"`
	ScreenshotKey string        `json:"screenshot_key"`
	UploadURL     string        `json:"upload_url,omitempty"`
	Model         string        `json:"model"`
	Color         string        `json:"color"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at,omitempty"`
	Result        *MockupResult `json:"result,omitempty"`
	Error         string        `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
