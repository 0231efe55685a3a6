package models

import "time"

// AuditRecord is one row of the mockup audit trail.
type AuditRecord struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Color     string    `json:"color"`
	UploadURL string    `json:"upload_url,omitempty"`
	MockupURL string    `json:"mockup_url,omitempty"`
	FileSize  int64     `json:"file_size"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
