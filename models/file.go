package models

import (
	"time"
)

// FileRecord represents a file waiting for its one-time download.
// Records are immutable after creation; they are destroyed by the first
// successful download or by the expiry sweep, whichever comes first.
type FileRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
