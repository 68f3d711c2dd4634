package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentInfo describes an uploaded document after it has been archived and
// indexed.
type DocumentInfo struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
