package models

// BatchError records one failed embed-or-upsert batch. Batch numbers are
// 1-based to match operator-facing logs.
type BatchError struct {
	Batch   int    `json:"batch"`
	Stage   string `json:"stage"` // "embed" or "upsert"
	Message string `json:"message"`
}

// IngestReport summarizes an ingestion run. A run with batch errors is still
// a completed run; the counts say how far it got.
type IngestReport struct {
	TotalDocuments int          `json:"total_documents"`
	TotalChunks    int          `json:"total_chunks"`
	TotalIndexed   int          `json:"total_indexed"`
	VectorCount    int64        `json:"vector_count"` // -1 when the post-run stats probe failed
	Cleared        bool         `json:"cleared"`
	Errors         []BatchError `json:"errors,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
}
