package models

// VectorRecord is one upsertable vector with its metadata payload.
type VectorRecord struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// VectorMatch is one similarity search hit, highest score first.
type VectorMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IndexStats summarizes the state of the vector index.
type IndexStats struct {
	TotalRecordCount int64            `json:"total_record_count"`
	Dimension        int              `json:"dimension"`
	IndexFullness    float64          `json:"index_fullness"`
	Namespaces       map[string]int64 `json:"namespaces,omitempty"`
}
