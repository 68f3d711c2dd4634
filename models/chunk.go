package models

import "time"

// Chunk is one indexable piece of a legal section or uploaded document,
// carrying everything needed to build its vector record.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Act       Act       `json:"act,omitempty"`
	Section   string    `json:"section,omitempty"`
	Title     string    `json:"title,omitempty"`
	Source    string    `json:"source,omitempty"`
	Ordinal   int       `json:"ordinal"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Metadata builds the vector metadata payload. The chunk text is copied in
// truncated to textLimit runes so retrieval can quote it without a second
// lookup.
func (c *Chunk) Metadata(textLimit int) map[string]interface{} {
	m := map[string]interface{}{
		"text":         TruncateRunes(c.Text, textLimit),
		"chunk":        c.Ordinal,
		"total_chunks": c.Total,
		"indexed_at":   c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.Act != "" {
		m["act"] = c.Act
	}
	if c.Section != "" {
		m["section"] = c.Section
	}
	if c.Title != "" {
		m["title"] = c.Title
	}
	if c.Source != "" {
		m["source"] = c.Source
	}
	return m
}

// TruncateRunes shortens s to at most limit runes. Multi-byte text is cut on
// rune boundaries, never mid-character.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
