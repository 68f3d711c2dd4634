package models

// RetrievedDoc is one retrieval result reconstructed from vector metadata.
type RetrievedDoc struct {
	ID      string  `json:"id"`
	Act     Act     `json:"act"`
	Section string  `json:"section,omitempty"`
	Title   string  `json:"title,omitempty"`
	Text    string  `json:"text"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score"`
}

// SourceSnippet is the citation form of a retrieved document returned
// alongside an answer.
type SourceSnippet struct {
	ID      string `json:"id"`
	Act     Act    `json:"act"`
	Section string `json:"section,omitempty"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
}

// ChatResult is the composed answer with the sources that grounded it.
type ChatResult struct {
	Answer  string          `json:"answer"`
	Sources []SourceSnippet `json:"sources"`
}
