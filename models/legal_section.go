package models

// Act identifies the body of law a section belongs to.
type Act = string

const (
	ActIPC     Act = "IPC"
	ActBNS     Act = "BNS"
	ActBSA     Act = "BSA"
	ActCrPC    Act = "CrPC"
	ActStatute Act = "Statute" // fallback for semi-structured statute files
)

// LegalSection is one normalized record from the corpus, either a row of an
// act CSV or an entry from a statute JSON file.
type LegalSection struct {
	ID          string `json:"id"`
	Act         Act    `json:"act"`
	Section     string `json:"section,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text"`
	Source      string `json:"source"` // originating file name
}
