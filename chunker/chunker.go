package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"nyayamitra-backend/models"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SplitText cuts text into fixed windows of at most maxChars runes. Windows
// are trimmed and empty windows dropped, so the result never contains blank
// chunks. Used for uploaded documents where word boundaries matter less than
// predictable sizing.
func SplitText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1000
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

// SplitWords accumulates whitespace-separated words into chunks of at most
// maxChars runes without ever splitting a word. A single word longer than
// maxChars becomes its own oversized chunk. The final partial accumulation is
// always flushed.
func SplitWords(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1000
	}
	words := strings.Fields(text)
	var chunks []string
	current := ""
	currentLen := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if current == "" {
			current, currentLen = w, wl
			continue
		}
		if currentLen+1+wl > maxChars {
			chunks = append(chunks, current)
			current, currentLen = w, wl
			continue
		}
		current += " " + w
		currentLen += 1 + wl
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// ChunkSection splits a corpus section word-aware and assigns stable chunk
// IDs: the section ID alone when the text fits in one chunk, otherwise
// "<id>_chunk_<n>" with n starting at 0. Re-ingesting the same corpus
// therefore upserts the same IDs.
func ChunkSection(sec models.LegalSection, maxChars int, now time.Time) []models.Chunk {
	pieces := SplitWords(sec.Text, maxChars)
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		id := sec.ID
		if len(pieces) > 1 {
			id = fmt.Sprintf("%s_chunk_%d", sec.ID, i)
		}
		chunks = append(chunks, models.Chunk{
			ID:        id,
			Text:      piece,
			Act:       sec.Act,
			Section:   sec.Section,
			Title:     sec.Title,
			Source:    sec.Source,
			Ordinal:   i,
			Total:     len(pieces),
			CreatedAt: now,
		})
	}
	return chunks
}

// ChunkUpload splits an uploaded document with fixed windows. Upload chunk
// IDs embed the upload time and the sanitized file name and count from 1:
// "<unixMillis>_<name>_chunk_<n>".
func ChunkUpload(filename, text string, maxChars int, now time.Time) []models.Chunk {
	pieces := SplitText(text, maxChars)
	base := fmt.Sprintf("%d_%s", now.UnixMilli(), SanitizeFileName(filename))
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			ID:        fmt.Sprintf("%s_chunk_%d", base, i+1),
			Text:      piece,
			Title:     filename,
			Source:    "upload",
			Ordinal:   i,
			Total:     len(pieces),
			CreatedAt: now,
		})
	}
	return chunks
}

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with an
// underscore so file names are safe inside vector IDs and storage paths.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}
