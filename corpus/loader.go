// Package corpus reads the legal knowledge base from disk: one CSV per major
// act plus an optional directory of semi-structured statute JSON files.
package corpus

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nyayamitra-backend/logger"
	"nyayamitra-backend/models"
)

// tabularSources maps the well-known corpus files to their acts, in load order.
var tabularSources = []struct {
	File string
	Act  models.Act
}{
	{"ipc.csv", models.ActIPC},
	{"bns.csv", models.ActBNS},
	{"bsa.csv", models.ActBSA},
	{"crpc.csv", models.ActCrPC},
}

type Loader struct {
	dir          string
	statuteLimit int
	log          *logger.Logger
}

// NewLoader reads from dir. statuteLimit caps how many statute JSON files are
// loaded per run; 0 means unlimited.
func NewLoader(dir string, statuteLimit int, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{dir: dir, statuteLimit: statuteLimit, log: log}
}

// Load reads every available source. Individual missing or malformed sources
// become warnings; only a broken corpus directory is an error.
func (l *Loader) Load(ctx context.Context) ([]models.LegalSection, []string, error) {
	if _, err := os.Stat(l.dir); err != nil {
		return nil, nil, fmt.Errorf("corpus directory %s: %w", l.dir, err)
	}

	var sections []models.LegalSection
	var warnings []string

	for _, src := range tabularSources {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		secs, warns := l.loadCSV(filepath.Join(l.dir, src.File), src.Act)
		sections = append(sections, secs...)
		warnings = append(warnings, warns...)
	}

	secs, warns := l.loadStatutes(filepath.Join(l.dir, "statutes"))
	sections = append(sections, secs...)
	warnings = append(warnings, warns...)

	l.log.Info("corpus loaded", "sections", len(sections), "warnings", len(warnings))
	return sections, warnings, nil
}

func (l *Loader) loadCSV(path string, act models.Act) ([]models.LegalSection, []string) {
	base := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			w := fmt.Sprintf("%s not found, skipping", base)
			l.log.Warn("corpus file missing", "file", base)
			return nil, []string{w}
		}
		w := fmt.Sprintf("%s: %v", base, err)
		l.log.Warn("corpus file unreadable", "file", base, "error", err)
		return nil, []string{w}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		w := fmt.Sprintf("%s: cannot read header: %v", base, err)
		l.log.Warn("corpus file has no header", "file", base, "error", err)
		return nil, []string{w}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	actLower := strings.ToLower(act)
	var sections []models.LegalSection
	var warnings []string
	skipped := 0

	for rowNum := 1; ; rowNum++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s row %d: %v", base, rowNum, err))
			continue
		}

		section := field(record, cols, "section")
		title := field(record, cols, "title")
		description := field(record, cols, "description")
		text := field(record, cols, "text")
		if text == "" {
			text = description
		}
		if text == "" {
			skipped++
			continue
		}

		id := actLower + "_" + strings.ReplaceAll(section, " ", "_")
		if section == "" {
			id = fmt.Sprintf("%s_row_%d", actLower, rowNum)
		}
		sections = append(sections, models.LegalSection{
			ID:          id,
			Act:         act,
			Section:     section,
			Title:       title,
			Description: description,
			Text:        text,
			Source:      base,
		})
	}

	if skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: skipped %d records with no usable text", base, skipped))
	}
	l.log.Info("loaded act file", "file", base, "sections", len(sections), "skipped", skipped)
	return sections, warnings
}

// statuteRecord tolerates the field-name variants seen across statute files.
type statuteRecord struct {
	Act         string `json:"act"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Text        string `json:"text"`
	Content     string `json:"content"`
}

func (l *Loader) loadStatutes(dir string) ([]models.LegalSection, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []string{fmt.Sprintf("statutes: %v", err)}
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var warnings []string
	if l.statuteLimit > 0 && len(files) > l.statuteLimit {
		dropped := len(files) - l.statuteLimit
		warnings = append(warnings, fmt.Sprintf(
			"statute file cap reached: loading first %d of %d files, %d dropped (raise STATUTE_FILE_LIMIT to load more)",
			l.statuteLimit, len(files), dropped))
		l.log.Warn("statute file cap reached", "limit", l.statuteLimit, "total", len(files), "dropped", dropped)
		files = files[:l.statuteLimit]
	}

	var sections []models.LegalSection
	for _, name := range files {
		secs, warn := l.loadStatuteFile(dir, name)
		sections = append(sections, secs...)
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}
	if len(files) > 0 {
		l.log.Info("loaded statute files", "files", len(files), "sections", len(sections))
	}
	return sections, warnings
}

func (l *Loader) loadStatuteFile(dir, name string) ([]models.LegalSection, string) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Sprintf("statutes/%s: %v", name, err)
	}

	var records []statuteRecord
	trimmed := bytes.TrimSpace(raw)
	isArray := len(trimmed) > 0 && trimmed[0] == '['
	if isArray {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			l.log.Warn("malformed statute file", "file", name, "error", err)
			return nil, fmt.Sprintf("statutes/%s: malformed JSON, skipping: %v", name, err)
		}
	} else {
		var rec statuteRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			l.log.Warn("malformed statute file", "file", name, "error", err)
			return nil, fmt.Sprintf("statutes/%s: malformed JSON, skipping: %v", name, err)
		}
		records = []statuteRecord{rec}
	}

	baseID := strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), " ", "_")
	var sections []models.LegalSection
	skipped := 0
	for i, rec := range records {
		text := rec.Text
		if text == "" {
			text = rec.Content
		}
		if text == "" {
			text = rec.Description
		}
		if text == "" {
			skipped++
			continue
		}

		act := rec.Act
		if act == "" {
			act = models.ActStatute
		}
		title := rec.Title
		if title == "" {
			title = rec.Name
		}
		id := baseID
		if isArray {
			id = fmt.Sprintf("%s_%d", baseID, i)
		}
		sections = append(sections, models.LegalSection{
			ID:          id,
			Act:         act,
			Title:       title,
			Description: rec.Description,
			Text:        text,
			Source:      "statutes/" + name,
		})
	}

	if skipped > 0 {
		return sections, fmt.Sprintf("statutes/%s: skipped %d entries with no usable text", name, skipped)
	}
	return sections, ""
}

func field(record []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
