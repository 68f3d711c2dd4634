package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nyayamitra-backend/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadReadsCSVWithMixedCaseHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ipc.csv",
		"SECTION,Title,description,Text\n"+
			"378,Theft,Definition of theft,Whoever intends to take dishonestly any movable property\n")

	sections, _, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	s := sections[0]
	if s.ID != "ipc_378" {
		t.Errorf("ID = %q, want ipc_378", s.ID)
	}
	if s.Act != models.ActIPC || s.Section != "378" || s.Title != "Theft" {
		t.Errorf("section fields = %+v", s)
	}
	if s.Text != "Whoever intends to take dishonestly any movable property" {
		t.Errorf("Text = %q", s.Text)
	}
	if s.Source != "ipc.csv" {
		t.Errorf("Source = %q, want ipc.csv", s.Source)
	}
}

func TestLoadTextFallsBackToDescription(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bns.csv",
		"section,title,description,text\n"+
			"101,Culpable homicide,Causing death by doing an act,\n")

	sections, _, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].Text != "Causing death by doing an act" {
		t.Errorf("Text = %q, want the description fallback", sections[0].Text)
	}
}

func TestLoadSkipsRecordsWithoutText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ipc.csv",
		"section,title,description,text\n"+
			"378,Theft,,usable text\n"+
			"379,Empty row,,\n")

	sections, warnings, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1 (empty record skipped)", len(sections))
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "ipc.csv") && strings.Contains(w, "skipped 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v should mention the skipped record", warnings)
	}
}

func TestLoadWarnsOnMissingActFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ipc.csv", "section,text\n378,some text\n")

	sections, warnings, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	// The other three act files are absent and each should warn.
	for _, name := range []string{"bns.csv", "bsa.csv", "crpc.csv"} {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, name) {
				found = true
			}
		}
		if !found {
			t.Errorf("no warning for missing %s in %v", name, warnings)
		}
	}
}

func TestLoadSectionIDFallbacks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "crpc.csv",
		"section,text\n"+
			"41 A,notice of appearance\n"+
			",row without a section label\n")

	sections, _, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].ID != "crpc_41_A" {
		t.Errorf("ID = %q, want crpc_41_A (spaces replaced)", sections[0].ID)
	}
	if sections[1].ID != "crpc_row_2" {
		t.Errorf("ID = %q, want crpc_row_2 (row ordinal fallback)", sections[1].ID)
	}
}

func TestLoadStatuteFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "statutes/consumer.json",
		`{"act":"Consumer Protection Act","title":"Overview","text":"Protects consumers against unfair trade."}`)
	writeFile(t, dir, "statutes/multi.json",
		`[{"name":"Entry One","content":"first entry text"},{"title":"Entry Two","text":"second entry text"}]`)
	writeFile(t, dir, "statutes/broken.json", `{not valid json`)

	sections, warnings, err := NewLoader(dir, 0, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	byID := make(map[string]models.LegalSection, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	consumer, ok := byID["consumer"]
	if !ok {
		t.Fatalf("missing section for consumer.json; got IDs %v", keys(byID))
	}
	if consumer.Act != "Consumer Protection Act" || consumer.Title != "Overview" {
		t.Errorf("consumer = %+v", consumer)
	}
	if consumer.Source != "statutes/consumer.json" {
		t.Errorf("Source = %q", consumer.Source)
	}

	first, ok := byID["multi_0"]
	if !ok {
		t.Fatalf("missing multi_0; got IDs %v", keys(byID))
	}
	if first.Act != models.ActStatute {
		t.Errorf("act = %q, want default %q", first.Act, models.ActStatute)
	}
	if first.Title != "Entry One" {
		t.Errorf("title = %q, want fallback to name field", first.Title)
	}
	if _, ok := byID["multi_1"]; !ok {
		t.Errorf("missing multi_1; got IDs %v", keys(byID))
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "broken.json") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v should mention broken.json", warnings)
	}
}

func TestLoadStatuteFileCap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "statutes/a.json", `{"text":"text a"}`)
	writeFile(t, dir, "statutes/b.json", `{"text":"text b"}`)
	writeFile(t, dir, "statutes/c.json", `{"text":"text c"}`)

	sections, warnings, err := NewLoader(dir, 2, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var statuteIDs []string
	for _, s := range sections {
		if strings.HasPrefix(s.Source, "statutes/") {
			statuteIDs = append(statuteIDs, s.ID)
		}
	}
	// Alphabetical order, first two files only.
	if len(statuteIDs) != 2 || statuteIDs[0] != "a" || statuteIDs[1] != "b" {
		t.Errorf("statute IDs = %v, want [a b]", statuteIDs)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "first 2 of 3") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v should name the cap", warnings)
	}
}

func TestLoadMissingCorpusDir(t *testing.T) {
	_, _, err := NewLoader(filepath.Join(t.TempDir(), "nope"), 0, nil).Load(context.Background())
	if err == nil {
		t.Fatal("want error for missing corpus directory")
	}
}

func keys(m map[string]models.LegalSection) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
