package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"nyayamitra-backend/llm"
	"nyayamitra-backend/models"
)

// fakeIndex is an in-memory VectorIndex. Error fields force failures; call
// counters let tests assert what was touched.
type fakeIndex struct {
	mu      sync.Mutex
	vectors map[string]models.VectorRecord
	matches []models.VectorMatch
	dim     int

	statsErr       error
	statsErrOnCall map[int]error
	queryErr       error
	upsertErr      error
	deleteErr      error

	statsCalls  int
	queryCalls  int
	upsertCalls int
	deleteCalls int
	lastTopK    int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{vectors: make(map[string]models.VectorRecord)}
}

func (f *fakeIndex) Upsert(ctx context.Context, records []models.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range records {
		f.vectors[r.ID] = r
	}
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.VectorMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	f.lastTopK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeIndex) DescribeStats(ctx context.Context) (*models.IndexStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if err := f.statsErrOnCall[f.statsCalls]; err != nil {
		return nil, err
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.IndexStats{
		TotalRecordCount: int64(len(f.vectors)),
		Dimension:        f.dim,
	}, nil
}

func (f *fakeIndex) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.vectors = make(map[string]models.VectorRecord)
	return nil
}

func (f *fakeIndex) vectorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vectors)
}

func (f *fakeIndex) vector(id string) (models.VectorRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.vectors[id]
	return r, ok
}

// fakeEmbedder returns one constant vector per input. failOn makes specific
// calls fail (1-based); block/started let a test hold a call open.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	err       error
	failOn    map[int]bool
	lastTexts []string

	started chan struct{}
	block   chan struct{}
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.lastTexts = texts
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn[call] {
		return nil, fmt.Errorf("embedding backend down on call %d", call)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCompleter struct {
	mu         sync.Mutex
	calls      int
	err        error
	text       string
	lastSystem string
	lastUser   string
	lastOpts   llm.CompletionOptions
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, opts llm.CompletionOptions) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text, Usage: llm.TokenUsage{TotalTokens: 42}}, nil
}

type fakeLoader struct {
	sections []models.LegalSection
	warnings []string
	err      error
}

func (f *fakeLoader) Load(ctx context.Context) ([]models.LegalSection, []string, error) {
	return f.sections, f.warnings, f.err
}

type fakeJournal struct {
	lockOK  bool
	lockErr error

	created   []*models.IngestRun
	completed []uuid.UUID
	failed    []string
	releases  int
}

func newFakeJournal() *fakeJournal { return &fakeJournal{lockOK: true} }

func (f *fakeJournal) Create(ctx context.Context, run *models.IngestRun) error {
	f.created = append(f.created, run)
	return nil
}

func (f *fakeJournal) Complete(ctx context.Context, id uuid.UUID, report *models.IngestReport) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeJournal) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	f.failed = append(f.failed, errorMessage)
	return nil
}

func (f *fakeJournal) AcquireLock(ctx context.Context) (func(), bool, error) {
	if f.lockErr != nil {
		return nil, false, f.lockErr
	}
	if !f.lockOK {
		return nil, false, nil
	}
	return func() { f.releases++ }, true, nil
}
