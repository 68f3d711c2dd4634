package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"nyayamitra-backend/llm"
	"nyayamitra-backend/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIndex struct {
	matches   []models.VectorMatch
	queryErr  error
	statsErr  error
	upserts   int
	deletions int
}

func (s *stubIndex) Upsert(ctx context.Context, records []models.VectorRecord) error {
	s.upserts += len(records)
	return nil
}

func (s *stubIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.VectorMatch, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func (s *stubIndex) DescribeStats(ctx context.Context) (*models.IndexStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return &models.IndexStats{TotalRecordCount: int64(s.upserts), Dimension: 3}, nil
}

func (s *stubIndex) DeleteAll(ctx context.Context) error {
	s.deletions++
	return nil
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string, opts llm.CompletionOptions) (*llm.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{Text: s.text, Usage: llm.TokenUsage{TotalTokens: 42}}, nil
}

// stubLoader optionally blocks inside Load so tests can hold the ingest lock
// while a second request arrives.
type stubLoader struct {
	sections []models.LegalSection
	started  chan struct{}
	release  chan struct{}
}

func (s *stubLoader) Load(ctx context.Context) ([]models.LegalSection, []string, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	return s.sections, nil, nil
}

// errorBody is the error envelope every handler writes.
type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
