package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nyayamitra-backend/llm"
	"nyayamitra-backend/logger"
	"nyayamitra-backend/models"
)

// Common errors
var (
	ErrEmptyQuestion    = errors.New("question must not be empty")
	ErrGenerationFailed = errors.New("answer generation failed")
	ErrCompleterMissing = errors.New("completion client not configured")
)

const (
	defaultTopK       = 8
	answerTemperature = 0.2
	answerMaxTokens   = 1200
	snippetMaxRunes   = 280
)

const answerSystemPrompt = `You are NyayaMitra, a legal information assistant for Indian law.
Answer strictly from the provided context and cite the act and section for every rule you state.
Structure the answer in Markdown with headings for the relevant sections, the explanation, practical guidance, and a disclaimer that this is general information and not legal advice.
Use Markdown lists for enumerations. If the context does not cover the question, say so plainly.`

const indexNotConfiguredAnswer = "The legal knowledge base is not configured on this server, " +
	"so I cannot look up statutes right now. Configure the vector index and run an ingestion, then ask again."

const noMatchesAnswer = "I could not find any relevant sections in the legal knowledge base for this question. " +
	"Try rephrasing it, or mention the act or section you are interested in."

const emptyCompletionAnswer = "The model returned an empty answer. Please try asking the question again."

// ChatService answers questions about Indian law grounded in retrieved
// statute text.
type ChatService struct {
	index     VectorIndex
	embedder  llm.Embedder
	completer llm.Completer
	topK      int
	log       *logger.Logger
	gate      *readinessGate
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithVectorIndex sets the vector index
func ChatWithVectorIndex(index VectorIndex) ChatServiceOption {
	return func(s *ChatService) {
		s.index = index
	}
}

// ChatWithEmbedder sets the embedding client
func ChatWithEmbedder(embedder llm.Embedder) ChatServiceOption {
	return func(s *ChatService) {
		s.embedder = embedder
	}
}

// ChatWithCompleter sets the completion client
func ChatWithCompleter(completer llm.Completer) ChatServiceOption {
	return func(s *ChatService) {
		s.completer = completer
	}
}

// ChatWithTopK sets how many documents are retrieved per question
func ChatWithTopK(k int) ChatServiceOption {
	return func(s *ChatService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(log *logger.Logger) ChatServiceOption {
	return func(s *ChatService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewChatService creates a new ChatService with options
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		topK: defaultTopK,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gate = newReadinessGate(s.probeIndex)
	return s
}

func (s *ChatService) probeIndex(ctx context.Context) error {
	stats, err := s.index.DescribeStats(ctx)
	if err != nil {
		return err
	}
	s.log.Info("vector index ready", "records", stats.TotalRecordCount)
	return nil
}

// Answer retrieves relevant statute text for the question and composes a
// grounded answer. Retrieval-stage problems degrade to an explanatory answer
// with no sources; only generation-stage failures are returned as errors.
func (s *ChatService) Answer(ctx context.Context, question string) (*models.ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if s.index == nil {
		s.log.Warn("question received without a configured vector index")
		return &models.ChatResult{Answer: indexNotConfiguredAnswer, Sources: []models.SourceSnippet{}}, nil
	}
	if err := s.gate.ensure(ctx); err != nil {
		s.log.Warn("vector index not ready", "error", err)
		return &models.ChatResult{Answer: noMatchesAnswer, Sources: []models.SourceSnippet{}}, nil
	}

	docs := s.Retrieve(ctx, question, s.topK)
	if len(docs) == 0 {
		return &models.ChatResult{Answer: noMatchesAnswer, Sources: []models.SourceSnippet{}}, nil
	}

	if s.completer == nil {
		return nil, ErrCompleterMissing
	}

	user := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, buildContext(docs))
	completion, err := s.completer.Complete(ctx, answerSystemPrompt, user, llm.CompletionOptions{
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	answer := strings.TrimSpace(completion.Text)
	if answer == "" {
		s.log.Warn("completion returned empty text")
		answer = emptyCompletionAnswer
	}
	s.log.Info("answer composed", "docs", len(docs), "total_tokens", completion.Usage.TotalTokens)

	return &models.ChatResult{Answer: answer, Sources: sourcesFromDocs(docs)}, nil
}

// Retrieve embeds the question and returns the top-k documents in the
// index's score order. It never fails: embedding or query errors are logged
// and produce an empty result.
func (s *ChatService) Retrieve(ctx context.Context, question string, topK int) []models.RetrievedDoc {
	if s.index == nil || s.embedder == nil {
		return nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(embeddings) == 0 {
		s.log.Warn("query embedding failed", "error", err)
		return nil
	}

	matches, err := s.index.Query(ctx, embeddings[0], topK, true)
	if err != nil {
		s.log.Warn("vector query failed", "error", err)
		return nil
	}

	docs := make([]models.RetrievedDoc, 0, len(matches))
	for _, m := range matches {
		doc := docFromMatch(m)
		if doc.Text == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// docFromMatch rebuilds a document from vector metadata. Older records may
// carry their text under "content" or "description"; records with no act
// are labeled "Unknown act".
func docFromMatch(m models.VectorMatch) models.RetrievedDoc {
	doc := models.RetrievedDoc{ID: m.ID, Score: m.Score, Act: "Unknown act"}
	if m.Metadata == nil {
		return doc
	}
	if act := metaString(m.Metadata, "act"); act != "" {
		doc.Act = act
	}
	doc.Section = metaString(m.Metadata, "section")
	doc.Title = metaString(m.Metadata, "title")
	doc.Source = metaString(m.Metadata, "source")
	doc.Text = metaString(m.Metadata, "text")
	if doc.Text == "" {
		doc.Text = metaString(m.Metadata, "content")
	}
	if doc.Text == "" {
		doc.Text = metaString(m.Metadata, "description")
	}
	return doc
}

func metaString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// buildContext renders the retrieved documents as one prompt block, each
// document under a citation header, separated by --- lines.
func buildContext(docs []models.RetrievedDoc) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, docHeader(doc)+"\n"+doc.Text)
	}
	return strings.Join(parts, "\n---\n")
}

func docHeader(doc models.RetrievedDoc) string {
	header := doc.Act
	if doc.Section != "" {
		header += " - Section " + doc.Section
	}
	if doc.Title != "" {
		header += ": " + doc.Title
	}
	return header
}

func sourcesFromDocs(docs []models.RetrievedDoc) []models.SourceSnippet {
	sources := make([]models.SourceSnippet, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, models.SourceSnippet{
			ID:      doc.ID,
			Act:     doc.Act,
			Section: doc.Section,
			Title:   doc.Title,
			Snippet: models.TruncateRunes(doc.Text, snippetMaxRunes),
		})
	}
	return sources
}
