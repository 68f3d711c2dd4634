package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting, all sourced from environment variables.
type Config struct {
	Env  string
	Port string

	// LLM provider selection: "openai" or "gemini".
	Provider string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIEmbedModel string
	OpenAIChatModel  string

	GeminiAPIKey     string
	GeminiEmbedModel string
	GeminiChatModel  string

	// Vector index backend: "pinecone" or "pgvector".
	VectorBackend     string
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	EmbeddingDimension int

	DatabaseURL string

	CorpusDir        string
	StatuteFileLimit int

	ChunkMaxChars       int
	UploadChunkMaxChars int
	EmbedBatchSize      int
	RetrievalTopK       int
	BatchDelay          time.Duration
}

// MissingError reports which required settings are absent for an operation.
type MissingError struct {
	Missing []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Load reads the full configuration from the environment. Defaults are applied
// here; validation of required settings happens per operation.
func Load() *Config {
	return &Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		Provider: strings.ToLower(getenv("LLM_PROVIDER", "openai")),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIEmbedModel: getenv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:  getenv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiEmbedModel: getenv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		GeminiChatModel:  getenv("GEMINI_CHAT_MODEL", "gemini-1.5-flash"),

		VectorBackend:     strings.ToLower(getenv("VECTOR_BACKEND", "pinecone")),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		PineconeNamespace: os.Getenv("PINECONE_NAMESPACE"),

		EmbeddingDimension: getenvInt("EMBEDDING_DIMENSION", 1536),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CorpusDir:        getenv("CORPUS_DIR", "./data"),
		StatuteFileLimit: getenvInt("STATUTE_FILE_LIMIT", 100),

		ChunkMaxChars:       getenvInt("CHUNK_MAX_CHARS", 1000),
		UploadChunkMaxChars: getenvInt("UPLOAD_CHUNK_MAX_CHARS", 2000),
		EmbedBatchSize:      getenvInt("EMBED_BATCH_SIZE", 50),
		RetrievalTopK:       getenvInt("RETRIEVAL_TOP_K", 8),
		BatchDelay:          time.Duration(getenvInt("BATCH_DELAY_MS", 100)) * time.Millisecond,
	}
}

// Production reports whether error detail should be withheld from responses.
func (c *Config) Production() bool {
	env := strings.ToLower(c.Env)
	return env == "prod" || env == "production"
}

// IndexConfigured reports whether the selected vector backend has the settings
// it needs to be constructed at all.
func (c *Config) IndexConfigured() bool {
	switch c.VectorBackend {
	case "pgvector":
		return c.DatabaseURL != ""
	default:
		return c.PineconeAPIKey != "" && c.PineconeIndexHost != ""
	}
}

// ValidateIngestion checks everything the ingestion pipeline needs up front,
// so a run can be refused before any corpus work starts.
func (c *Config) ValidateIngestion() error {
	var missing []string
	switch c.VectorBackend {
	case "pgvector":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "pinecone":
		if c.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if c.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
	default:
		return fmt.Errorf("unknown vector backend %q", c.VectorBackend)
	}
	missing = append(missing, c.missingProviderKeys()...)
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}
	return nil
}

// ValidateChat checks the settings the question-answering path needs. The chat
// endpoint itself degrades gracefully; this is for boot-time warnings and the
// CLI.
func (c *Config) ValidateChat() error {
	var missing []string
	if !c.IndexConfigured() {
		switch c.VectorBackend {
		case "pgvector":
			missing = append(missing, "DATABASE_URL")
		default:
			missing = append(missing, "PINECONE_API_KEY", "PINECONE_INDEX_HOST")
		}
	}
	missing = append(missing, c.missingProviderKeys()...)
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}
	return nil
}

func (c *Config) missingProviderKeys() []string {
	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return []string{"GEMINI_API_KEY"}
		}
	default:
		if c.OpenAIAPIKey == "" {
			return []string{"OPENAI_API_KEY"}
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
