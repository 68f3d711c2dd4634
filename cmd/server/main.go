package main

import (
	"context"
	"log"

	"nyayamitra-backend/config"
	"nyayamitra-backend/corpus"
	"nyayamitra-backend/handlers"
	"nyayamitra-backend/llm"
	"nyayamitra-backend/logger"
	"nyayamitra-backend/pinecone"
	"nyayamitra-backend/repository"
	"nyayamitra-backend/service"
	"nyayamitra-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	applog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer applog.Sync()

	// Database is optional: the run journal and the pgvector backend need it,
	// everything else works without it.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = initPostgres(cfg.DatabaseURL)
		if err != nil {
			applog.Fatal("failed to initialize Postgres", "error", err)
		}
		defer pool.Close()
		applog.Info("Postgres connection established")
	}

	index := initVectorIndex(cfg, applog, pool)

	embedder, completer := initLLM(cfg, applog)

	if err := cfg.ValidateChat(); err != nil {
		applog.Warn("chat will answer in degraded mode", "error", err)
	}

	docStorage, err := storage.NewFromEnv()
	if err != nil {
		applog.Fatal("failed to initialize storage", "error", err)
	}
	applog.Info("document storage initialized")

	var runRepo *repository.IngestRunRepository
	if pool != nil {
		runRepo = repository.NewIngestRunRepository(pool)
	}

	loader := corpus.NewLoader(cfg.CorpusDir, cfg.StatuteFileLimit, applog)

	chatService := service.NewChatService(
		service.ChatWithVectorIndex(index),
		service.ChatWithEmbedder(embedder),
		service.ChatWithCompleter(completer),
		service.ChatWithTopK(cfg.RetrievalTopK),
		service.ChatWithLogger(applog),
	)

	ingestOpts := []service.IngestServiceOption{
		service.IngestWithVectorIndex(index),
		service.IngestWithEmbedder(embedder),
		service.IngestWithLoader(loader),
		service.IngestWithBatchSize(cfg.EmbedBatchSize),
		service.IngestWithChunkSize(cfg.ChunkMaxChars, cfg.UploadChunkMaxChars),
		service.IngestWithBatchDelay(cfg.BatchDelay),
		service.IngestWithDimension(cfg.EmbeddingDimension),
		service.IngestWithLogger(applog),
	}
	if runRepo != nil {
		ingestOpts = append(ingestOpts, service.IngestWithJournal(runRepo))
	}
	ingestService := service.NewIngestService(ingestOpts...)

	chatHandler := handlers.NewChatHandler(chatService, cfg.Production())
	ingestHandler := handlers.NewIngestHandler(ingestService, runRepo, cfg)
	documentHandler := handlers.NewDocumentHandler(ingestService, docStorage, cfg.Production())

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.Ask)

		api.POST("/ingest", ingestHandler.TriggerIngest)
		api.GET("/ingest/runs", ingestHandler.ListRuns)
		api.GET("/ingest/runs/:id", ingestHandler.GetRun)
		api.GET("/index/stats", ingestHandler.IndexStats)

		api.POST("/documents", documentHandler.Upload)
	}

	applog.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		applog.Fatal("failed to start server", "error", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}
	return pool, nil
}

// initVectorIndex builds the configured vector backend. A missing backend is
// not fatal: the chat endpoint answers in degraded mode and ingestion refuses
// to start.
func initVectorIndex(cfg *config.Config, applog *logger.Logger, pool *pgxpool.Pool) service.VectorIndex {
	switch cfg.VectorBackend {
	case "pgvector":
		if pool == nil {
			applog.Warn("pgvector backend selected but DATABASE_URL not set, running without an index")
			return nil
		}
		applog.Info("vector index: pgvector")
		return repository.NewVectorRepository(pool, cfg.EmbeddingDimension)

	default:
		if cfg.PineconeAPIKey == "" || cfg.PineconeIndexHost == "" {
			applog.Warn("Pinecone not configured, running without an index")
			return nil
		}
		client, err := pinecone.New(applog, pinecone.Config{
			APIKey:    cfg.PineconeAPIKey,
			IndexHost: cfg.PineconeIndexHost,
			Namespace: cfg.PineconeNamespace,
		})
		if err != nil {
			applog.Fatal("failed to create Pinecone client", "error", err)
		}
		applog.Info("vector index: Pinecone", "host", cfg.PineconeIndexHost)
		return client
	}
}

// initLLM builds the embedding and completion clients. A missing API key only
// logs a warning so the server can still boot and report its state.
func initLLM(cfg *config.Config, applog *logger.Logger) (llm.Embedder, llm.Completer) {
	embedder, completer, err := llm.NewFromConfig(context.Background(), cfg, applog)
	if err != nil {
		applog.Warn("LLM provider not configured", "provider", cfg.Provider, "error", err)
		return nil, nil
	}
	applog.Info("LLM provider initialized", "provider", cfg.Provider)
	return embedder, completer
}
