package main

import (
	"context"
	"flag"
	"log"

	"nyayamitra-backend/config"
	"nyayamitra-backend/corpus"
	"nyayamitra-backend/llm"
	"nyayamitra-backend/logger"
	"nyayamitra-backend/pinecone"
	"nyayamitra-backend/repository"
	"nyayamitra-backend/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	clearExisting := flag.Bool("clear", false, "delete all existing vectors before indexing")
	flag.Parse()

	// Load .env file from project root (relative to cmd/ingest/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if err := cfg.ValidateIngestion(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	applog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer applog.Sync()

	ctx := context.Background()

	// Database only serves the pgvector backend and the run journal here.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer pool.Close()
	}

	var index service.VectorIndex
	switch cfg.VectorBackend {
	case "pgvector":
		index = repository.NewVectorRepository(pool, cfg.EmbeddingDimension)
	default:
		client, err := pinecone.New(applog, pinecone.Config{
			APIKey:    cfg.PineconeAPIKey,
			IndexHost: cfg.PineconeIndexHost,
			Namespace: cfg.PineconeNamespace,
		})
		if err != nil {
			log.Fatalf("❌ Failed to create Pinecone client: %v", err)
		}
		index = client
	}

	embedder, _, err := llm.NewFromConfig(ctx, cfg, applog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}

	loader := corpus.NewLoader(cfg.CorpusDir, cfg.StatuteFileLimit, applog)

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
	if pool != nil {
		ingestOpts = append(ingestOpts, service.IngestWithJournal(repository.NewIngestRunRepository(pool)))
	}
	ingest := service.NewIngestService(ingestOpts...)

	if *clearExisting {
		log.Println("🗑️  Clearing existing vectors before indexing")
	}
	log.Printf("📚 Indexing corpus from %s", cfg.CorpusDir)

	report, err := ingest.Run(ctx, service.IngestOptions{ClearExisting: *clearExisting})
	if err != nil {
		log.Fatalf("❌ Ingestion failed: %v", err)
	}

	log.Printf("✓ Documents loaded: %d", report.TotalDocuments)
	log.Printf("✓ Chunks built: %d", report.TotalChunks)
	log.Printf("✓ Chunks indexed: %d", report.TotalIndexed)
	if report.VectorCount >= 0 {
		log.Printf("✓ Vectors in index: %d", report.VectorCount)
	}
	for _, w := range report.Warnings {
		log.Printf("⚠️  %s", w)
	}
	for _, e := range report.Errors {
		log.Printf("❌ Batch %d failed at %s stage: %s", e.Batch, e.Stage, e.Message)
	}

	if len(report.Errors) > 0 {
		log.Printf("\n⚠️  Ingestion finished with %d failed batches", len(report.Errors))
		return
	}
	log.Println("\n✅ Ingestion complete!")
}
