// Command athena indexes documents and answers questions about them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/athena/internal/adapters/driven/ai"
	"github.com/custodia-labs/athena/internal/adapters/driven/config/file"
	"github.com/custodia-labs/athena/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/athena/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/athena/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/athena/internal/adapters/driving/cli"
	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
	"github.com/custodia-labs/athena/internal/core/services"
	"github.com/custodia-labs/athena/internal/logger"
	"github.com/custodia-labs/athena/internal/normalisers"
	"github.com/custodia-labs/athena/internal/normalisers/markdown"
	"github.com/custodia-labs/athena/internal/normalisers/pdf"
	"github.com/custodia-labs/athena/internal/normalisers/plaintext"
	"github.com/custodia-labs/athena/internal/postprocessors"
	"github.com/custodia-labs/athena/internal/workerpool"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// shutdownTimeout bounds the wait for in-flight ingestions on exit.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(0))
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	applyEnvKeys(settings)

	dataDir, err := resolveDataDir(settings)
	if err != nil {
		return err
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Closing database: %v", err)
		}
	}()

	persister, err := snapshotStore(settings.Store.Backend, dataDir, db)
	if err != nil {
		return err
	}
	vectors := vectorstore.New(persister)
	if err := vectors.Load(ctx); err != nil {
		return fmt.Errorf("load vector store: %w", err)
	}

	blobs, err := blob.New(dataDir)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	extractors := normalisers.NewRegistry(plaintext.New(), markdown.New(), pdf.New())

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settingsService.GetPipelineConfig())
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	aiServices := ai.Init(ctx, settings, prompts)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	translation := services.NewTranslationService(
		aiServices.Detector,
		aiServices.Translator,
		services.WithCacheSize(settings.Translation.CacheSize),
		services.WithMinLength(settings.Translation.MinLength),
	)

	contextService := services.NewContextService(aiServices.EmbeddingService, vectors, db.SourceStore())
	contextService.SetOversample(settings.Context.Oversample)

	chatService := services.NewChatService(
		aiServices.LLMService, contextService, translation, prompts, db.ChatHistoryStore(),
	)
	chatService.SetStream(settings.LLM.Stream)
	chatService.SetContextLimits(settings.Context.TopK, settings.Context.MaxChars)

	pool := workerpool.New(settings.Ingestion.Workers)
	ingestionService := services.NewIngestionService(
		blobs, extractors, pipeline, aiServices.EmbeddingService, vectors, db.SourceStore(), pool,
	)
	ingestionService.SetTimeout(settings.Ingestion.Timeout)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ingestionService.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Waiting for ingestions: %v", err)
		}
		if err := vectors.Persist(shutdownCtx); err != nil {
			logger.Warn("Persisting vector store: %v", err)
		}
	}()

	storeService := services.NewStoreService(vectors, db.SourceStore(), blobs, db.ChatHistoryStore())

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Ingestion:       ingestionService,
		Context:         contextService,
		Chat:            chatService,
		Store:           storeService,
		Settings:        settingsService,
		ContextDefaults: settings.Context,
		SettableKeys:    services.SettableKeys(),
	})

	return cli.Execute(ctx)
}

// resolveDataDir returns the configured data directory or <home>/data.
func resolveDataDir(settings *domain.AppSettings) (string, error) {
	if settings.Store.DataDir != "" {
		return settings.Store.DataDir, nil
	}
	home, err := file.HomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return filepath.Join(home, "data"), nil
}

// snapshotStore selects the vector snapshot persister for backend.
// Source records and chat history always live in the database.
func snapshotStore(backend domain.StoreBackend, dataDir string, db *sqlite.Store) (driven.SnapshotStore, error) {
	switch backend {
	case domain.StoreBackendSQLite:
		return db.SnapshotStore(), nil
	case domain.StoreBackendFile, "":
		store, err := vectorstore.NewFileSnapshotStore(filepath.Join(dataDir, "index"))
		if err != nil {
			return nil, fmt.Errorf("open index directory: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, backend)
	}
}
