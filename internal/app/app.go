package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/handlers"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/services/composer"
	"github.com/ternarybob/scrutor/internal/services/corpus"
	"github.com/ternarybob/scrutor/internal/services/embeddings"
	"github.com/ternarybob/scrutor/internal/services/index"
	"github.com/ternarybob/scrutor/internal/services/llm"
	"github.com/ternarybob/scrutor/internal/services/pdf"
	"github.com/ternarybob/scrutor/internal/services/retriever"
	"github.com/ternarybob/scrutor/internal/services/scheduler"
	"github.com/ternarybob/scrutor/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Provider clients
	LLMServices *llm.Services

	// Retrieval core
	EmbeddingService interfaces.EmbeddingService
	VectorIndex      interfaces.VectorIndex
	CorpusService    interfaces.CorpusService
	RetrieverService interfaces.RetrieverService
	ComposerService  interfaces.ComposerService
	PDFExtractor     interfaces.PDFExtractor

	// Background maintenance
	Scheduler *scheduler.Scheduler

	// HTTP handlers
	DocumentHandler *handlers.DocumentHandler
	AskHandler      *handlers.AskHandler
	StatusHandler   *handlers.StatusHandler
}

// New wires all services in dependency order: storage, providers, index,
// corpus (which rebuilds the index from storage), then the query path.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	llmServices, err := llm.NewServices(ctx, config, logger)
	if err != nil {
		storageManager.Close()
		return nil, err
	}
	a.LLMServices = llmServices

	a.EmbeddingService = embeddings.NewEmbeddingService(llmServices.Embedder, config, logger)

	vectorIndex, err := index.NewMemoryIndex(config.Gemini.EmbedDimension, logger)
	if err != nil {
		a.closePartial()
		return nil, err
	}
	a.VectorIndex = vectorIndex

	corpusService, err := corpus.NewService(config, a.EmbeddingService, vectorIndex, storageManager, logger)
	if err != nil {
		a.closePartial()
		return nil, err
	}
	a.CorpusService = corpusService

	a.RetrieverService = retriever.NewService(a.EmbeddingService, vectorIndex, corpusService, &config.Retrieval, logger)
	a.ComposerService = composer.NewService(llmServices.Composer, config, logger)
	a.PDFExtractor = pdf.NewExtractor(logger)

	if config.Maintenance.Enabled {
		sched, err := scheduler.NewScheduler(&config.Maintenance, vectorIndex, storageManager, logger)
		if err != nil {
			a.closePartial()
			return nil, err
		}
		a.Scheduler = sched
	}

	a.DocumentHandler = handlers.NewDocumentHandler(corpusService, a.PDFExtractor, logger)
	a.AskHandler = handlers.NewAskHandler(a.RetrieverService, a.ComposerService, logger)
	a.StatusHandler = handlers.NewStatusHandler(corpusService, a.EmbeddingService, logger)

	logger.Info().Msg("Application services initialized")
	return a, nil
}

// Start begins background services.
func (a *App) Start() {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
}

// Close shuts components down in reverse dependency order.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	a.closePartial()
}

func (a *App) closePartial() {
	if a.LLMServices != nil {
		if err := a.LLMServices.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM services")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
