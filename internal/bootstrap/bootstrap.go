package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/config"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
	"github.com/kirillkom/rfp-slide-generator/internal/core/usecase"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/deck/pptx"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/llm/openai"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/queue/nats"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/repository/memory"
	mongostore "github.com/kirillkom/rfp-slide-generator/internal/infrastructure/repository/mongo"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/storage/localfs"
	miniostorage "github.com/kirillkom/rfp-slide-generator/internal/infrastructure/storage/minio"
)

const appName = "rfp-slide-generator"

type App struct {
	Config config.Config

	Uploader  ports.DocumentUploader
	Generator ports.SlideGenerator
	Catalog   ports.Catalog
	Decks     ports.DeckService

	// Events is nil when EVENTS_ENABLED is false.
	Events ports.EventSubscriber

	closers []func()
}

type stores struct {
	docs        ports.DocumentStore
	generations ports.GenerationStore
}

func New(ctx context.Context, cfg config.Config) (app *App, err error) {
	app = &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	st, err := app.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := openObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	client, err := newGenerationClient(cfg)
	if err != nil {
		return nil, err
	}

	var publisher ports.EventPublisher
	if cfg.EventsEnabled {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ClientName:         appName,
			ResilienceExecutor: resilience.NewExecutor(resilience.EventPolicy()),
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closers = append(app.closers, queue.Close)
		publisher = queue
		app.Events = queue
	}

	recorder := usecase.NewGenerationRecorder(st.generations, publisher)
	app.Uploader = usecase.NewUploadDocumentUseCase(st.docs, pdf.NewExtractor(int64(cfg.PDFMaxTextBytes)), objects, usecase.UploadOptions{
		StagingDir:     cfg.StagingDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	app.Generator = usecase.NewGenerateSlidesUseCase(st.docs, client, recorder, usecase.GenerateOptions{
		DefaultSlideCount: cfg.DefaultSlideCount,
		Timeout:           cfg.GenerationTimeout(),
		Prompt:            usecase.PromptOptions{MaxRFPChars: cfg.PromptMaxRFPChars},
	})
	app.Catalog = usecase.NewCatalogUseCase(st.docs, st.generations, cfg.HistoryLimit)
	app.Decks = usecase.NewDeckUseCase(pptx.NewRenderer(appName), xlsx.NewExporter(), st.generations, objects, cfg.HistoryLimit)

	slog.Info("bootstrap_ready",
		"store_backend", cfg.StoreBackend,
		"object_storage", cfg.ObjectStorage,
		"llm_provider", cfg.LLMProvider,
		"events_enabled", cfg.EventsEnabled,
	)
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreBackend {
	case "", "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return stores{}, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return stores{}, fmt.Errorf("ensure schema: %w", err)
		}
		return stores{
			docs:        postgres.NewDocumentRepository(db),
			generations: postgres.NewGenerationRepository(db),
		}, nil
	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI, 10*time.Second)
		if err != nil {
			return stores{}, fmt.Errorf("open mongo: %w", err)
		}
		a.closers = append(a.closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		store := mongostore.NewStore(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			return stores{}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return stores{docs: store, generations: store}, nil
	case "memory":
		store := memory.NewStore()
		return stores{docs: store, generations: store}, nil
	default:
		return stores{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func openObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.ObjectStorage {
	case "", "localfs":
		return localfs.New(cfg.StoragePath)
	case "minio":
		return miniostorage.New(ctx, miniostorage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORAGE %q", cfg.ObjectStorage)
	}
}

func newGenerationClient(cfg config.Config) (ports.GenerationClient, error) {
	executor := resilience.NewExecutor(resilience.GenerationPolicy(cfg.LLMRetryMaxAttempts, cfg.LLMBreakerEnabled))

	httpTimeout := cfg.GenerationTimeout()
	switch cfg.LLMProvider {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, ollama.Options{
			Temperature: cfg.LLMTemperature,
			HTTPTimeout: httpTimeout,
			Executor:    executor,
		}), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.Options{
			Temperature: cfg.LLMTemperature,
			HTTPTimeout: httpTimeout,
			Executor:    executor,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
