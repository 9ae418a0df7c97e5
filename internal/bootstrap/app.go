package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"zipfit/internal/ai"
	"zipfit/internal/app"
	"zipfit/internal/cache"
	"zipfit/internal/chunker"
	"zipfit/internal/config"
	"zipfit/internal/model"
	"zipfit/internal/pdfparse"
	mysqlClient "zipfit/internal/platform/mysql"
	postgresClient "zipfit/internal/platform/postgres"
	rabbitmqClient "zipfit/internal/platform/rabbitmq"
	redisClient "zipfit/internal/platform/redis"
	"zipfit/internal/repository"
	"zipfit/internal/retrieval"
	"zipfit/internal/tablenorm"
	"zipfit/internal/worker"
)

// Options selects which outer services a process needs. The HTTP server
// wants all of them; CLI commands run against the database only and embed
// inline.
type Options struct {
	Messaging    bool
	StartWorkers bool
}

type Services struct {
	Auth          *app.AuthService
	Announcements *app.AnnouncementService
	Ingest        *app.IngestService
	Embeddings    *app.EmbeddingService
	Search        *app.SearchService
	Chat          *app.ChatService
}

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Services Services
	Workers  []*worker.Consumer

	StartedAt time.Time
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.openDatabase(ctx); err != nil {
		return nil, err
	}

	if opts.Messaging {
		a.Redis, err = redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MessagePersistQueue, cfg.RabbitMQ.EmbeddingQueue)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	a.wire()

	if opts.Messaging && opts.StartWorkers {
		a.Workers = []*worker.Consumer{
			worker.NewMessagePersistWorker(a.MQConn, repository.NewChatMessageRepository(a.DB), cfg.RabbitMQ.MessagePersistQueue),
			worker.NewEmbeddingWorker(a.MQConn, a.Services.Embeddings, cfg.RabbitMQ.EmbeddingQueue),
		}
		for _, w := range a.Workers {
			if err := w.Start(ctx); err != nil {
				_ = a.Close()
				return nil, fmt.Errorf("start worker failed: %w", err)
			}
		}
	}
	return a, nil
}

func (a *App) openDatabase(ctx context.Context) error {
	cfg := a.Config
	var err error
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		a.DB, err = mysqlClient.New(ctx, cfg.MySQLDSN())
	default:
		a.DB, err = postgresClient.New(ctx, cfg.PostgresDSN())
		if err == nil {
			err = postgresClient.EnableVector(ctx, a.DB)
		}
	}
	if err != nil {
		return err
	}

	if err := a.DB.AutoMigrate(
		&model.User{},
		&model.Announcement{},
		&model.AnnouncementFile{},
		&model.DocChunk{},
		&model.Chat{},
		&model.ChatMessage{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	if cfg.Database.Driver == config.DriverMySQL {
		return mysqlClient.EnsureFullTextIndex(ctx, a.DB, model.DocChunkTable)
	}
	return postgresClient.EnsureSearchColumns(ctx, a.DB, model.DocChunkTable)
}

func (a *App) wire() {
	cfg := a.Config

	llm := ai.NewClient(ai.Config{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		ChatModel:         cfg.LLM.Model,
		EmbeddingModel:    cfg.LLM.EmbeddingModel,
		EmbeddingDim:      cfg.LLM.EmbeddingDim,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		Timeout:           time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Temperature:       cfg.LLM.Temperature,
	})

	announcementRepo := repository.NewAnnouncementRepository(a.DB)
	fileRepo := repository.NewFileRepository(a.DB)
	chunkRepo := repository.NewChunkRepository(a.DB)
	chatRepo := repository.NewChatRepository(a.DB)
	messageRepo := repository.NewChatMessageRepository(a.DB)

	var store retrieval.Store = repository.NewPostgresChunkSearch(a.DB)
	if cfg.Database.Driver == config.DriverMySQL {
		store = repository.NewMySQLChunkSearch(a.DB)
	}
	var logger *log.Logger
	if cfg.App.Debug {
		logger = log.New(os.Stderr, "[retrieval] ", log.LstdFlags)
	}
	retriever := retrieval.NewRetriever(store, cfg.RetrievalConfig(), logger)

	var (
		jobPublisher     app.Publisher
		messagePublisher app.Publisher
		history          app.HistoryCache
		queryCache       app.QueryEmbeddingCache
	)
	if a.MQConn != nil {
		jobPublisher = rabbitmqClient.NewPublisher(a.MQConn, cfg.RabbitMQ.EmbeddingQueue)
		messagePublisher = rabbitmqClient.NewPublisher(a.MQConn, cfg.RabbitMQ.MessagePersistQueue)
	}
	if a.Redis != nil {
		history = cache.NewHistoryCache(
			a.Redis,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
		queryCache = cache.NewEmbeddingCache(
			a.Redis,
			cfg.LLM.EmbeddingModel,
			time.Duration(cfg.Redis.EmbeddingCacheTTLSeconds)*time.Second,
		)
	}

	embeddings := app.NewEmbeddingService(chunkRepo, llm, jobPublisher, cfg.Chunking.EmbeddingBatch)
	search := app.NewSearchService(retriever, llm, queryCache)

	a.Services = Services{
		Auth: app.NewAuthService(
			repository.NewUserRepository(a.DB),
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
			cfg.Auth.AllowRegister,
		),
		Announcements: app.NewAnnouncementService(announcementRepo, fileRepo),
		Ingest: app.NewIngestService(
			announcementRepo,
			fileRepo,
			chunkRepo,
			embeddings,
			pdfparse.New(cfg.Chunking.HeaderKeywords),
			tablenorm.NewNormalizer(nil),
			chunker.New(cfg.ChunkerConfig()),
			app.IngestOptions{UploadDir: cfg.Upload.Dir, MaxBytes: cfg.Upload.MaxBytes},
		),
		Embeddings: embeddings,
		Search:     search,
		Chat: app.NewChatService(
			chatRepo,
			messageRepo,
			messagePublisher,
			history,
			search,
			llm,
			cfg.LLM.MaxContextMessage,
			cfg.Retrieval.TopK,
		),
	}
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() error {
	var closeErr error
	for _, w := range a.Workers {
		w.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
