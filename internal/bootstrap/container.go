package bootstrap

import (
	"context"
	"fmt"
	"log"

	"note-summary-be/internal/config"
	"note-summary-be/internal/controller"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/pkg/serverutils"
	"note-summary-be/internal/repository/contract"
	"note-summary-be/internal/repository/memory"
	"note-summary-be/internal/repository/redisstore"
	"note-summary-be/internal/repository/unitofwork"
	"note-summary-be/internal/service"
	"note-summary-be/internal/session"
	"note-summary-be/internal/websocket"
	"note-summary-be/pkg/events"
	"note-summary-be/pkg/invalidation"
	pktNats "note-summary-be/pkg/nats"
	"note-summary-be/pkg/summarizer"
	"note-summary-be/pkg/summarizer/factory"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	NoteController      controller.INoteController
	SummarizeController controller.ISummarizeController
	EventsController    controller.IEventsController

	// Background
	WebSocketHub *websocket.Hub

	Sessions     *session.Manager
	Invalidation *invalidation.Bus
	Logger       logger.ILogger

	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

type options struct {
	summarizer summarizer.Summarizer
	logger     logger.ILogger
}

func WithSummarizer(s summarizer.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

func WithLogger(l logger.ILogger) Option {
	return func(o *options) { o.logger = l }
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}

	// 2. Infrastructure. NATS and Redis are optional.
	var natsPub *pktNats.Publisher
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			eventPublisher = pub
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		rdb = connectRedis(cfg.App.RedisURL)
	}

	var revocations contract.RevocationRepository = memory.NewRevocationRepository()
	if rdb != nil {
		revocations = redisstore.NewRevocationRepository(rdb)
	}

	// 3. Sessions and invalidation
	broker := session.NewBroker()
	sessions := session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, revocations, broker)
	requireAuth := serverutils.SessionMiddleware(sessions)

	bus := invalidation.NewBus(cfg.App.InvalidationTopic, logger.NewWatermillAdapter(sysLogger, "InvalidationBus"))

	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(bus, broker, rdb, wsLogger)

	// 4. Summarization provider, chosen once
	provider := o.summarizer
	if provider == nil {
		p, err := factory.NewSummarizer(cfg.Ai)
		if err != nil {
			return nil, fmt.Errorf("init summarizer: %w", err)
		}
		provider = p
	}
	log.Printf("[INFO] Using Summarizer Provider: %s", provider.Name())

	// 5. Services
	noteService := service.NewNoteService(uowFactory, bus, eventPublisher, sysLogger)
	summarizeService := service.NewSummarizeService(provider, noteService, sysLogger)
	authService := service.NewAuthService(uowFactory, sessions, eventPublisher, sysLogger)

	// 6. Controllers
	return &Container{
		AuthController:      controller.NewAuthController(authService, requireAuth),
		NoteController:      controller.NewNoteController(noteService, summarizeService, requireAuth),
		SummarizeController: controller.NewSummarizeController(summarizeService, sessions),
		EventsController:    controller.NewEventsController(wsHub, requireAuth),

		WebSocketHub: wsHub,
		Sessions:     sessions,
		Invalidation: bus,
		Logger:       sysLogger,

		natsPub: natsPub,
		rdb:     rdb,
	}, nil
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory stores", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases infrastructure connections. The hub stops with the context passed to its Run.
func (c *Container) Close() {
	if err := c.Invalidation.Close(); err != nil {
		log.Printf("[WARN] Failed to close invalidation bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
