package app

import (
	"bigbrain/config"
	"bigbrain/internal/cache"
	"bigbrain/internal/clock"
	engineconfig "bigbrain/internal/config"
	"bigbrain/internal/idgen"
	"bigbrain/internal/lock"
	"bigbrain/internal/messaging"
	"bigbrain/internal/repository"
	"bigbrain/internal/service"
	"bigbrain/internal/store"
	"bigbrain/internal/transport/ws"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App holds the wired services of one process
type App struct {
	Store    store.Store
	Docs     *store.Documents
	Auth     *service.AuthService
	Games    *service.GameService
	Sessions *service.SessionService
	Players  *service.PlayerService
	Hub      *ws.Hub

	events    *service.Notifier
	publisher *messaging.RabbitMQPublisher
	log       zerolog.Logger
}

// Backend is an opened store plus the optional leaderboard cache it offers
type Backend struct {
	Store       store.Store
	Leaderboard cache.LeaderboardCache
}

// OpenStore connects to the configured backend and checks it is reachable
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &Backend{Store: store.NewMemoryStore()}, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
		return &Backend{
			Store:       cache.NewDocumentStore(rdb, cfg.RedisKeyPrefix),
			Leaderboard: cache.NewLeaderboardCache(rdb, cfg.RedisKeyPrefix),
		}, nil

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
		return &Backend{Store: repository.NewMongoDocumentStore(client, cfg.MongoDatabase)}, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres: %w", err)
		}
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping Postgres: %w", err)
		}
		if err := repository.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("connected to Postgres")
		return &Backend{Store: repository.NewPostgresDocumentStore(db)}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// New wires the services on top of backend and makes sure every document exists
func New(ctx context.Context, cfg *config.Config, engine *engineconfig.EngineConfig, backend *Backend, log zerolog.Logger) (*App, error) {
	docs := store.NewDocuments(backend.Store, engine.StoreRetries)
	if err := docs.Init(ctx); err != nil {
		return nil, err
	}

	locker := lock.New(engine.LockWait)
	ids := idgen.New()
	clk := clock.Real()

	hub := ws.NewHub(log)
	events := service.NewNotifier(log)
	events.SetBroadcaster(hub)

	var publisher *messaging.RabbitMQPublisher
	if cfg.RabbitMQURL != "" {
		p, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			hub.Close()
			return nil, err
		}
		publisher = p
		events.SetPublisher(p, messaging.SessionEventsQueue)
		log.Info().Str("queue", messaging.SessionEventsQueue).Msg("publishing session events to RabbitMQ")
	}

	games := service.NewGameService(docs, locker, ids, engine.IDBounds, log)
	sessions := service.NewSessionService(docs, locker, ids, clk, engine, games, events, log)
	if backend.Leaderboard != nil {
		sessions.SetLeaderboardCache(backend.Leaderboard)
	}

	return &App{
		Store:     backend.Store,
		Docs:      docs,
		Auth:      service.NewAuthService(docs, locker, clk, cfg.JWTSecret),
		Games:     games,
		Sessions:  sessions,
		Players:   service.NewPlayerService(docs, locker, ids, clk, engine.IDBounds, events),
		Hub:       hub,
		events:    events,
		publisher: publisher,
		log:       log,
	}, nil
}

// Close stops the reveal timers and releases every connection
func (a *App) Close() {
	a.Sessions.Close()
	a.events.Close()
	a.Hub.Close()
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close RabbitMQ publisher")
		}
	}
	if err := a.Store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	}
}
