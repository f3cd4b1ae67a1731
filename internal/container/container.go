package container

import (
	"context"
	"fmt"

	"decisions-api/internal/config"
	"decisions-api/internal/repository"
	"decisions-api/internal/service"
	"decisions-api/pkg/database"
	"decisions-api/pkg/logger"
	"decisions-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          database.Database
	Repository  repository.DecisionRepository
	RedisClient *redis.Client
	Services    *service.Services
}

// New creates a new dependency injection container. The store is required;
// Redis is optional and its absence only disables caching and rate limiting.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	db, repo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching or rate limiting")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching or rate limiting")
	}

	cache := service.NewCacheService(redisClient, logger.Logger)

	services := &service.Services{
		Decisions:   service.NewDecisionService(repo, cache, cfg.SidebarCacheTTL, logger.Logger, service.SystemClock),
		Voting:      service.NewVotingService(repo, cfg.VoterHashSalt, logger.Logger, service.SystemClock),
		RateLimiter: service.NewRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.VoterHashSalt, logger.Logger),
		Cache:       cache,
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Repository:  repo,
		RedisClient: redisClient,
		Services:    services,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (database.Database, repository.DecisionRepository, error) {
	switch cfg.DatabaseType {
	case config.DatabasePostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db.Pool); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("PostgreSQL store ready")
		return db, repository.NewPostgresDecisionRepository(db), nil

	case config.DatabaseSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Info("SQLite store ready")
		return db, repository.NewSQLiteDecisionRepository(db), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}

// Close releases Redis and the store
func (c *Container) Close() error {
	var err error
	if c.RedisClient != nil {
		err = c.RedisClient.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return err
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
