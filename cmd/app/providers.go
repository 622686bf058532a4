package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/auth"
	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/domain/storage"
	"github.com/yanqian/kai-insight/internal/infra/config"
	"github.com/yanqian/kai-insight/internal/infra/kvstore"
	"github.com/yanqian/kai-insight/internal/infra/llm"
	"github.com/yanqian/kai-insight/internal/infra/userrepo"
)

func provideAnalysisConfig(cfg *config.Config) analysis.Config {
	return analysis.Config{
		Model:            cfg.LLM.Model,
		ImageModel:       cfg.LLM.ImageModel,
		Temperature:      cfg.LLM.Temperature,
		MinInputLen:      cfg.Analysis.MinInputLen,
		MaxInputLen:      cfg.Analysis.MaxInputLen,
		ImagesEnabled:    cfg.Analysis.ImagesEnabled,
		ImageStyleSuffix: cfg.Analysis.ImageStyleSuffix,
		ImageAspectRatio: cfg.Analysis.ImageAspectRatio,
		Retry: analysis.RetryConfig{
			MaxRetries: cfg.Analysis.MaxRetries,
			BaseDelay:  cfg.Analysis.BaseDelay,
		},
	}
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) (llm.Generator, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	logger.Info("llm provider selected", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model, "image_model", cfg.LLM.ImageModel)
	return gen, nil
}

func provideTextGenerator(g llm.Generator) analysis.TextGenerator { return g }

func provideImageGenerator(g llm.Generator) analysis.ImageGenerator { return g }

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{MaxItems: cfg.History.MaxItems}
}

func provideAuthConfig(cfg *config.Config, logger *slog.Logger) (auth.Config, error) {
	secret := strings.TrimSpace(cfg.Auth.Secret)
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return auth.Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = base64.RawURLEncoding.EncodeToString(buf)
		logger.Warn("auth.secret not set, using a random secret; tokens will not survive a restart")
	}
	return auth.Config{
		Secret:          secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}, nil
}

// providePostgresPool returns nil when no DSN is configured or the database is unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func provideUserRepository(pool *pgxpool.Pool, logger *slog.Logger) auth.Repository {
	if pool == nil {
		logger.Info("using memory user repository")
		return userrepo.NewMemoryRepository()
	}
	repo := userrepo.NewPostgresRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("user schema migration failed, using memory user repository", "error", err)
		return userrepo.NewMemoryRepository()
	}
	logger.Info("postgres user repository enabled")
	return repo
}

// provideKeyValue opens the configured history/preferences backend and
// falls back to memory when it is unreachable.
func provideKeyValue(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) storage.KeyValue {
	backend := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	store, err := openKeyValue(backend, cfg, pool, logger)
	if err != nil {
		logger.Error("storage backend unavailable, falling back to memory store", "backend", backend, "error", err)
		return kvstore.NewMemoryStore()
	}
	logger.Info("storage backend enabled", "backend", backend)
	return store
}

func openKeyValue(backend string, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (storage.KeyValue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch backend {
	case config.BackendSQLite:
		return kvstore.OpenSQLite(ctx, cfg.Storage.SQLite.Path)
	case config.BackendPostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres pool not available")
		}
		store := kvstore.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("migrate kv_entries: %w", err)
		}
		return store, nil
	case config.BackendValkey:
		opt, err := buildValkeyOptions(cfg.Storage.Valkey.Addr)
		if err != nil {
			return nil, err
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			return nil, err
		}
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			return nil, fmt.Errorf("valkey ping: %w", err)
		}
		return kvstore.NewValkeyStore(client, cfg.Storage.Valkey.Prefix), nil
	case config.BackendObjectStore:
		oc := cfg.Storage.ObjectStore
		store, err := kvstore.NewObjectStore(kvstore.ObjectStoreConfig{
			Endpoint:  oc.Endpoint,
			AccessKey: oc.AccessKey,
			SecretKey: oc.SecretKey,
			Bucket:    oc.Bucket,
			Region:    oc.Region,
			Prefix:    oc.Prefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("object store ping: %w", err)
		}
		return store, nil
	default:
		return kvstore.NewMemoryStore(), nil
	}
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
