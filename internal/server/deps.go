package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"admin_codegen/internal/classifier"
	"admin_codegen/internal/config"
	"admin_codegen/internal/database"
	"admin_codegen/internal/packager"
	"admin_codegen/internal/render"
	"admin_codegen/internal/repositories"
	"admin_codegen/internal/services"
)

// SetupLogging applies the configured level; console output is human readable.
func SetupLogging(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// Deps holds every connection and service of the generator.
type Deps struct {
	Pool  *pgxpool.Pool
	DB    *gorm.DB
	SQLDB *sql.DB
	Redis *redis.Client

	Gen *services.GenService
	SQL *services.SQLService
}

// Open connects to postgres (and redis when withCache) and wires the services.
func Open(ctx context.Context, cfg *config.Config, withCache bool) (*Deps, error) {
	d := &Deps{}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.Pool = pool

	if err := database.RunMigrations(ctx, pool); err != nil {
		d.Close()
		return nil, err
	}

	if d.DB, err = database.OpenGorm(cfg); err != nil {
		d.Close()
		return nil, err
	}
	if d.SQLDB, err = database.OpenSQL(cfg); err != nil {
		d.Close()
		return nil, err
	}

	var cache services.PreviewCache
	if withCache {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := d.Redis.Ping(pingCtx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis successfully")
		cache = repositories.NewRedisRepository(d.Redis, cfg.PreviewCacheTTL)
	}

	renderer, err := render.New()
	if err != nil {
		d.Close()
		return nil, err
	}

	d.Gen = services.NewGenService(
		repositories.NewGenTableRepository(d.DB),
		repositories.NewSchemaRepository(pool, cfg.Gen.ReservedPrefixes),
		cache,
		classifier.New(classifier.DefaultConfig()),
		renderer,
		packager.New(cfg.Gen.StagingDir),
		cfg.Gen,
	)
	d.SQL = services.NewSQLService(d.SQLDB)
	return d, nil
}

func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if d.SQLDB != nil {
		d.SQLDB.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if d.Pool != nil {
		d.Pool.Close()
		log.Debug().Msg("Database connection pool closed")
	}
}
