package db

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/thesrcielos/PadelTracker/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB
var Rdb *redis.Client

// Init opens the postgres and redis connections used by the whole service.
func Init(ctx context.Context, cfg *config.Config) error {
	var err error
	DB, err = OpenPostgres(cfg.Postgres, cfg.Environment)
	if err != nil {
		return err
	}

	Rdb, err = OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	return nil
}

func OpenPostgres(cfg config.PostgresConfig, environment string) (*gorm.DB, error) {
	level := gormlogger.Warn
	if environment == "production" {
		level = gormlogger.Error
	}

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return conn, nil
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig = &tls.Config{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Username:  cfg.Username,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConfig,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// Close releases both connections; safe to call after a partial Init.
func Close() error {
	var firstErr error
	if Rdb != nil {
		firstErr = Rdb.Close()
	}
	if DB != nil {
		sqlDB, err := DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
