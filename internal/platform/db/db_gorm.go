// Package db opens the gorm connection shared by the candle, symbol and metric repositories.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	candleadapters "stock_metrics/internal/feature/candles/adapters"
	metricadapters "stock_metrics/internal/feature/metrics/adapters"
	"stock_metrics/internal/feature/metrics/domain/entity"
	symbolentity "stock_metrics/internal/feature/symbollist/domain/entity"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLitePath = "stock_metrics.db"
	connectTimeout    = 60 * time.Second
)

// retryInterval は接続リトライの間隔です。テストで短縮します。
var retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	Driver        string
	Path          string // sqlite
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
// DB_DRIVER が未設定の場合は SQLite を使います。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:        strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER"))),
		Path:          os.Getenv("DB_PATH"),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       os.Getenv("DB_SSLMODE"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = defaultSQLitePath
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	return cfg
}

// BuildDSN はドライバに応じたDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	}
	path := cfg.Path
	if path == "" {
		path = defaultSQLitePath
	}
	if path == ":memory:" {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}

// Opener はDSNからgorm接続を開く関数です。
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor はドライバ名に対応する Opener を返します。
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gcfg)
		}, nil
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			pgcfg, err := pgx.ParseConfig(dsn)
			if err != nil {
				return nil, fmt.Errorf("parse postgres dsn: %w", err)
			}
			sqlDB := stdlib.OpenDB(*pgcfg)
			if err := sqlDB.Ping(); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
			return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// ConnectWithRetry は timeout まで retryInterval 間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB は設定に従って接続し、必要ならマイグレーションを実行します。
// SQLite では書き込みを直列化するため接続を1本に制限します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations {
		if err := Migrate(context.Background(), db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// Migrate は candles, symbols と全メトリクスのテーブルを作成します。
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&candleadapters.CandleModel{},
		&symbolentity.Symbol{},
	); err != nil {
		return err
	}
	return metricadapters.NewMetricRepository(db).CreateSchema(ctx, entity.AllKinds...)
}
