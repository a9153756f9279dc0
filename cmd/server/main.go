package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock_metrics/internal/app/di"
	"stock_metrics/internal/app/router"
	candleshandler "stock_metrics/internal/feature/candles/transport/handler"
	candleusecase "stock_metrics/internal/feature/candles/usecase"
	metricadapters "stock_metrics/internal/feature/metrics/adapters"
	metricshandler "stock_metrics/internal/feature/metrics/transport/handler"
	metricusecase "stock_metrics/internal/feature/metrics/usecase"
	symbollistadapters "stock_metrics/internal/feature/symbollist/adapters"
	symbollisthandler "stock_metrics/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_metrics/internal/feature/symbollist/usecase"
	"stock_metrics/internal/platform/config"
	infradb "stock_metrics/internal/platform/db"
	platformhandler "stock_metrics/internal/platform/http/handler"
	jwtmw "stock_metrics/internal/platform/jwt"
	"stock_metrics/internal/platform/observability"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "optional run configuration used by POST /runs")
	issueToken := flag.String("issue-token", "", "print a metrics:run token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	if *issueToken != "" {
		token, err := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), *tokenTTL).GenerateToken(*issueToken, jwtmw.ScopeRun)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	if err := infradb.Migrate(ctx, db); err != nil {
		log.Fatal("failed to migrate: ", err)
	}

	// Redis
	rdb := di.NewRedis(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	metrics := observability.NewMetrics("", nil)

	// Repository
	symbolRepo := symbollistadapters.NewSymbolRepository(db)
	metricRepo := metricadapters.NewMetricRepository(db)

	// Usecase
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolRepo)
	candlesUC := candleusecase.NewCandlesUsecase(di.NewCandleRepository(db, rdb))
	queryUC := metricusecase.NewQueryUsecase(metricRepo)
	batch := di.NewBatch(cfg, di.BatchDeps{DB: db, Redis: rdb, Metrics: metrics})

	// Handler
	metricH := metricshandler.NewMetricHandler(queryUC, batch, symbolUC)
	checks := map[string]platformhandler.Check{"db": metricRepo.Ping}
	if rdb != nil {
		metricH.WithRuns(di.NewRunHistory(rdb))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Health:     platformhandler.Health(checks),
		Metrics:    metricH,
		Candles:    candleshandler.NewCandlesHandler(candlesUC),
		Symbols:    symbollisthandler.NewSymbolHandler(symbolUC),
		Prometheus: metrics.Handler(),
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. POST /runs and POST /symbols will fail until it is.")
	}

	srv := &http.Server{Addr: *addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println("[ERROR] shutdown:", err)
		}
	}()

	log.Println("listening on", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
