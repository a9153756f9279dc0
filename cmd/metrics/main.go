package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stock_metrics/internal/app/di"
	"stock_metrics/internal/feature/metrics/adapters"
	"stock_metrics/internal/feature/metrics/domain/entity"
	symbollistadapters "stock_metrics/internal/feature/symbollist/adapters"
	symbollistusecase "stock_metrics/internal/feature/symbollist/usecase"
	"stock_metrics/internal/platform/config"
	infradb "stock_metrics/internal/platform/db"
	"stock_metrics/internal/platform/observability"
)

const usage = "usage: metrics [-symbols LIST|FILE] [-config FILE] <atr|maxdrawdown|sharpe|weeklyrange|weeklyema|all>"

func main() {
	symbolsArg := flag.String("symbols", "", "comma separated symbols or a path to a symbols file (default: active symbols in the database)")
	configPath := flag.String("config", "", "optional YAML/JSON/TOML run configuration")
	flag.Usage = func() { fmt.Fprintln(flag.CommandLine.Output(), usage); flag.PrintDefaults() }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	kinds, err := entity.ParseKinds(flag.Arg(0))
	if err != nil {
		log.Println(err)
		flag.Usage()
		os.Exit(2)
	}

	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	if err := infradb.Migrate(ctx, db); err != nil {
		log.Fatal("failed to migrate: ", err)
	}

	rdb := di.NewRedis(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	symbols, err := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db)).Resolve(ctx, *symbolsArg)
	if err != nil {
		log.Fatal("failed to resolve symbols: ", err)
	}

	batch := di.NewBatch(cfg, di.BatchDeps{DB: db, Redis: rdb, Metrics: observability.NewMetrics("", nil)})
	summary, err := batch.Run(ctx, symbols, kinds)
	if summary != nil {
		fmt.Println(adapters.FormatSummary(summary))
		for _, f := range summary.Failures {
			log.Printf("[WARN] %s %s: %v", f.Symbol, orDash(string(f.Kind)), f.Err)
		}
	}
	if err != nil {
		stop()
		log.Fatal("metric batch failed: ", err)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
