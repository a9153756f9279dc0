package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock_metrics/internal/app/di"
	candleusecase "stock_metrics/internal/feature/candles/usecase"
	symbollistadapters "stock_metrics/internal/feature/symbollist/adapters"
	symbollistusecase "stock_metrics/internal/feature/symbollist/usecase"
	infradb "stock_metrics/internal/platform/db"
)

func main() {
	symbolsArg := flag.String("symbols", "", "comma separated symbols or a path to a symbols file; registered as active before ingest")
	outputSize := flag.Int("outputsize", candleusecase.DefaultIngestOutputSize, "candles requested per symbol")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall ingest timeout")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	if err := infradb.Migrate(ctx, db); err != nil {
		log.Fatal("failed to migrate: ", err)
	}

	symbolUC := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db))
	if *symbolsArg != "" {
		codes, err := symbolUC.Resolve(ctx, *symbolsArg)
		if err != nil {
			log.Fatal("failed to read symbols: ", err)
		}
		created, err := symbolUC.Register(ctx, codes)
		if err != nil {
			log.Fatal("failed to register symbols: ", err)
		}
		log.Printf("registered %d new symbols", created)
	}

	symbols, err := symbolUC.Resolve(ctx, "")
	if err != nil {
		log.Fatal("failed to load symbols: ", err)
	}

	// 取り込み結果はキャッシュを通さず直接DBに書き込む
	uc := candleusecase.NewIngestUsecase(di.NewMarket(), di.NewCandleRepository(db, nil), di.NewMarketLimiter()).
		WithOutputSize(*outputSize)

	sum, err := uc.IngestAll(ctx, symbols)
	if err != nil {
		cancel()
		log.Fatal(err)
	}
	for s, ferr := range sum.Failed {
		log.Printf("[WARN] %s: %v", s, ferr)
	}
	log.Printf("ingest ok: %d symbols, %d rows, %d failed, %s", len(sum.Ingested), sum.Rows, len(sum.Failed), sum.Elapsed)
}
