package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock_metrics/internal/feature/candles/domain/entity"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&CandleModel{}), "failed to migrate table")
	return db
}

func daily(symbol string, day int, close float64) entity.Candle {
	return entity.Candle{
		Symbol:   symbol,
		Interval: entity.DailyInterval,
		Time:     baseTime.AddDate(0, 0, day),
		Open:     close - 1,
		High:     close + 2,
		Low:      close - 2,
		Close:    close,
		Volume:   1000,
	}
}

func countCandles(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&CandleModel{}).Count(&n).Error)
	return n
}

func TestCandleGorm_UpsertBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		seed      []entity.Candle
		candles   []entity.Candle
		wantCount int64
		validate  func(t *testing.T, db *gorm.DB)
	}{
		{
			name:      "success: insert multiple candles",
			candles:   []entity.Candle{daily("AAPL", 0, 100), daily("AAPL", 1, 101)},
			wantCount: 2,
		},
		{
			name:      "success: empty slice is a no-op",
			candles:   []entity.Candle{},
			wantCount: 0,
		},
		{
			name:      "success: same key overwrites prices",
			seed:      []entity.Candle{daily("AAPL", 0, 100)},
			candles:   []entity.Candle{daily("AAPL", 0, 210)},
			wantCount: 1,
			validate: func(t *testing.T, db *gorm.DB) {
				var m CandleModel
				require.NoError(t, db.First(&m).Error)
				assert.Equal(t, 209.0, m.Open)
				assert.Equal(t, 212.0, m.High)
				assert.Equal(t, 208.0, m.Low)
				assert.Equal(t, 210.0, m.Close)
			},
		},
		{
			name:      "success: mixed insert and update",
			seed:      []entity.Candle{daily("AAPL", 0, 100)},
			candles:   []entity.Candle{daily("AAPL", 0, 200), daily("AAPL", 1, 201)},
			wantCount: 2,
		},
		{
			name:      "success: interval is part of the key",
			seed:      []entity.Candle{daily("AAPL", 0, 100)},
			candles:   []entity.Candle{{Symbol: "AAPL", Interval: "1week", Time: baseTime, Open: 1, High: 1, Low: 1, Close: 1}},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewCandleRepository(db)
			require.NoError(t, repo.UpsertBatch(context.Background(), tt.seed))

			require.NoError(t, repo.UpsertBatch(context.Background(), tt.candles))
			assert.Equal(t, tt.wantCount, countCandles(t, db))
			if tt.validate != nil {
				tt.validate(t, db)
			}
		})
	}
}

func TestCandleGorm_Find(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCandleRepository(db)
	seed := []entity.Candle{
		daily("AAPL", 0, 100),
		daily("AAPL", 2, 102),
		daily("AAPL", 1, 101),
		daily("GOOGL", 0, 50),
		{Symbol: "AAPL", Interval: "1week", Time: baseTime, Open: 1, High: 1, Low: 1, Close: 1},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), seed))

	tests := []struct {
		name       string
		symbol     string
		interval   string
		outputsize int
		wantCloses []float64
	}{
		{name: "newest first", symbol: "AAPL", interval: "1day", outputsize: 10, wantCloses: []float64{102, 101, 100}},
		{name: "limit keeps the newest", symbol: "AAPL", interval: "1day", outputsize: 2, wantCloses: []float64{102, 101}},
		{name: "zero outputsize returns all", symbol: "AAPL", interval: "1day", outputsize: 0, wantCloses: []float64{102, 101, 100}},
		{name: "filters by interval", symbol: "AAPL", interval: "1week", outputsize: 10, wantCloses: []float64{1}},
		{name: "filters by symbol", symbol: "GOOGL", interval: "1day", outputsize: 10, wantCloses: []float64{50}},
		{name: "unknown symbol", symbol: "NOTFOUND", interval: "1day", outputsize: 10, wantCloses: []float64{}},
		{name: "empty symbol matches nothing", symbol: "", interval: "1day", outputsize: 10, wantCloses: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles, err := repo.Find(context.Background(), tt.symbol, tt.interval, tt.outputsize)
			require.NoError(t, err)

			closes := make([]float64, 0, len(candles))
			for _, c := range candles {
				assert.Equal(t, tt.symbol, c.Symbol)
				assert.Equal(t, tt.interval, c.Interval)
				closes = append(closes, c.Close)
			}
			assert.Equal(t, tt.wantCloses, closes)
		})
	}
}

func TestCandleGorm_Find_EntityMapping(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewCandleRepository(db)

	jst := time.FixedZone("JST", 9*60*60)
	in := entity.Candle{
		Symbol:   "AAPL",
		Interval: "1day",
		Time:     time.Date(2024, 6, 15, 21, 0, 0, 0, jst),
		Open:     150.5,
		High:     155.75,
		Low:      149.25,
		Close:    154.0,
		Volume:   5000000,
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), []entity.Candle{in}))

	result, err := repo.Find(context.Background(), "AAPL", "1day", 1)
	require.NoError(t, err)
	require.Len(t, result, 1)

	got := result[0]
	assert.Equal(t, time.UTC, got.Time.Location())
	assert.Equal(t, in.Time.Unix(), got.Timestamp())
	assert.Equal(t, in.Open, got.Open)
	assert.Equal(t, in.High, got.High)
	assert.Equal(t, in.Low, got.Low)
	assert.Equal(t, in.Close, got.Close)
	assert.Equal(t, in.Volume, got.Volume)
}
