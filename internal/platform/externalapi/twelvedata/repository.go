package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/candles/usecase"
	"stock_metrics/internal/platform/externalapi/twelvedata/dto"
)

// APIError is a non-2xx response or an error payload from Twelve Data.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twelvedata http %d", e.StatusCode)
	}
	return fmt.Sprintf("twelvedata http %d: %s", e.StatusCode, e.Message)
}

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetTimeSeries はTwelve Data APIから時系列株価データを取得し、古い順に並べて返します。
// 返却するローソク足には symbol と interval が設定されます。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, &APIError{StatusCode: res.StatusCode}
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode time_series: %w", err)
	}
	// Twelve Data はエラーでも 200 を返すことがある
	if body.Status == "error" {
		return nil, &APIError{StatusCode: body.Code, Message: body.Message}
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		c, err := toCandle(v)
		if err != nil {
			return nil, err
		}
		c.Symbol = symbol
		c.Interval = interval
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

// toCandle はDTOの文字列値をパースしてドメインエンティティに変換します。
func toCandle(v dto.TimeSeriesValue) (entity.Candle, error) {
	tm, err := parseDatetime(v.Datetime)
	if err != nil {
		return entity.Candle{}, err
	}
	prices := [4]float64{}
	for i, f := range []struct{ name, raw string }{
		{"open", v.Open}, {"high", v.High}, {"low", v.Low}, {"close", v.Close},
	} {
		p, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		prices[i] = p
	}
	// 為替・指数など出来高のない銘柄では空文字が返る
	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}
	return entity.Candle{
		Time:   tm,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: vol,
	}, nil
}

func parseDatetime(s string) (time.Time, error) {
	tm, err := time.Parse(time.DateTime, s)
	if err == nil {
		return tm, nil
	}
	tm, err = time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return tm, nil
}
