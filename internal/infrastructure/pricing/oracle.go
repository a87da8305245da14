package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/redis"
)

// DefaultUSDPerSTX is the placeholder rate used when no live feed is configured
var DefaultUSDPerSTX = decimal.RequireFromString("0.5")

const (
	cacheKey        = "pricing:stx_usd"
	coinGeckoCoinID = "blockstack"
)

var (
	ErrInvalidRate = errors.New("exchange rate must be positive")

	cacheGet = redis.Get
	cacheSet = redis.Set
)

// Oracle quotes the USD price of one STX
type Oracle interface {
	USDPerSTX(ctx context.Context) (decimal.Decimal, error)
}

// FixedOracle always returns the same rate
type FixedOracle struct {
	rate decimal.Decimal
}

// NewFixedOracle parses a decimal rate such as "0.5"
func NewFixedOracle(rate string) (*FixedOracle, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return nil, fmt.Errorf("invalid fixed rate %q: %w", rate, err)
	}
	if !d.IsPositive() {
		return nil, ErrInvalidRate
	}
	return &FixedOracle{rate: d}, nil
}

func (o *FixedOracle) USDPerSTX(context.Context) (decimal.Decimal, error) {
	return o.rate, nil
}

// CoinGeckoOracle reads the simple price endpoint and caches the quote in
// Redis. Any failure falls back to the wrapped oracle.
type CoinGeckoOracle struct {
	baseURL    string
	httpClient *http.Client
	ttl        time.Duration
	fallback   Oracle
}

func NewCoinGeckoOracle(baseURL string, ttl time.Duration, fallback Oracle, httpClient *http.Client) *CoinGeckoOracle {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &CoinGeckoOracle{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		ttl:        ttl,
		fallback:   fallback,
	}
}

func (o *CoinGeckoOracle) USDPerSTX(ctx context.Context) (decimal.Decimal, error) {
	if cached, err := cacheGet(ctx, cacheKey); err == nil {
		if rate, err := decimal.NewFromString(cached); err == nil && rate.IsPositive() {
			return rate, nil
		}
	} else if !redis.IsMiss(err) {
		logger.Warn(ctx, "Price cache read failed", zap.Error(err))
	}

	rate, err := o.fetch(ctx)
	if err != nil {
		logger.Warn(ctx, "Live STX price unavailable, using fallback rate", zap.Error(err))
		return o.fallback.USDPerSTX(ctx)
	}

	if err := cacheSet(ctx, cacheKey, rate.String(), o.ttl); err != nil {
		logger.Warn(ctx, "Price cache write failed", zap.Error(err))
	}
	return rate, nil
}

func (o *CoinGeckoOracle) fetch(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", o.baseURL, coinGeckoCoinID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}
	if resp.StatusCode >= 400 {
		return decimal.Zero, fmt.Errorf("price api error: %s (status: %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	var payload map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to unmarshal price: %w", err)
	}
	quote, ok := payload[coinGeckoCoinID]
	if !ok || !quote.USD.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return quote.USD, nil
}
