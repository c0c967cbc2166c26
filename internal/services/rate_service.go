package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/client/cbr"
	"github.com/dealdesk/dealdesk-api/internal/logger"
)

// RateFeed is the outbound daily-rate feed dependency.
type RateFeed interface {
	GetDailyRates(ctx context.Context) (*cbr.DailyRates, error)
}

// Rate sources reported alongside resolved tables.
const (
	RateSourceCache    = "cache"
	RateSourceFeed     = "feed"
	RateSourceFallback = "fallback"
)

// fallbackRates is the static last-resort table, USD per unit. Stale by
// definition; only used when the feed is down and nothing is cached.
var fallbackRates = calc.RateTable{
	calc.CurrencyEUR: decimal.NewFromFloat(1.08),
	calc.CurrencyRUB: decimal.NewFromFloat(0.011),
	calc.CurrencyCNY: decimal.NewFromFloat(0.14),
	calc.CurrencyTRY: decimal.NewFromFloat(0.030),
	calc.CurrencyAED: decimal.NewFromFloat(0.2723),
	calc.CurrencyINR: decimal.NewFromFloat(0.012),
}

// RateService resolves the exchange-rate table for calculations with caching
// and a static fallback when the feed is unavailable.
type RateService struct {
	feed       RateFeed
	logger     *zap.Logger
	cacheMutex sync.RWMutex
	cached     calc.RateTable
	cachedAt   time.Time
	cacheTTL   time.Duration
}

// NewRateService creates a new rate service over the given feed.
func NewRateService(feed RateFeed) *RateService {
	return &RateService{
		feed:     feed,
		logger:   logger.Log,
		cacheTTL: 30 * time.Minute,
	}
}

// GetRateTable returns the current USD-per-unit rate table and the source it
// came from: cache, feed, or the static fallback.
func (s *RateService) GetRateTable(ctx context.Context) (calc.RateTable, string, error) {
	if table := s.getCached(); table != nil {
		return table, RateSourceCache, nil
	}

	daily, err := s.feed.GetDailyRates(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch rate feed, using static fallback",
			zap.Error(err))
		return cloneTable(fallbackRates), RateSourceFallback, nil
	}

	table, err := buildUSDTable(daily)
	if err != nil {
		s.logger.Warn("rate feed unusable, using static fallback",
			zap.String("feed_date", daily.Date),
			zap.Error(err))
		return cloneTable(fallbackRates), RateSourceFallback, nil
	}

	s.setCached(table)
	s.logger.Info("rate table refreshed from feed",
		zap.String("feed_date", daily.Date),
		zap.Int("currencies", len(table)))
	return cloneTable(table), RateSourceFeed, nil
}

// GetRate resolves a single currency's USD-per-unit rate.
func (s *RateService) GetRate(ctx context.Context, currency calc.Currency) (decimal.Decimal, string, error) {
	if currency == calc.CurrencyUSD {
		return decimal.NewFromInt(1), RateSourceCache, nil
	}
	table, source, err := s.GetRateTable(ctx)
	if err != nil {
		return decimal.Zero, source, err
	}
	rate, ok := table[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, source, &calc.CalculationError{
			Kind:  calc.ErrMissingExchangeRate,
			Field: "currency",
			Value: string(currency),
		}
	}
	return rate, source, nil
}

// MergeOverrides layers caller-supplied rates over the resolved table.
// Overrides win; the resolved table fills the gaps.
func MergeOverrides(base, overrides calc.RateTable) calc.RateTable {
	merged := cloneTable(base)
	for currency, rate := range overrides {
		merged[currency] = rate
	}
	return merged
}

// buildUSDTable converts the feed's RUB-per-unit rates into the engine's
// USD-per-unit table. The USD entry anchors the cross-division; without it
// the feed snapshot is unusable.
func buildUSDTable(daily *cbr.DailyRates) (calc.RateTable, error) {
	usdPerRUB, ok := daily.Rates[string(calc.CurrencyUSD)]
	if !ok || !usdPerRUB.IsPositive() {
		return nil, &calc.CalculationError{
			Kind:  calc.ErrMissingExchangeRate,
			Field: "feed_usd_anchor",
			Value: string(calc.CurrencyUSD),
		}
	}

	table := calc.RateTable{
		calc.CurrencyRUB: decimal.NewFromInt(1).Div(usdPerRUB),
	}
	for code, rubPerUnit := range daily.Rates {
		currency := calc.Currency(code)
		if currency == calc.CurrencyUSD || currency == calc.CurrencyRUB || !currency.Valid() {
			continue
		}
		if rubPerUnit.IsPositive() {
			table[currency] = rubPerUnit.Div(usdPerRUB)
		}
	}
	return table, nil
}

func (s *RateService) getCached() calc.RateTable {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	if s.cached == nil || time.Since(s.cachedAt) > s.cacheTTL {
		return nil
	}
	return cloneTable(s.cached)
}

func (s *RateService) setCached(table calc.RateTable) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cached = table
	s.cachedAt = time.Now()
}

func cloneTable(table calc.RateTable) calc.RateTable {
	clone := make(calc.RateTable, len(table))
	for currency, rate := range table {
		clone[currency] = rate
	}
	return clone
}
