package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/logger"
	"github.com/dealdesk/dealdesk-api/internal/mapping"
)

// SnapshotStore persists finished calculation results. A nil store disables
// persistence; calculations still run.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, result *calc.QuoteCalculationResult) error
}

// CalculationService orchestrates one quote calculation: resolve rates, map
// raw records into the engine contract, run the pipeline, snapshot the
// result.
type CalculationService struct {
	calculator  *calc.Calculator
	rateService *RateService
	store       SnapshotStore
	logger      *zap.Logger
}

// NewCalculationService creates a new calculation service.
func NewCalculationService(rateService *RateService, store SnapshotStore) *CalculationService {
	return &CalculationService{
		calculator:  calc.NewCalculator(),
		rateService: rateService,
		store:       store,
		logger:      logger.Log,
	}
}

// CalculateQuote runs the full calculation for a raw quote record. Rate
// overrides from the caller win over the resolved table, so a reviewer can
// reprice a deal at pinned rates.
func (s *CalculationService) CalculateQuote(ctx context.Context, record *mapping.QuoteRecord, items []mapping.ItemRecord, overrides calc.RateTable) (*calc.QuoteCalculationResult, error) {
	rates, source, err := s.rateService.GetRateTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rate table: %w", err)
	}
	if len(overrides) > 0 {
		rates = MergeOverrides(rates, overrides)
	}

	in, products, err := mapping.BuildCalculationInputs(record, items, rates)
	if err != nil {
		return nil, fmt.Errorf("failed to build calculation inputs: %w", err)
	}

	result, err := s.calculator.Calculate(in, products)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate quote %s: %w", record.QuoteID, err)
	}

	s.logger.Info("quote calculated",
		zap.String("quote_id", record.QuoteID),
		zap.String("rate_source", source),
		zap.Int("items", len(result.Items)),
		zap.Int("failed_items", result.FailedItems))

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, result); err != nil {
			// Persistence is best-effort: the caller still gets the result.
			s.logger.Warn("failed to persist calculation snapshot",
				zap.String("quote_id", record.QuoteID),
				zap.Error(err))
		}
	}

	return result, nil
}
