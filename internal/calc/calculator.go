package calc

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Calculator runs the pricing pipeline. It holds no mutable state of its
// own: every Calculate call is a pure function of its inputs, safe for
// concurrent use.
type Calculator struct {
	observer PhaseObserver
}

// PhaseObserver is invoked before each phase executes for an item. Intended
// for tests and tracing; the hook must not mutate anything.
type PhaseObserver func(itemID uuid.UUID, phase Phase)

// Option configures a Calculator.
type Option func(*Calculator)

// WithPhaseObserver registers a phase execution hook.
func WithPhaseObserver(fn PhaseObserver) Option {
	return func(c *Calculator) {
		c.observer = fn
	}
}

// NewCalculator creates a calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate transforms the quote's inputs into per-item and quote-level
// pricing results. Quote-level input defects (unknown seller company,
// missing rate for a quote-level cost) fail the whole call; item-scoped
// defects mark only the affected item and sibling items still calculate.
func (c *Calculator) Calculate(in *QuoteCalculationInput, items []ProductCalculationInput) (*QuoteCalculationResult, error) {
	if in == nil {
		return nil, missingField("", "quote_input")
	}

	q, err := resolveQuote(in)
	if err != nil {
		return nil, err
	}

	states := make([]*itemState, len(items))
	results := make([]ProductCalculationResult, len(items))

	// Boundary pass: resolve every item's money to USD before any phase
	// runs. Items that cannot resolve are marked failed and excluded from
	// cost allocation.
	for i := range items {
		st, err := resolveItem(q, &items[i])
		if err != nil {
			results[i] = failedItemResult(&items[i], err)
			continue
		}
		states[i] = st
	}

	// Allocation pass: quote-level costs are distributed pro-rata by
	// discounted item value over the items that resolved.
	denominator := decimal.Zero
	for _, st := range states {
		if st != nil {
			denominator = denominator.Add(discountedLineValue(q, st))
		}
	}
	for _, st := range states {
		if st == nil {
			continue
		}
		if denominator.IsPositive() {
			st.weight = discountedLineValue(q, st).Div(denominator)
		} else {
			st.weight = decimal.Zero
		}
	}

	// Pipeline pass: the fixed phase sequence, per item.
	for i, st := range states {
		if st == nil {
			continue
		}
		if err := c.runPipeline(q, st); err != nil {
			results[i] = failedItemResult(&items[i], err)
			continue
		}
		results[i] = st.buildResult(q)
	}

	return aggregate(q, results), nil
}

func (c *Calculator) runPipeline(q *quoteState, s *itemState) error {
	for _, step := range phaseSequence {
		if c.observer != nil {
			c.observer(s.in.ItemID, step.name)
		}
		if err := step.run(q, s); err != nil {
			return err
		}
	}
	return nil
}

func failedItemResult(in *ProductCalculationInput, err error) ProductCalculationResult {
	var ce *CalculationError
	if !errors.As(err, &ce) {
		ce = &CalculationError{Kind: ErrMissingRequiredField, Field: "unknown"}
	}
	return ProductCalculationResult{
		ItemID:   in.ItemID,
		Name:     in.Name,
		Quantity: in.Quantity,
		Err:      newItemError(ce),
	}
}
