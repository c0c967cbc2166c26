package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/mapping"
	"github.com/dealdesk/dealdesk-api/internal/services"
	"github.com/dealdesk/dealdesk-api/internal/store"
)

// SnapshotReader reads persisted calculation snapshots.
type SnapshotReader interface {
	GetLatestSnapshot(ctx context.Context, quoteID uuid.UUID) (*store.Snapshot, error)
	ListSnapshots(ctx context.Context, quoteID uuid.UUID) ([]store.Snapshot, error)
}

type QuoteHandler struct {
	calculationService *services.CalculationService
	snapshots          SnapshotReader
}

// NewQuoteHandler creates a handler over the calculation service. The
// snapshot reader may be nil when persistence is disabled.
func NewQuoteHandler(calculationService *services.CalculationService, snapshots SnapshotReader) *QuoteHandler {
	return &QuoteHandler{
		calculationService: calculationService,
		snapshots:          snapshots,
	}
}

// CalculateQuoteRequest is the calculation request body: the raw quote
// record, its line items, and optional pinned exchange rates.
type CalculateQuoteRequest struct {
	Quote         mapping.QuoteRecord        `json:"quote" binding:"required"`
	Items         []mapping.ItemRecord       `json:"items" binding:"required"`
	RateOverrides map[string]decimal.Decimal `json:"rate_overrides,omitempty"`
}

// CalculateQuote runs the pricing pipeline for a quote and returns the full
// calculation result, per-item errors inlined.
func (h *QuoteHandler) CalculateQuote(c *gin.Context) {
	var req CalculateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	overrides, err := buildOverrides(req.RateOverrides)
	if err != nil {
		sendCalcError(c, err)
		return
	}

	result, err := h.calculationService.CalculateQuote(c.Request.Context(), &req.Quote, req.Items, overrides)
	if err != nil {
		sendCalcError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLatestSnapshot returns the most recent persisted calculation for a
// quote.
func (h *QuoteHandler) GetLatestSnapshot(c *gin.Context) {
	if h.snapshots == nil {
		sendError(c, http.StatusNotFound, "Snapshot persistence is disabled", nil)
		return
	}
	quoteID, err := uuid.Parse(c.Param("quote_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid quote id", err)
		return
	}

	snapshot, err := h.snapshots.GetLatestSnapshot(c.Request.Context(), quoteID)
	if err != nil {
		handleDBError(c, err, "No snapshot for quote")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListSnapshots returns every persisted calculation for a quote, newest
// first.
func (h *QuoteHandler) ListSnapshots(c *gin.Context) {
	if h.snapshots == nil {
		sendError(c, http.StatusNotFound, "Snapshot persistence is disabled", nil)
		return
	}
	quoteID, err := uuid.Parse(c.Param("quote_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid quote id", err)
		return
	}

	snapshots, err := h.snapshots.ListSnapshots(c.Request.Context(), quoteID)
	if err != nil {
		handleDBError(c, err, "No snapshots for quote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

// buildOverrides normalizes the request's rate-override keys into engine
// currencies. Unknown codes are rejected, not ignored.
func buildOverrides(raw map[string]decimal.Decimal) (calc.RateTable, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	overrides := make(calc.RateTable, len(raw))
	for code, rate := range raw {
		currency, err := mapping.NormalizeCurrency(code, "rate_override")
		if err != nil {
			return nil, err
		}
		overrides[currency] = rate
	}
	return overrides, nil
}
