package server

import (
	"context"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dealdesk/dealdesk-api/internal/client/cbr"
	"github.com/dealdesk/dealdesk-api/internal/constants"
	"github.com/dealdesk/dealdesk-api/internal/handlers"
	"github.com/dealdesk/dealdesk-api/internal/logger"
	"github.com/dealdesk/dealdesk-api/internal/services"
	"github.com/dealdesk/dealdesk-api/internal/store"
)

// Handler definitions
var (
	healthHandler *handlers.HealthHandler
	quoteHandler  *handlers.QuoteHandler
	rateHandler   *handlers.RateHandler

	// Database
	connPool *pgxpool.Pool
)

// InitializeHandlers wires the service graph. A missing DATABASE_URL
// disables snapshot persistence rather than failing startup; the rate feed
// falls back to a static table when unreachable, so no outbound dependency
// is required to serve calculations.
func InitializeHandlers() {
	rateService := services.NewRateService(cbr.NewClient(os.Getenv(constants.EnvRatesURL)))

	var snapshotReader handlers.SnapshotReader
	var calcStore services.SnapshotStore
	if dbURL := os.Getenv(constants.EnvDatabaseURL); dbURL != "" {
		pool, err := store.NewPool(context.Background(), dbURL)
		if err != nil {
			logger.Fatal("Unable to create connection pool", zap.Error(err))
		}
		connPool = pool
		snapshotStore := store.NewSnapshotStore(pool)
		snapshotReader = snapshotStore
		calcStore = snapshotStore
	} else {
		logger.Warn("DATABASE_URL not set, snapshot persistence disabled")
	}

	calculationService := services.NewCalculationService(rateService, calcStore)

	healthHandler = handlers.NewHealthHandler()
	quoteHandler = handlers.NewQuoteHandler(calculationService, snapshotReader)
	rateHandler = handlers.NewRateHandler(rateService)
}

// InitializeRoutes registers the API surface on the router.
func InitializeRoutes(router *gin.Engine) {
	router.Use(configureCORS())

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/quotes/calculate", quoteHandler.CalculateQuote)
		v1.GET("/quotes/:quote_id/snapshot", quoteHandler.GetLatestSnapshot)
		v1.GET("/quotes/:quote_id/snapshots", quoteHandler.ListSnapshots)
		v1.GET("/rates", rateHandler.GetRates)
	}
}

// Shutdown releases long-lived server resources.
func Shutdown() {
	if connPool != nil {
		connPool.Close()
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv(constants.EnvCORSOrigins)
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	return cors.New(corsConfig)
}
