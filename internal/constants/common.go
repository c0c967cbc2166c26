package constants

// Common string constants used throughout the codebase
const (
	// Environments
	ProdEnvironment  = "prod"
	LocalEnvironment = "local"

	// Default HTTP port for the API server
	DefaultPort = "8080"

	// Reference currency every calculation normalizes into
	USDCurrency = "USD"
)

// Environment variable names
const (
	EnvStage       = "STAGE"
	EnvPort        = "PORT"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRatesURL    = "RATES_FEED_URL"
	EnvCORSOrigins = "CORS_ALLOWED_ORIGINS"
)
