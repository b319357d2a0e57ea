package config

const (
	EnvLogLevel          = "CARTSYNC_LOG_LEVEL"
	EnvLogFormat         = "CARTSYNC_LOG_FORMAT"
	EnvProfile           = "CARTSYNC_PROFILE"
	EnvSessionToken      = "CARTSYNC_SESSION_TOKEN"
	EnvGatewayBackend    = "CARTSYNC_GATEWAY_BACKEND"
	EnvFunctionsURL      = "CARTSYNC_GATEWAY_FUNCTIONS_URL"
	EnvAnonKey           = "CARTSYNC_GATEWAY_ANON_KEY"
	EnvRetryAttempts     = "CARTSYNC_GATEWAY_RETRY_ATTEMPTS"
	EnvDBDSN             = "CARTSYNC_DB_DSN"
	EnvLocalStoreBackend = "CARTSYNC_LOCAL_STORE_BACKEND"
	EnvSQLitePath        = "CARTSYNC_LOCAL_STORE_SQLITE_PATH"
	EnvRedisURL          = "CARTSYNC_LOCAL_STORE_REDIS_URL"
	EnvRetainFailedLines = "CARTSYNC_SYNC_RETAIN_FAILED_LINES"
	EnvProductsFile      = "CARTSYNC_CATALOG_PRODUCTS_FILE"
	EnvCurrency          = "CARTSYNC_PRICING_CURRENCY"
)
