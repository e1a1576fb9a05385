package config

const (
	EnvPrefix = "PIZZERIA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv      = "PIZZERIA_APP_ENV"
	EnvPort        = "PIZZERIA_APP_PORT"
	EnvAmountMin   = "PIZZERIA_AMOUNT_MIN"
	EnvAmountMax   = "PIZZERIA_AMOUNT_MAX"
	EnvDeliveryFee = "PIZZERIA_CART_DELIVERY_FEE"
	EnvBackendURL  = "PIZZERIA_BACKEND_URL"
	EnvDBDSN       = "PIZZERIA_DB_DSN"
	EnvDBDriver    = "PIZZERIA_DB_DRIVER"
	EnvDBHost      = "PIZZERIA_DB_HOST"
	EnvDBUser      = "PIZZERIA_DB_USER"
	EnvDBName      = "PIZZERIA_DB_NAME"
	EnvRedisURL    = "PIZZERIA_REDIS_URL"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
