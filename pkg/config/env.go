package config

const EnvPrefix = "FASTFOOD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"
)

const (
	EnvAppEnv                 = "FASTFOOD_APP_ENV"
	EnvPort                   = "FASTFOOD_APP_PORT"
	EnvDBDSN                  = "FASTFOOD_DB_DSN"
	EnvDBHost                 = "FASTFOOD_DB_HOST"
	EnvDBUser                 = "FASTFOOD_DB_USER"
	EnvDBName                 = "FASTFOOD_DB_NAME"
	EnvRedisURL               = "FASTFOOD_REDIS_URL"
	EnvJWTSecret              = "FASTFOOD_JWT_SECRET"
	EnvJWTIssuer              = "FASTFOOD_JWT_ISSUER"
	EnvJWTExpMins             = "FASTFOOD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FASTFOOD_REFRESH_TOKEN_TTL_MINUTES"
	EnvOTPStore               = "FASTFOOD_OTP_STORE"
	EnvOTPTTL                 = "FASTFOOD_OTP_TTL"
	EnvUseSQLite              = "FASTFOOD_USE_SQLITE"
	EnvGuestName              = "FASTFOOD_GUEST_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
