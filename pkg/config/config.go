package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	OTP           OTPConfig
	Sendgrid      SendgridConfig
	GoogleOAuth   GoogleOAuthConfig
	Catalog       CatalogConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.OTP.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FASTFOOD_APP_ENV" required:"true"`
	Port         string `envconfig:"FASTFOOD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FASTFOOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FASTFOOD_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"FASTFOOD_LOG_FORMAT" default:"json"`
	// GuestName is recorded as the customer on orders placed without a login.
	GuestName      string   `envconfig:"FASTFOOD_GUEST_NAME" default:"Khách"`
	AllowedOrigins []string `envconfig:"FASTFOOD_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FASTFOOD_DB_DSN"`
	Driver string `envconfig:"FASTFOOD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FASTFOOD_DB_HOST"`
	LegacyPort     int    `envconfig:"FASTFOOD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FASTFOOD_DB_USER"`
	LegacyPassword string `envconfig:"FASTFOOD_DB_PASSWORD"`
	LegacyName     string `envconfig:"FASTFOOD_DB_NAME"`
	LegacySSLMode  string `envconfig:"FASTFOOD_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"FASTFOOD_SQLITE_PATH" default:"fastfood.db"`

	MaxOpenConns    int           `envconfig:"FASTFOOD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FASTFOOD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FASTFOOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FASTFOOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FASTFOOD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FASTFOOD_REDIS_ADDR"`
	Password     string        `envconfig:"FASTFOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"FASTFOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FASTFOOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FASTFOOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FASTFOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FASTFOOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FASTFOOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FASTFOOD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FASTFOOD_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FASTFOOD_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FASTFOOD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FASTFOOD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FASTFOOD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FASTFOOD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FASTFOOD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FASTFOOD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	OTPWindow          time.Duration `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPEmailLimit      int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"5"`
	OTPIPLimit         int           `envconfig:"FASTFOOD_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"30"`
	AllowAdminSignup   bool          `envconfig:"FASTFOOD_AUTH_ALLOW_ADMIN_SIGNUP" default:"true"`
}

type OTPConfig struct {
	Store string        `envconfig:"FASTFOOD_OTP_STORE" default:"memory"`
	TTL   time.Duration `envconfig:"FASTFOOD_OTP_TTL" default:"5m"`
	// RetentionGrace keeps expired redis entries around long enough to report them as expired.
	RetentionGrace time.Duration `envconfig:"FASTFOOD_OTP_RETENTION_GRACE" default:"1h"`
}

func (o OTPConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Store)) {
	case OTPStoreMemory, OTPStoreRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvOTPStore, OTPStoreMemory, OTPStoreRedis)
	}
	if o.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvOTPTTL)
	}
	return nil
}

// UsesRedis reports whether OTP entries are kept in redis instead of process memory.
func (o OTPConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(o.Store), OTPStoreRedis)
}

type SendgridConfig struct {
	APIKey      string        `envconfig:"FASTFOOD_SENDGRID_API_KEY"`
	DefaultFrom string        `envconfig:"FASTFOOD_SENDGRID_FROM_EMAIL"`
	FromName    string        `envconfig:"FASTFOOD_SENDGRID_FROM_NAME" default:"FastFood"`
	Timeout     time.Duration `envconfig:"FASTFOOD_SENDGRID_TIMEOUT" default:"10s"`
}

// Enabled reports whether outbound email can be delivered through SendGrid.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.DefaultFrom) != ""
}

type GoogleOAuthConfig struct {
	ClientID     string        `envconfig:"FASTFOOD_GOOGLE_CLIENT_ID"`
	ClientSecret string        `envconfig:"FASTFOOD_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string        `envconfig:"FASTFOOD_GOOGLE_REDIRECT_URL"`
	StateTTL     time.Duration `envconfig:"FASTFOOD_GOOGLE_STATE_TTL" default:"10m"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"FASTFOOD_CATALOG_CACHE_TTL" default:"2m"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"FASTFOOD_CRON_INTERVAL" default:"1h"`
	LockTTL      time.Duration `envconfig:"FASTFOOD_CRON_LOCK_TTL" default:"30m"`
	GuestCartTTL time.Duration `envconfig:"FASTFOOD_CRON_GUEST_CART_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FASTFOOD_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FASTFOOD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
