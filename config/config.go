package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Defaults suit local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database; when disabled profiles, reset tokens and activity stay in memory
	DBEnabled     bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis; sessions fall back to process memory when disabled
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Managed identity backend: "firebase" or "none"
	IdentityBackend         string
	FirebaseProjectID       string
	FirebaseAPIKey          string
	FirebaseCredentialsFile string // optional; Application Default Credentials otherwise
	FirebaseActionURL       string
	IdentityTimeout         time.Duration
	GoogleCertsURL          string

	// Local fallback accounts
	FallbackUsersFile string
	BcryptCost        int

	// Demo account
	DemoEnabled  bool
	DemoEmail    string
	DemoPassword string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	RememberTTL   time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// Password reset
	ResetTokenTTL    time.Duration
	ResetPasswordURL string
	ResetViaProvider bool
	ExposeResetLink  bool

	// RabbitMQ
	RabbitMQURL string
	ResetQueue  string

	// Elasticsearch; empty addresses disable the activity index
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESActivityIndex    string

	AuditBuffer int

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid duration for %s: %q, using default %v", key, v, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "aquatech-dashboard"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		DBEnabled:     getbool("DB_ENABLED", false),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "aquatech"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisEnabled:  getbool("REDIS_ENABLED", true),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		IdentityBackend:         strings.ToLower(getenv("IDENTITY_BACKEND", "none")),
		FirebaseProjectID:       getenv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:          getenv("FIREBASE_API_KEY", ""),
		FirebaseCredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseActionURL:       getenv("FIREBASE_ACTION_URL", ""),
		IdentityTimeout:         getdur("IDENTITY_TIMEOUT", 5*time.Second),
		GoogleCertsURL:          getenv("GOOGLE_CERTS_URL", ""),

		FallbackUsersFile: getenv("FALLBACK_USERS_FILE", "fallback_users.json"),
		BcryptCost:        getint("BCRYPT_COST", 12),

		DemoEnabled:  getbool("DEMO_ENABLED", true),
		DemoEmail:    getenv("DEMO_EMAIL", "demo@aquatech.com"),
		DemoPassword: getenv("DEMO_PASSWORD", "Demo123!"),

		SessionSecret: getenv("SESSION_SECRET", "devsessionsecret"),
		SessionTTL:    getdur("SESSION_TTL", 24*time.Hour),
		RememberTTL:   getdur("REMEMBER_TTL", 30*24*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		ResetTokenTTL:    getdur("RESET_TOKEN_TTL", time.Hour),
		ResetPasswordURL: getenv("RESET_PASSWORD_URL", "http://localhost:8080/reset-password"),
		ResetViaProvider: getbool("RESET_VIA_PROVIDER", false),
		ExposeResetLink:  getbool("EXPOSE_RESET_LINK", false),

		RabbitMQURL: getenv("RABBITMQ_URL", ""),
		ResetQueue:  getenv("RESET_QUEUE", "password_resets"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESActivityIndex:    getenv("ES_ACTIVITY_INDEX", "user-activity"),

		AuditBuffer: getint("AUDIT_BUFFER", 256),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
