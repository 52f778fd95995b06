package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	StoreDriver string   `envconfig:"STORE_DRIVER" default:"scylla"`
	BaseURL     string   `envconfig:"BASE_URL" default:"http://localhost:8080"`
	FrontendURL string   `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Scylla  ScyllaConfig
	Redis   RedisConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	Stripe  StripeConfig
	SMTP    SMTPConfig
	OAuth   OAuthConfig

	JWTSecret     string        `envconfig:"JWT_SECRET"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"24h"`
	AuthDisabled  bool          `envconfig:"AUTH_DISABLED" default:"false"`
	SessionSecret string        `envconfig:"SESSION_SECRET"`

	OfferSweepInterval time.Duration `envconfig:"OFFER_SWEEP_INTERVAL" default:"1h"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

type ScyllaConfig struct {
	Hosts             []string      `envconfig:"SCYLLA_HOSTS" default:"127.0.0.1"`
	Keyspace          string        `envconfig:"SCYLLA_KEYSPACE" default:"reviere"`
	Username          string        `envconfig:"SCYLLA_USERNAME"`
	Password          string        `envconfig:"SCYLLA_PASSWORD"`
	Timeout           time.Duration `envconfig:"SCYLLA_TIMEOUT" default:"5s"`
	NumConns          int           `envconfig:"SCYLLA_NUM_CONNS" default:"20"`
	ReplicationFactor int           `envconfig:"SCYLLA_REPLICATION_FACTOR" default:"1"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type ElasticConfig struct {
	URL      string `envconfig:"ELASTIC_URL"`
	User     string `envconfig:"ELASTIC_USER"`
	Password string `envconfig:"ELASTIC_PASSWORD"`
	Index    string `envconfig:"ELASTIC_PRODUCTS_INDEX" default:"productos"`
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"productos"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	PublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `envconfig:"STRIPE_CURRENCY" default:"mxn"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM"`
	// ReceiptPDF active la génération du PDF via Chrome headless.
	ReceiptPDF bool `envconfig:"SMTP_RECEIPT_PDF" default:"false"`
}

type OAuthConfig struct {
	GoogleClientID        string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID        string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret    string `envconfig:"GITHUB_CLIENT_SECRET"`
	LinkedInClientID      string `envconfig:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret  string `envconfig:"LINKEDIN_CLIENT_SECRET"`
	MicrosoftClientID     string `envconfig:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `envconfig:"MICROSOFT_CLIENT_SECRET"`
}

// Load lit le fichier .env s'il existe puis décode l'environnement.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Info("✅ Fichier .env chargé avec succès")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) MemoryStore() bool { return c.StoreDriver == "memory" }
