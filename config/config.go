package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP        HTTP
	Store       Store
	Postgres    Postgres
	Redis       Redis
	API         API
	Cache       Cache
	Jobs        Jobs
	GoogleDrive GoogleDrive
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Store struct {
	// Backend is either "file" or "postgres".
	Backend string `env:"STORE_BACKEND" envDefault:"file"`
	FileDir string `env:"FILE_STORE_DIR" envDefault:"./fintrack-data"`
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"fintrack"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"fintrack"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug     bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	Coingecko CoingeckoApi
	Yahoo     YahooApi
	Gemini    GeminiApi
	Gist      GistApi
}

type CoingeckoApi struct {
	Url string `env:"COINGECKO_API_URL" envDefault:"https://api.coingecko.com/api/v3"`
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	// ProxyUrl, when set, is a CORS-relaxing proxy that wraps the upstream
	// body as a JSON string field named "contents".
	ProxyUrl string `env:"YAHOO_PROXY_URL" envDefault:""`
}

type GeminiApi struct {
	// Empty ApiKey disables the generative fallback path.
	ApiKey string `env:"GEMINI_API_KEY" envDefault:""`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

type GistApi struct {
	Url string `env:"GIST_API_URL" envDefault:"https://api.github.com"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"2m"`
}

type Jobs struct {
	// RefreshPricesInterval 0 disables the background refresh job.
	RefreshPricesInterval time.Duration `env:"REFRESH_PRICES_JOB_INTERVAL" envDefault:"0"`
}

type GoogleDrive struct {
	// Empty CredentialsFile disables report uploads to Drive.
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
