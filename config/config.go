package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP      HTTP
	API       API
	Portfolio Portfolio
	Valuation Valuation
	Insight   Insight
	Redis     Redis
	Cache     Cache
	Jobs      Jobs
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	YahooApi YahooApi
}

type YahooApi struct {
	Url       string `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	UserAgent string `env:"YAHOO_API_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; portfolio-analyzer/1.0)"`
	RateLimit int    `env:"YAHOO_API_RATE_LIMIT" envDefault:"5"`
}

type Portfolio struct {
	SupportedSymbols []string `env:"SUPPORTED_SYMBOLS" envDefault:"AAPL,TSLA,MSFT,GOOG,AMZN" envSeparator:","`
	TargetCurrency   string   `env:"TARGET_CURRENCY" envDefault:"INR"`
	FxSymbol         string   `env:"FX_SYMBOL" envDefault:"USDINR=X"`
	FxFallbackRate   float64  `env:"FX_FALLBACK_RATE" envDefault:"83.0"`
}

type Valuation struct {
	MaxParallelLookups int `env:"VALUATION_MAX_PARALLEL_LOOKUPS" envDefault:"4"`
}

type Insight struct {
	Provider    string        `env:"INSIGHT_PROVIDER" envDefault:"groq"`
	Timeout     time.Duration `env:"INSIGHT_TIMEOUT" envDefault:"30s"`
	Temperature float64       `env:"INSIGHT_TEMPERATURE" envDefault:"0.5"`
	GroqApi     GroqApi
	GeminiApi   GeminiApi
}

type GroqApi struct {
	Url   string `env:"GROQ_API_URL" envDefault:"https://api.groq.com/openai/v1"`
	Key   string `env:"GROQ_API_KEY" envDefault:""`
	Model string `env:"GROQ_MODEL" envDefault:"llama3-8b-8192"`
}

type GeminiApi struct {
	Key   string `env:"GEMINI_API_KEY" envDefault:""`
	Model string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Cache struct {
	PricesExpiration time.Duration `env:"CACHE_PRICES_EXPIRATION" envDefault:"5m"`
}

type Jobs struct {
	Timeout                time.Duration `env:"JOBS_TIMEOUT" envDefault:"30s"`
	FillPriceCacheInterval time.Duration `env:"FILL_PRICE_CACHE_JOB_INTERVAL" envDefault:"1m"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
