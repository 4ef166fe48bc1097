package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// Log level: trace, debug, info, warn or error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`

	Server struct {
		Port string `env:"PORT" envDefault:"5000" validate:"required,numeric"`

		// Origins allowed to call the API from a browser
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"90s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	// Corpus is read from the SQLite database when DBPath is set, otherwise
	// from the CSV snapshot
	Corpus struct {
		CSVPath string `env:"CORPUS_CSV_PATH" envDefault:"dataset/Mumbai House Prices.csv" validate:"required_without=DBPath"`
		DBPath  string `env:"CORPUS_DB_PATH"`
	}

	// Estimator calls the model server when URL is set, otherwise it loads
	// the model artifact from ModelPath
	Estimator struct {
		ModelPath string        `env:"ESTIMATOR_MODEL_PATH" envDefault:"models/house_prediction.json" validate:"required_without=URL"`
		URL       string        `env:"ESTIMATOR_URL" validate:"omitempty,url"`
		Timeout   time.Duration `env:"ESTIMATOR_TIMEOUT" envDefault:"5s"`
	}

	Locator struct {
		// fixed resolves every coordinate to FixedLocation, centroid uses
		// the region shapes in RegionsPath and nominatim reverse geocodes
		// through NominatimURL
		Mode          string  `env:"LOCATOR_MODE" envDefault:"fixed" validate:"oneof=fixed centroid nominatim"`
		FixedLocation string  `env:"LOCATOR_FIXED_LOCATION" envDefault:"Airoli" validate:"required_if=Mode fixed"`
		RegionsPath   string  `env:"LOCATOR_REGIONS_PATH" validate:"required_if=Mode centroid"`
		MaxDistanceKm float64 `env:"LOCATOR_MAX_DISTANCE_KM" envDefault:"25" validate:"gte=0"`

		NominatimURL     string        `env:"LOCATOR_NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org" validate:"required,url"`
		NominatimTimeout time.Duration `env:"LOCATOR_NOMINATIM_TIMEOUT" envDefault:"10s"`
		// Reverse geocoding results are cached here; empty disables the cache
		CacheDir string `env:"LOCATOR_CACHE_DIR"`
	}

	Chat ChatConfig

	Import struct {
		// Rows written per transaction by the importer
		BatchSize  int           `env:"IMPORT_BATCH_SIZE" envDefault:"500" validate:"min=1"`
		MaxRetries int           `env:"IMPORT_MAX_RETRIES" envDefault:"3" validate:"min=0"`
		RetryDelay time.Duration `env:"IMPORT_RETRY_DELAY" envDefault:"1s"`
	}
}

type ChatConfig struct {
	// Chat is disabled when no key is configured
	APIKey  string        `env:"GOOGLE_API_KEY"`
	Model   string        `env:"CHAT_MODEL" envDefault:"gemini-2.0-flash" validate:"required"`
	BaseURL string        `env:"CHAT_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta" validate:"required,url"`
	Timeout time.Duration `env:"CHAT_TIMEOUT" envDefault:"60s"`

	// Requests per minute accepted by /chat, and the burst on top of that
	RatePerMinute int `env:"CHAT_RATE_PER_MINUTE" envDefault:"30" validate:"min=1"`
	RateBurst     int `env:"CHAT_RATE_BURST" envDefault:"5" validate:"min=1"`

	// Consecutive provider failures before the circuit opens, and how long
	// it stays open
	BreakerFailures uint32        `env:"CHAT_BREAKER_FAILURES" envDefault:"5" validate:"min=1"`
	BreakerTimeout  time.Duration `env:"CHAT_BREAKER_TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads the configuration from the environment. Variables in a
// .env file in the working directory are loaded first unless already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
