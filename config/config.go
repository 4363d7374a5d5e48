package config

import (
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

type config struct {
	Port   int    `envconfig:"PORT" default:"8080"`
	AppEnv string `envconfig:"APP_ENV"`
	Log    struct {
		Level    string `envconfig:"LOG_LEVEL" default:"debug"`
		Format   string `envconfig:"LOG_FORMAT" default:"text"`
		Requests bool   `envconfig:"LOG_REQUESTS" default:"false"`
	}
	Books struct {
		APIURL     string `envconfig:"BOOKS_API_URL" default:"https://www.googleapis.com/books/v1/volumes"`
		MaxResults int    `envconfig:"BOOKS_MAX_RESULTS" default:"40"`
	}
	Fetch struct {
		ConnectTimeout time.Duration `envconfig:"FETCH_CONNECT_TIMEOUT" default:"15s"`
		ReadTimeout    time.Duration `envconfig:"FETCH_READ_TIMEOUT" default:"10s"`
		RetryMax       int           `envconfig:"FETCH_RETRY_MAX" default:"0"`
	}
	RateLimit struct {
		Requests int `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	}
}

var cfg config

func LoadConfig() error {
	err := envconfig.Process("", &cfg)
	if err != nil {
		return err
	}
	return nil
}

func Port() int {
	return cfg.Port
}

func IsLocal() bool {
	return strings.ToLower(cfg.AppEnv) == "local"
}

func LogLevel() zerolog.Level {
	switch strings.ToLower(cfg.Log.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.DebugLevel
	}
}

func LogFormat() string {
	allowed := []string{"text", "json"}
	format := strings.ToLower(cfg.Log.Format)
	if slices.Contains(allowed, format) {
		return format
	}
	return "json"
}

func LogRequests() bool {
	return cfg.Log.Requests
}

func BooksAPIURL() string {
	return cfg.Books.APIURL
}

// MaxResults falls back to 40, the page size the catalog search has always used.
func MaxResults() int {
	if cfg.Books.MaxResults <= 0 {
		return 40
	}
	return cfg.Books.MaxResults
}

func ConnectTimeout() time.Duration {
	return cfg.Fetch.ConnectTimeout
}

func ReadTimeout() time.Duration {
	return cfg.Fetch.ReadTimeout
}

func RetryMax() int {
	return max(cfg.Fetch.RetryMax, 0)
}

func RateLimitRequests() int {
	if cfg.RateLimit.Requests <= 0 {
		return 10
	}
	return cfg.RateLimit.Requests
}
