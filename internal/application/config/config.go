package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"website_auditor/internal/domain/adaptors"
)

const (
	FetcherModeHTTP    = "http"
	FetcherModeBrowser = "browser"

	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type AppConfig struct {
	LogLevel    string
	DebugMode   bool
	MetricsHost string
	PprofHost   string

	Audit struct {
		WorkerCount      int
		QueueSize        int
		PipelineTimeout  time.Duration
		FetchTimeout     time.Duration
		LinkTimeout      time.Duration
		LinkConcurrency  int
		MaxRedirects     int
		SlowLoadMs       int64
		UserAgent        string
		FetcherMode      string
		ShutdownDeadline time.Duration
	}

	Store struct {
		Driver      string
		DatabaseURL string
	}

	RateLimit struct {
		PerHour    int
		Burst      int
		TrustProxy bool
	}
}

func NewAppConfig() (*AppConfig, error) {
	err := godotenv.Load(`config.env`)
	if err != nil {
		return nil, err
	}

	return loadFromEnv()
}

func loadFromEnv() (*AppConfig, error) {
	var errMsg []string
	cfg := AppConfig{}
	cfg.LogLevel = os.Getenv("APP_LOG_LEVEL")
	cfg.DebugMode = os.Getenv("APP_ENABLE_DEBUG") == "true"
	cfg.MetricsHost = os.Getenv("HTTP_APP_METRICS_HOST")
	cfg.PprofHost = envString("HTTP_APP_PPROF_HOST", ":6060")

	intVar := func(name string, def int) int {
		v, err := envInt(name, def)
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
		return v
	}
	durVar := func(name string, def time.Duration) time.Duration {
		v, err := envDuration(name, def)
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
		return v
	}

	cfg.Audit.WorkerCount = intVar("AUDIT_WORKER_COUNT", 4)
	cfg.Audit.QueueSize = intVar("AUDIT_QUEUE_SIZE", 100)
	cfg.Audit.PipelineTimeout = durVar("AUDIT_PIPELINE_TIMEOUT", 60*time.Second)
	cfg.Audit.FetchTimeout = durVar("AUDIT_FETCH_TIMEOUT", 30*time.Second)
	cfg.Audit.LinkTimeout = durVar("AUDIT_LINK_TIMEOUT", 5*time.Second)
	cfg.Audit.LinkConcurrency = intVar("AUDIT_LINK_CONCURRENCY", 10)
	cfg.Audit.MaxRedirects = intVar("AUDIT_MAX_REDIRECTS", 10)
	cfg.Audit.SlowLoadMs = int64(intVar("AUDIT_SLOW_LOAD_MS", 3000))
	cfg.Audit.UserAgent = envString("AUDIT_USER_AGENT", "Mozilla/5.0 (compatible; WebsiteAuditor/1.0)")
	cfg.Audit.FetcherMode = envString("AUDIT_FETCHER_MODE", FetcherModeHTTP)
	cfg.Audit.ShutdownDeadline = durVar("AUDIT_SHUTDOWN_DEADLINE", 30*time.Second)

	cfg.Store.Driver = envString("STORE_DRIVER", StoreDriverMemory)
	cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.RateLimit.PerHour = intVar("RATE_LIMIT_AUDITS_PER_HOUR", 10)
	cfg.RateLimit.Burst = intVar("RATE_LIMIT_BURST", 10)
	cfg.RateLimit.TrustProxy = os.Getenv("RATE_LIMIT_TRUST_PROXY") == "true"

	if err := validate(&cfg); err != nil {
		errMsg = append(errMsg, err.Error())
	}

	if len(errMsg) != 0 {
		return nil, fmt.Errorf(`validation failed: %s`, strings.Join(errMsg, "\n"))
	}
	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	var errMsg []string
	if cfg.LogLevel == "" {
		errMsg = append(errMsg, `log level is empty`)
	} else if !adaptors.LogLevel(strings.ToLower(cfg.LogLevel)).Valid() {
		errMsg = append(errMsg, fmt.Sprintf(`log level %q is not supported`, cfg.LogLevel))
	}

	if cfg.MetricsHost == "" {
		errMsg = append(errMsg, `metrics host is empty`)
	}

	if cfg.Audit.WorkerCount < 1 {
		errMsg = append(errMsg, `audit worker count must be positive`)
	}

	if cfg.Audit.QueueSize < 1 {
		errMsg = append(errMsg, `audit queue size must be positive`)
	}

	if cfg.Audit.LinkConcurrency < 1 {
		errMsg = append(errMsg, `link concurrency must be positive`)
	}

	if cfg.Audit.MaxRedirects < 0 {
		errMsg = append(errMsg, `max redirects must not be negative`)
	}

	switch cfg.Audit.FetcherMode {
	case FetcherModeHTTP, FetcherModeBrowser:
	default:
		errMsg = append(errMsg, fmt.Sprintf(`unknown fetcher mode %q`, cfg.Audit.FetcherMode))
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			errMsg = append(errMsg, `database url is empty`)
		}
	default:
		errMsg = append(errMsg, fmt.Sprintf(`unknown store driver %q`, cfg.Store.Driver))
	}

	if len(errMsg) != 0 {
		return fmt.Errorf(`%s`, strings.Join(errMsg, "\n"))
	}
	return nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	value := os.Getenv(name)
	if value == "" {
		return def, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer: %w", name, err)
	}
	return v, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("%s: invalid duration format: %w", name, err)
	}
	return d, nil
}
