package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "info")
	t.Setenv("HTTP_APP_METRICS_HOST", ":9090")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Audit.WorkerCount)
	assert.Equal(t, 60*time.Second, cfg.Audit.PipelineTimeout)
	assert.Equal(t, 30*time.Second, cfg.Audit.FetchTimeout)
	assert.Equal(t, 5*time.Second, cfg.Audit.LinkTimeout)
	assert.Equal(t, 10, cfg.Audit.MaxRedirects)
	assert.Equal(t, FetcherModeHTTP, cfg.Audit.FetcherMode)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, ":6060", cfg.PprofHost)
	assert.False(t, cfg.RateLimit.TrustProxy)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("HTTP_APP_METRICS_HOST", ":9090")
	t.Setenv("AUDIT_WORKER_COUNT", "8")
	t.Setenv("AUDIT_PIPELINE_TIMEOUT", "90s")
	t.Setenv("AUDIT_FETCHER_MODE", "browser")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/audits")
	t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Audit.WorkerCount)
	assert.Equal(t, 90*time.Second, cfg.Audit.PipelineTimeout)
	assert.Equal(t, FetcherModeBrowser, cfg.Audit.FetcherMode)
	assert.Equal(t, "postgres://localhost/audits", cfg.Store.DatabaseURL)
	assert.True(t, cfg.RateLimit.TrustProxy)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing log level",
			env:  map[string]string{"HTTP_APP_METRICS_HOST": ":9090"},
			want: "log level is empty",
		},
		{
			name: "unsupported log level",
			env:  map[string]string{"APP_LOG_LEVEL": "loud", "HTTP_APP_METRICS_HOST": ":9090"},
			want: "not supported",
		},
		{
			name: "bad duration",
			env:  map[string]string{"APP_LOG_LEVEL": "info", "HTTP_APP_METRICS_HOST": ":9090", "AUDIT_LINK_TIMEOUT": "five"},
			want: "AUDIT_LINK_TIMEOUT: invalid duration format",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"APP_LOG_LEVEL": "info", "HTTP_APP_METRICS_HOST": ":9090", "STORE_DRIVER": "postgres"},
			want: "database url is empty",
		},
		{
			name: "unknown fetcher",
			env:  map[string]string{"APP_LOG_LEVEL": "info", "HTTP_APP_METRICS_HOST": ":9090", "AUDIT_FETCHER_MODE": "carrier-pigeon"},
			want: "unknown fetcher mode",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_LOG_LEVEL", "")
			t.Setenv("HTTP_APP_METRICS_HOST", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := loadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
