package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/match-digest/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDriver != DriverSQLite || cfg.DBURL != "file:soccer_analysis.db" || cfg.DBMaxOpenConns != 1 {
		t.Fatalf("unexpected db defaults: %s %s %d", cfg.DBDriver, cfg.DBURL, cfg.DBMaxOpenConns)
	}
	if cfg.AnalysisAPIMaxAttempts != 3 || cfg.AnalysisAPIRetryDelay != 2*time.Second {
		t.Fatalf("unexpected retry defaults: %d %s", cfg.AnalysisAPIMaxAttempts, cfg.AnalysisAPIRetryDelay)
	}
	if cfg.AnalysisAPIListTimeout != 30*time.Second || cfg.AnalysisAPIMatchTimeout != 20*time.Second {
		t.Fatalf("unexpected timeout defaults: %s %s", cfg.AnalysisAPIListTimeout, cfg.AnalysisAPIMatchTimeout)
	}
	if cfg.IngestConcurrency != 5 || cfg.ReconcileBatchSize != 10 || cfg.ReconcileGracePeriod != 2*time.Hour {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Istanbul" {
		t.Fatalf("unexpected default location: %v", cfg.Location)
	}
	if len(cfg.PublishLeagues) != 0 || cfg.PublishCouponSize != 3 {
		t.Fatalf("unexpected publish defaults: %v %d", cfg.PublishLeagues, cfg.PublishCouponSize)
	}
	if cfg.PublishCacheTTL != 10*time.Minute {
		t.Fatalf("unexpected publish cache ttl: %s", cfg.PublishCacheTTL)
	}
	if cfg.Schedules.Predictions != "12:00;12:03;13:30;13:33" {
		t.Fatalf("unexpected prediction schedule: %q", cfg.Schedules.Predictions)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoad_DBConfig(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("postgres requires url", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when DB_DRIVER=postgres without DB_URL")
		}
	})

	t.Run("postgres pool default", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "Postgres")
		t.Setenv("DB_URL", "postgres://localhost/matches?sslmode=disable")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DBDriver != DriverPostgres || cfg.DBMaxOpenConns != 10 {
			t.Fatalf("unexpected postgres config: %s %d", cfg.DBDriver, cfg.DBMaxOpenConns)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown DB_DRIVER")
		}
	})
}

func TestLoad_RejectsNonPositiveValues(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cases := map[string]string{
		"INGEST_CONCURRENCY":         "0",
		"RECONCILE_BATCH_SIZE":       "-1",
		"ANALYSIS_API_MAX_ATTEMPTS":  "0",
		"INGEST_MATCH_TIMEOUT":       "0s",
		"RECONCILE_GRACE_PERIOD":     "bad",
		"ANALYSIS_API_RATE_LIMIT":    "-2",
		"PUBLISH_COUPON_SIZE":        "zero",
		"ANALYSIS_API_RETRY_DELAY":   "-1s",
		"ANALYSIS_API_LIST_TIMEOUT":  "-5s",
		"ANALYSIS_API_MATCH_TIMEOUT": "never",
		"PUBLISH_CACHE_TTL":          "-1m",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_RetryDelayAllowsZero(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ANALYSIS_API_RETRY_DELAY", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AnalysisAPIRetryDelay != 0 {
		t.Fatalf("unexpected retry delay: %s", cfg.AnalysisAPIRetryDelay)
	}
}

func TestLoad_TimezoneAndLeagues(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PUBLISH_LEAGUES", " Italian Serie A, ,Spanish La Liga ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Location)
	}
	if len(cfg.PublishLeagues) != 2 || cfg.PublishLeagues[1] != "Spanish La Liga" {
		t.Fatalf("unexpected leagues: %v", cfg.PublishLeagues)
	}

	t.Setenv("TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown TIMEZONE")
	}
}

func TestLoad_TelegramRequiresCredentialsWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TELEGRAM_ENABLED=true without TELEGRAM_CHAT_ID")
	}

	t.Setenv("TELEGRAM_CHAT_ID", "@match_digest")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.TelegramEnabled || cfg.TelegramChatID != "@match_digest" {
		t.Fatalf("unexpected telegram config: %+v", cfg)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "match-digest-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "match-digest-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_LogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Setenv("LOG_LEVEL", "WARN")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}

	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid LOG_LEVEL")
	}
}
