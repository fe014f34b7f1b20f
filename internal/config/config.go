package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/match-digest/internal/platform/logging"
)

// Config stores runtime configuration for the commands.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DBDriver       string
	DBURL          string
	DBMaxOpenConns int
	DBBusyTimeout  time.Duration

	AnalysisAPIBaseURL               string
	AnalysisAPIListTimeout           time.Duration
	AnalysisAPIMatchTimeout          time.Duration
	AnalysisAPIMaxAttempts           int
	AnalysisAPIRetryDelay            time.Duration
	AnalysisAPIRateLimit             float64
	AnalysisAPICircuitEnabled        bool
	AnalysisAPICircuitFailureCount   int
	AnalysisAPICircuitOpenTimeout    time.Duration
	AnalysisAPICircuitHalfOpenMaxReq int

	IngestConcurrency    int
	IngestMatchTimeout   time.Duration
	ReconcileBatchSize   int
	ReconcileGracePeriod time.Duration

	Timezone          string
	Location          *time.Location
	// PublishLeagues is empty when unset; the publisher then uses its
	// built-in league list.
	PublishLeagues    []string
	PublishCouponSize int
	PublishSiteURL    string
	PublishCacheTTL   time.Duration
	AdsFile           string

	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   string
	TelegramEndpoint string

	Schedules Schedules

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string
}

// Schedules holds the cron specs of the long-running process. Each value is
// a ';'-separated list of "HH:MM" times or cron expressions.
type Schedules struct {
	Ingest             string
	Reconcile          string
	GoodMorning        string
	MatchesReady       string
	Predictions        string
	Advert             string
	CouponAnnouncement string
	Coupon             string
	HalfTimeAnnounce   string
	HalfTimeList       string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	logLevel, err := logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	dbDriver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverSQLite)))
	if dbDriver != DriverSQLite && dbDriver != DriverPostgres {
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q: valid values are %s, %s", dbDriver, DriverSQLite, DriverPostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbURL == "" {
		if dbDriver == DriverPostgres {
			return Config{}, fmt.Errorf("DB_URL is required when DB_DRIVER=postgres")
		}
		dbURL = "file:soccer_analysis.db"
	}
	defaultMaxOpen := 1
	if dbDriver == DriverPostgres {
		defaultMaxOpen = 10
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", defaultMaxOpen)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	dbBusyTimeout, err := getEnvAsDuration("DB_BUSY_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}

	listTimeout, err := getEnvAsDuration("ANALYSIS_API_LIST_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	matchTimeout, err := getEnvAsDuration("ANALYSIS_API_MATCH_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	maxAttempts, err := getEnvAsInt("ANALYSIS_API_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts <= 0 {
		return Config{}, fmt.Errorf("ANALYSIS_API_MAX_ATTEMPTS must be > 0")
	}
	retryDelay, err := time.ParseDuration(getEnv("ANALYSIS_API_RETRY_DELAY", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_RETRY_DELAY: %w", err)
	}
	if retryDelay < 0 {
		return Config{}, fmt.Errorf("ANALYSIS_API_RETRY_DELAY must be >= 0")
	}
	rateLimit, err := strconv.ParseFloat(getEnv("ANALYSIS_API_RATE_LIMIT", "0"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_RATE_LIMIT: %w", err)
	}
	if rateLimit < 0 {
		return Config{}, fmt.Errorf("ANALYSIS_API_RATE_LIMIT must be >= 0")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("ANALYSIS_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("ANALYSIS_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount <= 0 {
		return Config{}, fmt.Errorf("ANALYSIS_API_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	circuitOpenTimeout, err := getEnvAsDuration("ANALYSIS_API_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("ANALYSIS_API_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq <= 0 {
		return Config{}, fmt.Errorf("ANALYSIS_API_CIRCUIT_HALF_OPEN_MAX_REQ must be > 0")
	}

	ingestConcurrency, err := getEnvAsInt("INGEST_CONCURRENCY", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse INGEST_CONCURRENCY: %w", err)
	}
	if ingestConcurrency <= 0 {
		return Config{}, fmt.Errorf("INGEST_CONCURRENCY must be > 0")
	}
	ingestMatchTimeout, err := getEnvAsDuration("INGEST_MATCH_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	reconcileBatchSize, err := getEnvAsInt("RECONCILE_BATCH_SIZE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_BATCH_SIZE: %w", err)
	}
	if reconcileBatchSize <= 0 {
		return Config{}, fmt.Errorf("RECONCILE_BATCH_SIZE must be > 0")
	}
	reconcileGracePeriod, err := getEnvAsDuration("RECONCILE_GRACE_PERIOD", "2h")
	if err != nil {
		return Config{}, err
	}

	timezone := strings.TrimSpace(getEnv("TIMEZONE", "Europe/Istanbul"))
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("parse TIMEZONE: %w", err)
	}
	leagues := splitCSV(getEnv("PUBLISH_LEAGUES", ""))
	couponSize, err := getEnvAsInt("PUBLISH_COUPON_SIZE", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse PUBLISH_COUPON_SIZE: %w", err)
	}
	if couponSize <= 0 {
		return Config{}, fmt.Errorf("PUBLISH_COUPON_SIZE must be > 0")
	}

	publishCacheTTL, err := time.ParseDuration(getEnv("PUBLISH_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUBLISH_CACHE_TTL: %w", err)
	}
	if publishCacheTTL < 0 {
		return Config{}, fmt.Errorf("PUBLISH_CACHE_TTL must be >= 0")
	}

	telegramEnabled, err := strconv.ParseBool(getEnv("TELEGRAM_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TELEGRAM_ENABLED: %w", err)
	}
	telegramToken := strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", ""))
	telegramChatID := strings.TrimSpace(getEnv("TELEGRAM_CHAT_ID", ""))
	if telegramEnabled && (telegramToken == "" || telegramChatID == "") {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	serviceName := getEnv("APP_SERVICE_NAME", "match-digest")

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logLevel,

		DBDriver:       dbDriver,
		DBURL:          dbURL,
		DBMaxOpenConns: dbMaxOpenConns,
		DBBusyTimeout:  dbBusyTimeout,

		AnalysisAPIBaseURL:               strings.TrimSpace(getEnv("ANALYSIS_API_BASE_URL", "")),
		AnalysisAPIListTimeout:           listTimeout,
		AnalysisAPIMatchTimeout:          matchTimeout,
		AnalysisAPIMaxAttempts:           maxAttempts,
		AnalysisAPIRetryDelay:            retryDelay,
		AnalysisAPIRateLimit:             rateLimit,
		AnalysisAPICircuitEnabled:        circuitEnabled,
		AnalysisAPICircuitFailureCount:   circuitFailureCount,
		AnalysisAPICircuitOpenTimeout:    circuitOpenTimeout,
		AnalysisAPICircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		IngestConcurrency:    ingestConcurrency,
		IngestMatchTimeout:   ingestMatchTimeout,
		ReconcileBatchSize:   reconcileBatchSize,
		ReconcileGracePeriod: reconcileGracePeriod,

		Timezone:          timezone,
		Location:          location,
		PublishLeagues:    leagues,
		PublishCouponSize: couponSize,
		PublishSiteURL:    strings.TrimSpace(getEnv("PUBLISH_SITE_URL", "")),
		PublishCacheTTL:   publishCacheTTL,
		AdsFile:           strings.TrimSpace(getEnv("ADS_FILE", "")),

		TelegramEnabled:  telegramEnabled,
		TelegramBotToken: telegramToken,
		TelegramChatID:   telegramChatID,
		TelegramEndpoint: strings.TrimSpace(getEnv("TELEGRAM_API_ENDPOINT", "")),

		Schedules: Schedules{
			Ingest:             getEnv("SCHEDULE_INGEST", "07:00"),
			Reconcile:          getEnv("SCHEDULE_RECONCILE", "15 * * * *"),
			GoodMorning:        getEnv("SCHEDULE_GOOD_MORNING", "10:50"),
			MatchesReady:       getEnv("SCHEDULE_MATCHES_READY", "11:30"),
			Predictions:        getEnv("SCHEDULE_PREDICTIONS", "12:00;12:03;13:30;13:33"),
			Advert:             getEnv("SCHEDULE_ADVERT", "13:00"),
			CouponAnnouncement: getEnv("SCHEDULE_COUPON_ANNOUNCE", "13:50"),
			Coupon:             getEnv("SCHEDULE_COUPON", "14:20"),
			HalfTimeAnnounce:   getEnv("SCHEDULE_HALF_TIME_ANNOUNCE", "15:00"),
			HalfTimeList:       getEnv("SCHEDULE_HALF_TIME_LIST", "15:30"),
		},

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsDuration parses a positive duration.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
