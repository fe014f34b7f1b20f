package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

func noopShutdown(context.Context) error { return nil }

// InitUptrace installs the global trace provider exporting to Uptrace. Logs
// and metrics stay local: only spans are exported. The returned shutdown
// flushes pending spans.
func InitUptrace(cfg config.Config, logger *logging.Logger, attrs ...attribute.KeyValue) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch {
	case !cfg.UptraceEnabled:
		logger.Debug("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noopShutdown, nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Warn("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noopShutdown, nil
	}

	attrs = append(attrs, attribute.String("db.driver", cfg.DBDriver))
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attrs...),
		uptrace.WithMetricsEnabled(false),
		uptrace.WithLoggingEnabled(false),
	)
	logger.Info("uptrace tracing enabled", "service_name", cfg.ServiceName, "environment", cfg.AppEnv)

	return uptrace.Shutdown, nil
}
