// Package observability starts the optional tracing and profiling backends
// and the pprof listener of the long-running scheduler.
package observability

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// Start enables tracing and profiling for one CLI command. The returned
// shutdown stops the profiler and flushes spans; it is safe to call when
// both are disabled.
func Start(cfg config.Config, logger *logging.Logger, command string) (func(context.Context) error, error) {
	shutdownTracing, err := InitUptrace(cfg, logger, attribute.String("process.command", command))
	if err != nil {
		return nil, crerr.Wrap(err, "start uptrace")
	}
	stopProfiling, err := InitPyroscope(cfg, logger, map[string]string{"command": command})
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, crerr.Wrap(err, "start pyroscope")
	}

	return func(ctx context.Context) error {
		return crerr.CombineErrors(
			crerr.Wrap(stopProfiling(), "stop pyroscope"),
			crerr.Wrap(shutdownTracing(ctx), "flush traces"),
		)
	}, nil
}
