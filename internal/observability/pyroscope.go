package observability

import (
	"maps"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when enabled. tags are added to
// the env, service and db_driver tags.
func InitPyroscope(cfg config.Config, logger *logging.Logger, tags map[string]string) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Debug("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	allTags := map[string]string{
		"env":       cfg.AppEnv,
		"service":   cfg.ServiceName,
		"db_driver": cfg.DBDriver,
	}
	maps.Copy(allTags, tags)

	// The pipeline is I/O bound; heap-in-use profiles are left out.
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              allTags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("pyroscope profiling enabled", "server_address", cfg.PyroscopeServerAddress, "tags", allTags)

	return profiler.Stop, nil
}
