package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	for _, cfg := range []config.Config{
		{UptraceEnabled: false, ServiceName: "match-digest", AppEnv: config.EnvDev},
		{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "match-digest", AppEnv: config.EnvDev},
	} {
		shutdown, err := InitUptrace(cfg, logging.NewNop())
		if err != nil {
			t.Fatalf("init uptrace: %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown uptrace: %v", err)
		}
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStart_NothingEnabled(t *testing.T) {
	shutdown, err := Start(config.Config{ServiceName: "match-digest", AppEnv: config.EnvDev}, logging.NewNop(), "ingest")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
