package apitest

import (
	"bytes"
	"context"
	"testing"

	"github.com/rerankd/rerankd/api/services/rerankd/build"
	"github.com/rerankd/rerankd/app/domain/checkapp"
	"github.com/rerankd/rerankd/app/domain/rankapp"
	"github.com/rerankd/rerankd/app/sdk/mux"
	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/sdk/rerank/observ/otel"
)

// Config provides the systems under test.
type Config struct {
	Engine rankapp.Engine
	Diag   checkapp.Diagnostics
	Debug  bool
}

// New initialized the system to run a test.
func New(t *testing.T, testName string, cfg Config) *Test {
	ctx := context.Background()

	// -------------------------------------------------------------------------

	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "TEST", func(context.Context) string { return otel.GetTraceID(ctx) })

	// -------------------------------------------------------------------------

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "rerankd",
		Host:        "",
		ExcludedRoutes: map[string]struct{}{
			"/liveness":  {},
			"/readiness": {},
			"/healthz":   {},
		},
		Probability: 0.05,
	})

	if err != nil {
		t.Fatal(err)
	}

	tracer := traceProvider.Tracer("rerankd")

	// -------------------------------------------------------------------------

	t.Cleanup(func() {
		t.Helper()

		teardown(context.Background())

		t.Logf("******************** LOGS (%s) ********************\n\n", testName)
		t.Log(buf.String())
		t.Logf("******************** LOGS (%s) ********************\n", testName)
	})

	// -------------------------------------------------------------------------

	cfgMux := mux.Config{
		Build:  "test",
		Log:    log,
		Tracer: tracer,
		Engine: cfg.Engine,
		Diag:   cfg.Diag,
		Debug:  cfg.Debug,
	}

	m := mux.WebAPI(cfgMux,
		build.Routes(),
	)

	return &Test{
		mux: m,
	}
}
