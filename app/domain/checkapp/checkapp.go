// Package checkapp maintains the app layer api for the check domain.
package checkapp

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/foundation/web"
	"github.com/rerankd/rerankd/sdk/rerank"
	"github.com/rerankd/rerankd/sdk/rerank/model"
)

// Diagnostics defines what the handlers need from the engine to report
// health information.
type Diagnostics interface {
	Devices() rerank.Selection
	ModelInfo() model.ModelInfo
	SystemInfo() map[string]string
	ActiveStreams() int
}

type app struct {
	build string
	log   *logger.Logger
	diag  Diagnostics
	debug bool
}

func newApp(cfg Config) *app {
	return &app{
		build: cfg.Build,
		log:   cfg.Log,
		diag:  cfg.Diag,
		debug: cfg.Debug,
	}
}

func (a *app) readiness(ctx context.Context, r *http.Request) web.Encoder {
	return nil
}

func (a *app) liveness(ctx context.Context, r *http.Request) web.Encoder {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := Info{
		Status:     "up",
		Build:      a.build,
		Host:       host,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return info
}

func (a *app) healthz(ctx context.Context, r *http.Request) web.Encoder {
	sel := a.diag.Devices()
	mi := a.diag.ModelInfo()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	health := Health{
		Status:               "ok",
		AcceleratorAvailable: sel.Available,
		AcceleratorCount:     sel.Count,
		SelectedDevice:       sel.Selected,
		SelectedDeviceName:   sel.SelectedName,
		Model:                mi.ID,
		ActiveStreams:        a.diag.ActiveStreams(),
		MemoryUsage: MemoryUsage{
			ModelBytes:    mi.Size,
			HeapBytes:     ms.HeapAlloc,
			RuntimeBytes:  ms.Sys,
			TotalEstimate: mi.Size + ms.Sys,
		},
	}

	if a.debug {
		health.Debug = &HealthDebug{
			Build:      a.build,
			GoVersion:  runtime.Version(),
			Devices:    sel.Devices,
			SystemInfo: a.diag.SystemInfo(),
		}
	}

	return health
}

func (a *app) instructions(ctx context.Context, r *http.Request) web.Encoder {
	return newInstructions(a.build)
}
