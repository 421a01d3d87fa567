// Package rerankd is the document reranking server.
package rerankd

import (
	"context"
	"embed"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/rerankd/rerankd/api/services/rerankd/build"
	"github.com/rerankd/rerankd/app/sdk/debug"
	"github.com/rerankd/rerankd/app/sdk/mux"
	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/sdk/rerank"
	"github.com/rerankd/rerankd/sdk/rerank/cache"
	"github.com/rerankd/rerankd/sdk/rerank/model"
	"github.com/rerankd/rerankd/sdk/rerank/observ/otel"
	"github.com/rerankd/rerankd/sdk/tools/defaults"
	"github.com/rerankd/rerankd/sdk/tools/libs"
	"github.com/rerankd/rerankd/sdk/tools/models"
)

//go:embed static
var static embed.FS

var tag = "develop"

// Run starts the reranking service with logging wired up.
func Run(showHelp bool) error {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	traceIDFn := func(ctx context.Context) string {
		return otel.GetTraceID(ctx)
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "RERANKD", traceIDFn, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log, showHelp); err != nil {
		return err
	}

	return nil
}

func run(ctx context.Context, log *logger.Logger, showHelp bool) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	if !showHelp {
		log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))
	}

	// -------------------------------------------------------------------------
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout        time.Duration `conf:"default:30s"`
			WriteTimeout       time.Duration `conf:"default:5m"`
			IdleTimeout        time.Duration `conf:"default:1m"`
			ShutdownTimeout    time.Duration `conf:"default:1m"`
			APIHost            string        `conf:"default:0.0.0.0:8000"`
			DebugHost          string        `conf:"default:localhost:8090"`
			CORSAllowedOrigins []string      `conf:"default:*"`
		}
		Tempo struct {
			Host        string
			ServiceName string  `conf:"default:rerankd"`
			Probability float64 `conf:"default:0.05"`
		}
		Model struct {
			Ref                  string `conf:"default:https://huggingface.co/gpustack/bge-reranker-v2-m3-GGUF/resolve/main/bge-reranker-v2-m3-Q4_K_M.gguf"`
			Instances            int    `conf:"default:1"`
			ContextWindow        int    `conf:"default:0"`
			NBatch               int    `conf:"default:0"`
			NUBatch              int    `conf:"default:0"`
			NThreads             int    `conf:"default:0"`
			NThreadsBatch        int    `conf:"default:0"`
			PairTemplate         string
			IgnoreIntegrityCheck bool `conf:"default:true"`
		}
		Device struct {
			Index   int `conf:"default:0"`
			Visible []int
		}
		Cache struct {
			Enabled    bool          `conf:"default:true"`
			MaxEntries int           `conf:"default:10240"`
			TTL        time.Duration `conf:"default:5m"`
		}
		BasePath     string
		LibPath      string
		Arch         string
		OS           string
		Processor    string
		HfToken      string `conf:"mask"`
		AllowUpgrade bool   `conf:"default:true"`
		LlamaLog     int    `conf:"default:1"`
		Debug        bool   `conf:"default:false"`
	}{
		Version: conf.Version{
			Build: tag,
			Desc:  "Rerankd",
		},
	}

	const prefix = "RERANKD"
	if showHelp {
		help, err := conf.UsageInfo(prefix, &cfg)
		if err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		return fmt.Errorf("%s", help)
	}

	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Build)
	defer log.Info(ctx, "shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Info(ctx, "startup", "config", out)

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Build)

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/liveness":  {},
			"/readiness": {},
			"/healthz":   {},
		},
		Probability: cfg.Tempo.Probability,
	})

	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer func() {
		log.Info(ctx, "shutdown", "status", "teardown otel")
		teardown(context.Background())
	}()

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Library System

	log.Info(ctx, "startup", "status", "checking llama.cpp libraries")

	arch, err := defaults.Arch(cfg.Arch)
	if err != nil {
		return err
	}

	opSys, err := defaults.OS(cfg.OS)
	if err != nil {
		return err
	}

	processor, err := defaults.Processor(cfg.Processor)
	if err != nil {
		return err
	}

	lbs, err := libs.NewWithSettings(cfg.BasePath, arch, opSys, processor, cfg.AllowUpgrade)
	if err != nil {
		return fmt.Errorf("unable to create libs api: %w", err)
	}

	func() {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()

		if _, err := lbs.Download(ctx, log.Info); err != nil {
			log.Info(ctx, "startup", "status", "library install failed, using existing installation", "ERROR", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Model System

	log.Info(ctx, "startup", "status", "resolving model", "ref", cfg.Model.Ref)

	mdls, err := models.New(defaults.BaseDir(cfg.BasePath))
	if err != nil {
		return fmt.Errorf("unable to create model system: %w", err)
	}

	mp, err := mdls.Resolve(ctx, log.Info, cfg.Model.Ref)
	if err != nil {
		return fmt.Errorf("unable to resolve model: %w", err)
	}

	// -------------------------------------------------------------------------
	// Init Reranking Engine

	log.Info(ctx, "startup", "status", "initializing rerank engine")

	initOpts := []rerank.InitOption{
		rerank.WithLibPath(libs.Path(cfg.LibPath)),
		rerank.WithLogLevel(rerank.LogLevel(cfg.LlamaLog)),
	}

	if err := rerank.Init(initOpts...); err != nil {
		return fmt.Errorf("installation invalid: %w", err)
	}

	rnkOpts := []rerank.Option{
		rerank.WithDeviceIndex(cfg.Device.Index),
		rerank.WithVisibleDevices(cfg.Device.Visible),
	}

	if cfg.Cache.Enabled {
		rnkOpts = append(rnkOpts, rerank.WithScoreCache(cache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			TTL:        cfg.Cache.TTL,
		}))
	}

	rnk, err := rerank.New(cfg.Model.Instances, model.Config{
		Log:                  log.Info,
		ModelFile:            mp.ModelFile,
		PairTemplate:         cfg.Model.PairTemplate,
		ContextWindow:        cfg.Model.ContextWindow,
		NBatch:               cfg.Model.NBatch,
		NUBatch:              cfg.Model.NUBatch,
		NThreads:             cfg.Model.NThreads,
		NThreadsBatch:        cfg.Model.NThreadsBatch,
		IgnoreIntegrityCheck: cfg.Model.IgnoreIntegrityCheck,
	}, rnkOpts...)

	if err != nil {
		return fmt.Errorf("initializing rerank engine: %w", err)
	}

	defer func() {
		log.Info(ctx, "shutdown", "status", "unloading rerank engine")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := rnk.Unload(ctx); err != nil {
			log.Error(ctx, "rerank engine", "ERROR", err)
		}
	}()

	sel := rnk.Devices()
	log.Info(ctx, "startup", "status", "engine ready",
		"model", rnk.ModelInfo().ID,
		"accelerator_available", sel.Available,
		"accelerator_count", sel.Count,
		"selected_device", sel.Selected,
		"selected_device_name", sel.SelectedName)

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:  tag,
		Log:    log,
		Tracer: tracer,
		Engine: rnk,
		Diag:   rnk,
		Debug:  cfg.Debug,
	}

	webAPI := mux.WebAPI(cfgMux,
		build.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
		mux.WithFileServer(static, "static/docs", "/docs"),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)

		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
