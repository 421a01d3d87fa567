package checkapp

import (
	"net/http"

	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build string
	Log   *logger.Logger
	Diag  Diagnostics
	Debug bool
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	api := newApp(cfg)

	app.HandlerFunc(http.MethodGet, "", "/healthz", api.healthz)
	app.HandlerFunc(http.MethodGet, "", "/liveness", api.liveness)
	app.HandlerFunc(http.MethodGet, "", "/readiness", api.readiness)
	app.HandlerFunc(http.MethodGet, "", "/{$}", api.instructions)
}
