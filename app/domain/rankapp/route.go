package rankapp

import (
	"net/http"

	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *logger.Logger
	Engine Engine
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, "", "/rank", api.rank)
	app.HandlerFunc(http.MethodGet, "", "/test", api.selfTest)
}
