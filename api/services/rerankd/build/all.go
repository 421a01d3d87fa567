// Package build binds all the routes into the specified app.
package build

import (
	"github.com/rerankd/rerankd/app/domain/checkapp"
	"github.com/rerankd/rerankd/app/domain/rankapp"
	"github.com/rerankd/rerankd/app/sdk/mux"
	"github.com/rerankd/rerankd/foundation/web"
)

// Routes constructs the all value which provides the implementation of
// RouteAdder for specifying what routes to bind to this instance.
func Routes() all {
	return all{}
}

type all struct{}

// Add implements the RouterAdder interface.
func (all) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		Diag:  cfg.Diag,
		Debug: cfg.Debug,
	})

	rankapp.Routes(app, rankapp.Config{
		Log:    cfg.Log,
		Engine: cfg.Engine,
	})
}
