// Package api provides HTTP handlers for the Gatehouse authorization engine.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/gatehouse"
)

// API wires all Gatehouse HTTP handlers together.
type API struct {
	eng    *gatehouse.Engine
	router forge.Router
}

// New creates an API from an Engine and a Forge router.
func New(eng *gatehouse.Engine, router forge.Router) *API {
	return &API{eng: eng, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("gatehouse: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerAuthzRoutes,
		a.registerRoleRoutes,
		a.registerPermissionRoutes,
		a.registerUserRoutes,
		a.registerAuditLogRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
