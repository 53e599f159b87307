package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/view"
)

// RenderComponent serves one dashboard widget as a bare HTML fragment. The
// component token and admin key are both checked upstream in the router.
func (a *API) RenderComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "component")

	component, ok := a.registry.Lookup(name)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, render.M{"error": "unknown component"})
		return
	}

	data, err := component.Fetch(r.Context(), view.ComponentDeps{Links: a.links})
	if err != nil {
		log.Err(err).Str("component", name).Msg("failed to fetch component data")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, render.M{"error": "failed to load component"})
		return
	}

	a.view.RenderPartial(w, http.StatusOK, component.Template, data)
}
