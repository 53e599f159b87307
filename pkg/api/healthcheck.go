package api

import (
	"net/http"

	"github.com/go-chi/render"
)

func (a *API) Healthcheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{"status": "ok"})
}
