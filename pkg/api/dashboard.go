package api

import (
	"net/http"
	"time"
)

// Dashboard renders the admin landing page. Widgets load themselves over
// the component endpoint using a token minted fresh for this render.
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	componentToken, err := a.sessions.MintComponentToken(w, r)
	if err != nil {
		a.view.RenderError(w, r, http.StatusInternalServerError, "Failed to prepare dashboard")
		return
	}

	stats, err := a.links.All(ctx)
	if err != nil {
		a.view.RenderError(w, r, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	now := time.Now()
	var active int
	var pdfViews int64
	for _, st := range stats {
		if !st.Expired(now) {
			active++
		}
		pdfViews += st.PDFViews
	}

	a.view.Render(w, r, http.StatusOK, "pages/dashboard", map[string]any{
		"Title":          "Dashboard",
		"ComponentToken": componentToken,
		"AdminKey":       a.config.Auth.AdminKey,
		"TotalLinks":     len(stats),
		"ActiveLinks":    active,
		"TotalPDFViews":  pdfViews,
	})
}
