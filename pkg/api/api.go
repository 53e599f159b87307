package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/share"
	"github.com/driveshare/driveshare/pkg/storage"
	"github.com/driveshare/driveshare/pkg/view"
)

// pdfMetaTTL bounds how stale file metadata (name, size, mime type) can be
// when serving range requests. Drive is the source of truth; we only avoid
// a metadata round trip per chunk.
const pdfMetaTTL = 10 * time.Minute

type API struct {
	config   config.Config
	services *storage.Services
	provider auth.IdentityProvider

	links    *share.Store
	cache    *share.ViewCache
	browser  *share.Browser
	sessions *auth.Sessions
	gate     *auth.Gate
	view     *view.View
	registry *view.Registry
	pdfMeta  *gocache.Cache
}

func NewAPI(c config.Config, services *storage.Services, provider auth.IdentityProvider) (*API, error) {
	sessions := auth.NewCookieSessions(c.Auth.SessionSecret, c.Production)

	v, err := view.NewView(sessions, c.Dashboard.LiveReload)
	if err != nil {
		return nil, err
	}

	a := &API{
		config:   c,
		services: services,
		provider: provider,
		links:    share.NewStore(services.KV),
		cache:    share.NewViewCache(services.KV, time.Duration(c.Share.CacheTTLSeconds)*time.Second),
		browser:  share.NewBrowser(services.Drive),
		sessions: sessions,
		view:     v,
		registry: view.DefaultRegistry(),
		pdfMeta:  gocache.New(pdfMetaTTL, 2*pdfMetaTTL),
	}
	a.gate = auth.NewGate(sessions, provider, c.Auth, c.Production, a.Unauthorized)

	return a, nil
}

// Unauthorized is the terminal page for admin-gated routes. It never
// redirects to login: the caller is already authenticated, just not allowed.
func (a *API) Unauthorized(w http.ResponseWriter, r *http.Request) {
	a.view.Render(w, r, http.StatusUnauthorized, "pages/unauthorized", map[string]any{
		"Title":        "Not Authorized",
		"ServiceEmail": a.config.Auth.ServiceEmail,
	})
}

func RunAPI(ctx context.Context, c config.API, mux *chi.Mux) {
	log.Debug().Int("port", c.Port).Msg("Starting API")

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", c.Port),
		Handler: mux,
	}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Error serving API")
			serverStopCtx()
		}
	}()

	go func() {
		<-ctx.Done()

		log.Debug().Msg("Stopping API")

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Error().Err(err).Msg("Error shutting down API")
		}

		cancel()
		serverStopCtx()
	}()

	log.Debug().Msg("Waiting for graceful shutdown")
	<-serverCtx.Done()

	log.Debug().Msg("API server stopped")
}
