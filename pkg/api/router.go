package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/view/static"
)

var latency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "latency",
	Help:    "Request latency",
	Buckets: prometheus.ExponentialBucketsRange(.05, 30, 20),
}, []string{"route", "status_code"})

var responseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "bytes_returned",
	Help:    "Bytes returned",
	Buckets: prometheus.ExponentialBucketsRange(1000, 100_000_000, 20),
}, []string{"route"})

func CreateMux(c config.Config, a *API) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(PrometheusMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTION"},
		AllowedHeaders:   []string{"User-Agent", "Content-Type", "Accept", "Accept-Encoding", "Accept-Language", "Cache-Control", "Connection", "DNT", "Host", "Origin", "Pragma", "Referer", "Range", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if c.Dashboard.CSRFSecret != "" {
		r.Use(csrf.Protect([]byte(c.Dashboard.CSRFSecret),
			csrf.Secure(c.Production),
			csrf.Path("/")))
	}

	fileServer := http.FileServer(http.FS(static.Static))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	r.Get("/healthcheck", a.Healthcheck)

	r.Get("/auth/login", a.LoginPage)
	r.Get("/auth/google", a.GoogleLogin)
	r.Get("/auth/google/callback", a.GoogleCallback)
	r.Get("/auth/logout", a.Logout)

	if c.API.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(a.gate.RequireAuth)

		r.Get("/share/{token}", a.ViewSharedFolder)

		r.Get("/pdf/{fileID}", a.PDFViewer)
		r.Get("/pdf/stream/{fileID}", a.StreamPDF)
		r.Get("/pdf/{fileID}/download", a.DownloadPDF)

		r.Group(func(r chi.Router) {
			r.Use(a.gate.RequireAdmin)

			r.Get("/", a.Dashboard)
			r.Get("/share", a.AdminShareManager)
			r.Post("/share", a.CreateShareLink)
			r.Delete("/share/{token}", a.DeleteShareLink)

			r.Group(func(r chi.Router) {
				r.Use(a.gate.RequireComponentToken)
				r.Post("/api/components/admin/{component}", a.RenderComponent)
			})
		})
	})

	return r
}
