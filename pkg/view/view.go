package view

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path"

	"github.com/foolin/goview"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/view/templates"
)

type LayoutData struct {
	CSRFToken template.HTML
	Email     string
	Flashes   []any
	Data      any
}

// View renders pages through the master layout and dashboard component
// fragments bare.
type View struct {
	pages    *goview.ViewEngine
	partials *goview.ViewEngine
	sessions *auth.Sessions
}

func NewView(sessions *auth.Sessions, liveReload bool) (*View, error) {
	pages, err := newConfig("layout/main")
	if err != nil {
		return nil, err
	}

	partials, err := newConfig("")
	if err != nil {
		return nil, err
	}

	if !liveReload {
		pages.SetFileHandler(embeddedFH)
		partials.SetFileHandler(embeddedFH)
	}

	return &View{
		pages:    pages,
		partials: partials,
		sessions: sessions,
	}, nil
}

func (s *View) Render(w http.ResponseWriter, r *http.Request, statusCode int, name string, data any) {
	flashes, err := s.sessions.GetFlashes(w, r)
	if err != nil {
		log.Err(err).Msg("failed to clear flashes")
	}

	m := LayoutData{
		CSRFToken: csrf.TemplateField(r),
		Flashes:   flashes,
		Data:      data,
	}

	if id, ok := auth.IdentityFrom(r.Context()); ok {
		m.Email = id.Email
	}

	if err := s.pages.Render(w, statusCode, name, m); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RenderError shows the user-facing error page. Status carries the real
// code (404, 410, 403, 500); the message stays generic.
func (s *View) RenderError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.Render(w, r, statusCode, "pages/error", map[string]any{"Error": message})
}

// RenderPartial writes a bare fragment without the layout, for component
// requests.
func (s *View) RenderPartial(w http.ResponseWriter, statusCode int, name string, data any) {
	if err := s.partials.Render(w, statusCode, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func embeddedFH(config goview.Config, tmpl string) (string, error) {
	bytes, err := templates.Templates.ReadFile(tmpl + config.Extension)
	return string(bytes), err
}

func newConfig(layout string) (*goview.ViewEngine, error) {
	files, err := templates.Templates.ReadDir("partials")
	if err != nil {
		return nil, err
	}

	var partials []string
	for _, f := range files {
		ext := path.Ext(f.Name())
		fn := f.Name()[:len(f.Name())-len(ext)]
		partials = append(partials, path.Join("partials", fn))
	}

	return goview.New(goview.Config{
		Root:         "pkg/view/templates",
		Extension:    ".html",
		Master:       layout,
		Partials:     partials,
		DisableCache: true,
		Funcs: map[string]any{
			"prettyPrint": func(data any) string {
				bytes, err := json.MarshalIndent(data, "", "    ")
				if err != nil {
					return err.Error()
				}
				return string(bytes)
			},
			"title": func(a string) string {
				return cases.Title(language.AmericanEnglish).String(a)
			},
		},
	}), nil
}
