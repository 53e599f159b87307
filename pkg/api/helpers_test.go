package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/storage"
	"github.com/driveshare/driveshare/pkg/storage/drive"
	drivemem "github.com/driveshare/driveshare/pkg/storage/drive/memory"
	kvmem "github.com/driveshare/driveshare/pkg/storage/kv/memory"
)

type fakeProvider struct {
	identities map[string]*auth.Identity
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://example.com/auth?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (auth.Tokens, error) {
	return auth.Tokens{}, errors.New("not implemented")
}

func (f *fakeProvider) Verify(ctx context.Context, rawIDToken string) (*auth.Identity, error) {
	id, ok := f.identities[rawIDToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return id, nil
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error) {
	return auth.Tokens{}, errors.New("refresh denied")
}

type harness struct {
	api   *API
	mux   *chi.Mux
	drive *drivemem.Drive
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	c := config.Config{
		API: config.API{Port: 3000, BaseURL: "http://localhost:3000"},
		Auth: config.Auth{
			SessionSecret: "test-secret",
			AdminKey:      "admin-key",
			AdminEmails:   []string{"admin@example.com"},
			ServiceEmail:  "portal@example.iam.gserviceaccount.com",
		},
		Share: config.Share{CacheTTLSeconds: 60},
	}

	kv, err := kvmem.NewKV(nil)
	require.NoError(t, err)

	d, err := drivemem.NewDrive(nil)
	require.NoError(t, err)

	a, err := NewAPI(c, &storage.Services{KV: kv, Drive: d}, &fakeProvider{})
	require.NoError(t, err)

	return &harness{api: a, mux: CreateMux(c, a), drive: d}
}

// seedTree builds a small shared tree: root F1 with subfolder F2 and one
// PDF in each.
func (h *harness) seedTree() {
	h.drive.AddFolder(drive.Folder{ID: "F1", Name: "Quarterly Reports"})
	h.drive.AddFolder(drive.Folder{ID: "F2", Name: "Archive", Parents: []string{"F1"}})
	h.drive.AddFolder(drive.Folder{ID: "OUTSIDE", Name: "Private"})
	h.drive.AddFile(drive.File{
		ID:       "PDF1",
		Name:     "report.pdf",
		MimeType: "application/pdf",
		Parents:  []string{"F1"},
	}, []byte("%PDF-1.4 report body"))
	h.drive.AddFile(drive.File{
		ID:       "PDF2",
		Name:     "old.pdf",
		MimeType: "application/pdf",
		Parents:  []string{"F2"},
	}, []byte("%PDF-1.4 archived"))
}

// login establishes a session for email and returns the cookies to attach
// to subsequent requests.
func (h *harness) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, h.api.sessions.SetUser(w, r, &auth.Identity{Email: email, Name: "Test User"}))
	return w.Result().Cookies()
}

func (h *harness) do(method, path string, body io.Reader, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, body)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.mux.ServeHTTP(w, r)
	return w
}
