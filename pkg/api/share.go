package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/share"
)

// ViewSharedFolder is the recipient-facing entry point. The token must
// resolve to a live link, and any folderId override must sit inside the
// shared subtree.
func (a *API) ViewSharedFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")
	folderID := r.URL.Query().Get("folderId")

	folderView, ok := a.cache.Get(ctx, token, folderID)
	if !ok {
		link, found := a.links.ByToken(ctx, token)
		if !found {
			a.view.RenderError(w, r, http.StatusNotFound, "Share link not found or has expired")
			return
		}

		if link.Expired(time.Now()) {
			if err := a.links.Delete(ctx, token); err != nil {
				log.Err(err).Str("token", token).Msg("failed to delete expired share link")
			}
			a.view.RenderError(w, r, http.StatusGone, "This share link has expired")
			return
		}

		target := folderID
		if target == "" {
			target = link.FolderID
		}

		if target != link.FolderID && !share.ValidateAncestry(ctx, a.services.Drive, link.FolderID, target) {
			a.view.RenderError(w, r, http.StatusForbidden, "Access to this folder is not allowed")
			return
		}

		var err error
		folderView, err = a.browser.FolderView(ctx, link, target)
		if err != nil {
			log.Err(err).Str("token", token).Str("folder_id", target).Msg("failed to assemble folder view")
			a.view.RenderError(w, r, http.StatusInternalServerError, "Failed to load shared folder")
			return
		}

		if err := a.cache.Set(ctx, token, folderID, folderView); err != nil {
			log.Err(err).Str("token", token).Msg("failed to cache folder view")
		}
	}

	a.cache.RecordView(ctx, token)

	a.view.Render(w, r, http.StatusOK, "pages/sharedFolder", map[string]any{
		"Title": folderView.FolderName + " - Shared Folder",
		"View":  folderView,
	})
}

type managedLink struct {
	share.LinkStats
	FolderName string
}

func (a *API) AdminShareManager(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folders, err := a.browser.AllFoldersWithPath(ctx)
	if err != nil {
		log.Err(err).Msg("failed to list folders for share picker")
	}

	stats, err := a.links.All(ctx)
	if err != nil {
		a.view.RenderError(w, r, http.StatusInternalServerError, "Failed to load share links")
		return
	}

	links := make([]managedLink, 0, len(stats))
	for _, st := range stats {
		m := managedLink{LinkStats: st}
		folder, err := a.services.Drive.GetFolder(ctx, st.FolderID)
		if err != nil || folder.Trashed {
			m.FolderName = "Unknown or Deleted Folder"
		} else {
			m.FolderName = folder.Name
		}
		links = append(links, m)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	a.view.Render(w, r, http.StatusOK, "pages/shareManager", map[string]any{
		"Title":    "Share Manager",
		"Folders":  folders,
		"Links":    links,
		"AdminKey": a.config.Auth.AdminKey,
		"BaseURL":  a.config.API.BaseURL,
	})
}

type createShareRequest struct {
	FolderID  string `json:"folderId"`
	Name      string `json:"name"`
	ExpiresAt string `json:"expiresAt"`
}

func (a *API) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createShareRequest
	fromForm := !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if fromForm {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.FolderID = r.PostFormValue("folderId")
		req.Name = r.PostFormValue("name")
		req.ExpiresAt = r.PostFormValue("expiresAt")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if req.FolderID == "" || req.Name == "" {
		http.Error(w, "folderId and name are required", http.StatusBadRequest)
		return
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		http.Error(w, "Invalid expiration time", http.StatusBadRequest)
		return
	}

	link, err := a.links.Create(ctx, req.FolderID, req.Name, expiresAt)
	if err != nil {
		log.Err(err).Str("folder_id", req.FolderID).Msg("failed to create share link")
		http.Error(w, "Failed to create share link", http.StatusInternalServerError)
		return
	}

	if fromForm {
		a.sessions.NewFlash(w, r, auth.Flash{
			Type:  auth.FlashTypeSuccess,
			Title: "Share link created",
		})
		http.Redirect(w, r, "/share?adminKey="+a.config.Auth.AdminKey, http.StatusSeeOther)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, link)
}

func (a *API) DeleteShareLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := a.links.Delete(r.Context(), token); err != nil {
		log.Err(err).Str("token", token).Msg("failed to delete share link")
		http.Error(w, "Failed to delete share link", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, render.M{"message": "Share link deleted"})
}

// parseExpiry accepts RFC 3339 from API callers and the datetime-local
// format the share manager form submits. Empty means the link never expires.
func parseExpiry(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02T15:04", raw, time.Local)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
