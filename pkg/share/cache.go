package share

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/storage/kv"
)

// Breadcrumb is one hop of the path from a link's root to the current
// folder.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ViewFile is a listed PDF with its portal URLs attached.
type ViewFile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
	PreviewURL    string `json:"previewUrl"`
	DownloadURL   string `json:"downloadUrl"`
	FormattedSize string `json:"formattedSize"`
}

// ViewFolder is a listed child folder.
type ViewFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderView is a fully assembled folder listing, immutable once cached.
type FolderView struct {
	Folders         []ViewFolder `json:"folders"`
	Files           []ViewFile   `json:"files"`
	FolderName      string       `json:"folderName"`
	Breadcrumbs     []Breadcrumb `json:"breadcrumbs"`
	CurrentFolderID string       `json:"currentFolderId"`
	Token           string       `json:"token"`
}

// ViewCache memoizes assembled folder views per (token, folderID) with a
// fixed TTL. Entries self-expire; there is no invalidation API, so a warm
// entry can outlive its link's deletion or expiry by up to one TTL.
//
// Reads are pure. View counting is a separate, explicit RecordView call so
// that cache probes and user-visible renders can be counted independently.
type ViewCache struct {
	kv  kv.KV
	ttl time.Duration
}

func NewViewCache(kv kv.KV, ttl time.Duration) *ViewCache {
	return &ViewCache{kv: kv, ttl: ttl}
}

func (c *ViewCache) Get(ctx context.Context, token, folderID string) (*FolderView, bool) {
	data, ok, err := c.kv.Get(ctx, cacheKeyPrefix+token+folderID)
	if err != nil {
		log.Warn().Err(err).Str("token", token).Msg("Unable to read view cache")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var view FolderView
	if err := json.Unmarshal(data, &view); err != nil {
		log.Warn().Err(err).Str("token", token).Msg("Malformed cached view")
		return nil, false
	}
	return &view, true
}

func (c *ViewCache) Set(ctx context.Context, token, folderID string, view *FolderView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, cacheKeyPrefix+token+folderID, data, c.ttl)
}

// RecordView bumps the link's view counter. Called once per render,
// regardless of whether the view came from the cache.
func (c *ViewCache) RecordView(ctx context.Context, token string) {
	if _, err := c.kv.Incr(ctx, viewCounterPrefix+token); err != nil {
		log.Warn().Err(err).Str("token", token).Msg("Unable to increment view counter")
	}
}
