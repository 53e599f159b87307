package share

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/storage/kv"
)

// Key prefixes in the external store.
const (
	linkKeyPrefix     = "shareLinks:"
	cacheKeyPrefix    = "cachedLinkData:"
	viewCounterPrefix = "sharedLinkCounter:"
	pdfCounterPrefix  = "pdfCounter:"
)

// Link grants time-bounded, folder-scoped read access. The folder it
// references is a weak reference into the storage provider: validated on
// use, never deleted from here.
type Link struct {
	Token     string     `json:"token"`
	FolderID  string     `json:"folderId"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// LinkStats is a Link enriched with its usage counters.
type LinkStats struct {
	Link
	ViewCount int64 `json:"viewCount"`
	PDFViews  int64 `json:"pdfViews"`
}

type Store struct {
	kv kv.KV
}

func NewStore(kv kv.KV) *Store {
	return &Store{kv: kv}
}

// Create persists a new link under a fresh token. When expiresAt is set the
// record's storage TTL matches it, so storage expiry and logical expiry
// agree.
func (s *Store) Create(ctx context.Context, folderID, name string, expiresAt *time.Time) (Link, error) {
	link := Link{
		Token:     uuid.New().String(),
		FolderID:  folderID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}

	data, err := json.Marshal(link)
	if err != nil {
		return Link{}, err
	}

	var ttl time.Duration
	if expiresAt != nil {
		ttl = time.Until(*expiresAt)
	}

	if err := s.kv.Set(ctx, linkKeyPrefix+link.Token, data, ttl); err != nil {
		return Link{}, err
	}

	return link, nil
}

// ByToken returns the link for token. Missing, malformed, and unreadable
// records all report not-found rather than an error.
func (s *Store) ByToken(ctx context.Context, token string) (Link, bool) {
	data, ok, err := s.kv.Get(ctx, linkKeyPrefix+token)
	if err != nil {
		log.Error().Err(err).Str("token", token).Msg("Unable to read share link")
		return Link{}, false
	}
	if !ok {
		return Link{}, false
	}

	var link Link
	if err := json.Unmarshal(data, &link); err != nil {
		log.Error().Err(err).Str("token", token).Msg("Malformed share link record")
		return Link{}, false
	}
	return link, true
}

// Delete is idempotent. Counters for the token are left behind; see All.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.kv.Delete(ctx, linkKeyPrefix+token)
}

// All returns every link with its view counters. This fans out one Counter
// read per link plus one per pdfCounter key, O(links x counters) round
// trips to the store. Fine for a low-cardinality admin listing; do not put
// this on a hot path.
func (s *Store) All(ctx context.Context) ([]LinkStats, error) {
	keys, err := s.kv.Keys(ctx, linkKeyPrefix)
	if err != nil {
		return nil, err
	}

	links := make([]LinkStats, 0, len(keys))
	for _, key := range keys {
		token := strings.TrimPrefix(key, linkKeyPrefix)

		link, ok := s.ByToken(ctx, token)
		if !ok {
			continue
		}

		viewCount, err := s.kv.Counter(ctx, viewCounterPrefix+token)
		if err != nil {
			log.Warn().Err(err).Str("token", token).Msg("Unable to read view counter")
		}

		var pdfViews int64
		pdfKeys, err := s.kv.Keys(ctx, pdfCounterPrefix+token+":")
		if err != nil {
			log.Warn().Err(err).Str("token", token).Msg("Unable to list pdf counters")
		}
		for _, pk := range pdfKeys {
			n, err := s.kv.Counter(ctx, pk)
			if err != nil {
				continue
			}
			pdfViews += n
		}

		links = append(links, LinkStats{Link: link, ViewCount: viewCount, PDFViews: pdfViews})
	}

	return links, nil
}

// IncrementPDFView bumps the per-file view counter. Fire and forget: the
// store's increment is atomic, failures are only logged.
func (s *Store) IncrementPDFView(ctx context.Context, fileID, token string) {
	if _, err := s.kv.Incr(ctx, pdfCounterPrefix+token+":"+fileID); err != nil {
		log.Warn().Err(err).Str("token", token).Str("file_id", fileID).Msg("Unable to increment pdf counter")
	}
}

// Count returns the number of live share links.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, linkKeyPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// PDFCounterCount returns the number of distinct (token, file) pairs that
// have ever been viewed.
func (s *Store) PDFCounterCount(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, pdfCounterPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
