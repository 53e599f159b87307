package drive

import (
	"context"
	"io"
	"time"
)

type Folder struct {
	ID          string
	Name        string
	CreatedTime time.Time
	Parents     []string
	Trashed     bool
}

type File struct {
	ID            string
	Name          string
	MimeType      string
	CreatedTime   time.Time
	Size          int64
	ThumbnailLink string
	Parents       []string
}

// Drive is the cloud storage collaborator. The portal only ever reads:
// folders it lists are weak references, never deleted through here.
type Drive interface {
	GetFolder(ctx context.Context, id string) (Folder, error)

	// ListFolders returns the child folders of parentID, ordered by name.
	ListFolders(ctx context.Context, parentID string) ([]Folder, error)

	// ListAllFolders returns every folder visible to the service account,
	// for the admin share picker.
	ListAllFolders(ctx context.Context) ([]Folder, error)

	// ListPDFs returns the PDF files directly under parentID, ordered by name.
	ListPDFs(ctx context.Context, parentID string) ([]File, error)

	GetFile(ctx context.Context, id string) (File, error)

	// Download opens the file's content stream. A non-empty byteRange
	// ("bytes=start-end") is forwarded to the provider.
	Download(ctx context.Context, id string, byteRange string) (io.ReadCloser, error)
}
