package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/driveshare/driveshare/pkg/storage/drive"
	"github.com/driveshare/driveshare/pkg/util"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Drive reads a Google Drive through a service account with the readonly
// scope. Credentials arrive as base64-encoded service account JSON.
type Drive struct {
	Credentials string `mapstructure:"credentials"`

	svc *gdrive.Service
}

func NewDrive(settings map[string]any) (*Drive, error) {
	d := util.ConfigToStruct[Drive](settings)

	raw, err := base64.StdEncoding.DecodeString(d.Credentials)
	if err != nil {
		return nil, fmt.Errorf("decoding drive credentials: %w", err)
	}

	svc, err := gdrive.NewService(context.Background(),
		option.WithCredentialsJSON(raw),
		option.WithScopes(gdrive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing drive service: %w", err)
	}

	d.svc = svc
	return d, nil
}

func (d *Drive) GetFolder(ctx context.Context, id string) (drive.Folder, error) {
	f, err := d.svc.Files.Get(id).
		Fields("id, name, parents, createdTime, trashed").
		Context(ctx).Do()
	if err != nil {
		return drive.Folder{}, err
	}
	return toFolder(f), nil
}

func (d *Drive) ListFolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", parentID, folderMimeType)
	res, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name, createdTime, parents)").
		OrderBy("name").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	folders := make([]drive.Folder, 0, len(res.Files))
	for _, f := range res.Files {
		folders = append(folders, toFolder(f))
	}
	return folders, nil
}

func (d *Drive) ListAllFolders(ctx context.Context) ([]drive.Folder, error) {
	q := fmt.Sprintf("mimeType = '%s' and trashed = false", folderMimeType)
	res, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name, createdTime, parents)").
		OrderBy("name").
		PageSize(1000).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	folders := make([]drive.Folder, 0, len(res.Files))
	for _, f := range res.Files {
		folders = append(folders, toFolder(f))
	}
	return folders, nil
}

func (d *Drive) ListPDFs(ctx context.Context, parentID string) ([]drive.File, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType contains 'pdf' and trashed = false", parentID)
	res, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name, mimeType, createdTime, size, thumbnailLink, parents)").
		OrderBy("name").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	files := make([]drive.File, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, toFile(f))
	}
	return files, nil
}

func (d *Drive) GetFile(ctx context.Context, id string) (drive.File, error) {
	f, err := d.svc.Files.Get(id).
		Fields("id, name, mimeType, size").
		Context(ctx).Do()
	if err != nil {
		return drive.File{}, err
	}
	return toFile(f), nil
}

func (d *Drive) Download(ctx context.Context, id string, byteRange string) (io.ReadCloser, error) {
	call := d.svc.Files.Get(id)
	if byteRange != "" {
		call.Header().Set("Range", byteRange)
	}
	res, err := call.Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

func toFolder(f *gdrive.File) drive.Folder {
	return drive.Folder{
		ID:          f.Id,
		Name:        f.Name,
		CreatedTime: parseTime(f.CreatedTime),
		Parents:     f.Parents,
		Trashed:     f.Trashed,
	}
}

func toFile(f *gdrive.File) drive.File {
	return drive.File{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		CreatedTime:   parseTime(f.CreatedTime),
		Size:          f.Size,
		ThumbnailLink: f.ThumbnailLink,
		Parents:       f.Parents,
	}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
