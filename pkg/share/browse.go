package share

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/storage/drive"
)

// Browser assembles renderable folder views from the storage provider.
type Browser struct {
	drive drive.Drive
}

func NewBrowser(d drive.Drive) *Browser {
	return &Browser{drive: d}
}

// FolderView builds the listing for folderID within link's subtree. An
// empty folderID means the link's root. Per-item lookups (folder name,
// breadcrumb hops) degrade in place; only the two listing calls abort the
// whole view.
func (b *Browser) FolderView(ctx context.Context, link Link, folderID string) (*FolderView, error) {
	currentID := link.FolderID
	folderName := link.Name

	if folderID != "" {
		currentID = folderID
		if folder, err := b.drive.GetFolder(ctx, folderID); err == nil {
			folderName = folder.Name
		} else {
			log.Warn().Err(err).Str("folder_id", folderID).Msg("Unable to resolve folder name")
		}
	}

	breadcrumbs := b.Breadcrumbs(ctx, currentID, link.FolderID, link.Name)

	children, err := b.drive.ListFolders(ctx, currentID)
	if err != nil {
		return nil, err
	}

	pdfs, err := b.drive.ListPDFs(ctx, currentID)
	if err != nil {
		return nil, err
	}

	folders := make([]ViewFolder, 0, len(children))
	for _, f := range children {
		folders = append(folders, ViewFolder{ID: f.ID, Name: f.Name})
	}

	files := make([]ViewFile, 0, len(pdfs))
	for _, f := range pdfs {
		files = append(files, ViewFile{
			ID:            f.ID,
			Name:          f.Name,
			MimeType:      f.MimeType,
			Size:          f.Size,
			ThumbnailLink: f.ThumbnailLink,
			PreviewURL:    "/pdf/" + f.ID,
			DownloadURL:   "/pdf/" + f.ID + "/download",
			FormattedSize: FormatFileSize(f.Size),
		})
	}

	return &FolderView{
		Folders:         folders,
		Files:           files,
		FolderName:      folderName,
		Breadcrumbs:     breadcrumbs,
		CurrentFolderID: currentID,
		Token:           link.Token,
	}, nil
}

// Breadcrumbs walks up from currentID collecting names until rootID. A
// failed hop truncates the trail rather than failing the caller.
func (b *Browser) Breadcrumbs(ctx context.Context, currentID, rootID, rootName string) []Breadcrumb {
	if currentID == rootID {
		return []Breadcrumb{{ID: rootID, Name: rootName}}
	}

	var crumbs []Breadcrumb
	current := currentID
	for hop := 0; hop < maxAncestryHops; hop++ {
		folder, err := b.drive.GetFolder(ctx, current)
		if err != nil {
			log.Warn().Err(err).Str("folder_id", current).Msg("Breadcrumb lookup failed")
			return crumbs
		}

		crumbs = append([]Breadcrumb{{ID: folder.ID, Name: folder.Name}}, crumbs...)

		if len(folder.Parents) == 0 || folder.Parents[0] == rootID {
			return append([]Breadcrumb{{ID: rootID, Name: rootName}}, crumbs...)
		}
		current = folder.Parents[0]
	}

	return crumbs
}

// FolderEntry is a folder with its full path, for the admin share picker.
type FolderEntry struct {
	drive.Folder
	FullPath string
}

// AllFoldersWithPath lists every visible folder with a "A > B > C" path.
// Path resolution failures degrade to the bare folder name.
func (b *Browser) AllFoldersWithPath(ctx context.Context) ([]FolderEntry, error) {
	folders, err := b.drive.ListAllFolders(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]FolderEntry, 0, len(folders))
	for _, f := range folders {
		entries = append(entries, FolderEntry{
			Folder:   f,
			FullPath: strings.Join(b.folderPath(ctx, f), " > "),
		})
	}
	return entries, nil
}

func (b *Browser) folderPath(ctx context.Context, folder drive.Folder) []string {
	path := []string{folder.Name}
	current := folder

	for hop := 0; hop < maxAncestryHops; hop++ {
		if len(current.Parents) == 0 || current.Parents[0] == "root" {
			return path
		}
		parent, err := b.drive.GetFolder(ctx, current.Parents[0])
		if err != nil {
			log.Warn().Err(err).Str("folder_id", current.Parents[0]).Msg("Unable to resolve parent folder")
			return path
		}
		path = append([]string{parent.Name}, path...)
		current = parent
	}
	return path
}

// FormatFileSize renders a byte count the way the listing templates expect:
// "0 Bytes", "1.5 KB", "2 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}
