package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/driveshare/driveshare/pkg/storage/drive"
)

// Drive is an in-memory folder/file tree for tests and local development.
type Drive struct {
	mu      sync.RWMutex
	folders map[string]drive.Folder
	files   map[string]drive.File
	content map[string][]byte
	fail    map[string]bool
}

func NewDrive(settings map[string]any) (*Drive, error) {
	return &Drive{
		folders: map[string]drive.Folder{},
		files:   map[string]drive.File{},
		content: map[string][]byte{},
		fail:    map[string]bool{},
	}, nil
}

func (d *Drive) AddFolder(f drive.Folder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.folders[f.ID] = f
}

func (d *Drive) AddFile(f drive.File, content []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.Size == 0 {
		f.Size = int64(len(content))
	}
	d.files[f.ID] = f
	d.content[f.ID] = content
}

// Fail makes every lookup of id return an error, to exercise fail-closed
// paths.
func (d *Drive) Fail(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[id] = true
}

func (d *Drive) GetFolder(ctx context.Context, id string) (drive.Folder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.fail[id] {
		return drive.Folder{}, fmt.Errorf("drive: lookup failed for %s", id)
	}
	f, ok := d.folders[id]
	if !ok {
		return drive.Folder{}, fmt.Errorf("drive: folder %s not found", id)
	}
	return f, nil
}

func (d *Drive) ListFolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []drive.Folder
	for _, f := range d.folders {
		if len(f.Parents) > 0 && f.Parents[0] == parentID && !f.Trashed {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Drive) ListAllFolders(ctx context.Context) ([]drive.Folder, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []drive.Folder
	for _, f := range d.folders {
		if !f.Trashed {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Drive) ListPDFs(ctx context.Context, parentID string) ([]drive.File, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []drive.File
	for _, f := range d.files {
		if len(f.Parents) > 0 && f.Parents[0] == parentID && strings.Contains(f.MimeType, "pdf") {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Drive) GetFile(ctx context.Context, id string) (drive.File, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.fail[id] {
		return drive.File{}, fmt.Errorf("drive: lookup failed for %s", id)
	}
	f, ok := d.files[id]
	if !ok {
		return drive.File{}, fmt.Errorf("drive: file %s not found", id)
	}
	return f, nil
}

func (d *Drive) Download(ctx context.Context, id string, byteRange string) (io.ReadCloser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	content, ok := d.content[id]
	if !ok {
		return nil, fmt.Errorf("drive: file %s not found", id)
	}

	if byteRange != "" {
		start, end, err := parseRange(byteRange, int64(len(content)))
		if err != nil {
			return nil, err
		}
		content = content[start : end+1]
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func parseRange(byteRange string, size int64) (int64, int64, error) {
	rangeSpec, ok := strings.CutPrefix(byteRange, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("drive: malformed range %q", byteRange)
	}
	parts := strings.SplitN(rangeSpec, "-", 2)
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("drive: malformed range %q", byteRange)
	}
	end := size - 1
	if len(parts) == 2 && parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("drive: malformed range %q", byteRange)
		}
	}
	if start < 0 || start > end || end >= size {
		return 0, 0, fmt.Errorf("drive: range %q out of bounds", byteRange)
	}
	return start, end, nil
}
