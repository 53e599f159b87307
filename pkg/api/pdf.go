package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/storage/drive"
)

// PDFViewer renders the inline preview page. A token query parameter ties
// the view back to the share link it came from so per-file counters stay
// attributable.
func (a *API) PDFViewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fileID := chi.URLParam(r, "fileID")

	file, err := a.fileMeta(ctx, fileID)
	if err != nil {
		a.view.RenderError(w, r, http.StatusNotFound, "File not found")
		return
	}

	if token := r.URL.Query().Get("token"); token != "" {
		a.links.IncrementPDFView(ctx, fileID, token)
	}

	a.view.Render(w, r, http.StatusOK, "pages/pdfViewer", map[string]any{
		"Title":  file.Name,
		"FileID": file.ID,
	})
}

func (a *API) StreamPDF(w http.ResponseWriter, r *http.Request) {
	a.servePDF(w, r, false)
}

func (a *API) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	a.servePDF(w, r, true)
}

func (a *API) servePDF(w http.ResponseWriter, r *http.Request, attachment bool) {
	ctx := r.Context()
	fileID := chi.URLParam(r, "fileID")

	file, err := a.fileMeta(ctx, fileID)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if file.MimeType != "application/pdf" {
		http.Error(w, "File is not a PDF", http.StatusBadRequest)
		return
	}

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Name))

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" && !attachment {
		start, end, ok := parseByteRange(rangeHeader, file.Size)
		if !ok {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", file.Size))
			http.Error(w, "Invalid range", http.StatusRequestedRangeNotSatisfiable)
			return
		}

		body, err := a.services.Drive.Download(ctx, fileID, fmt.Sprintf("bytes=%d-%d", start, end))
		if err != nil {
			log.Err(err).Str("file_id", fileID).Msg("failed to stream PDF range")
			http.Error(w, "Failed to stream PDF", http.StatusInternalServerError)
			return
		}
		defer body.Close()

		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, file.Size))
		w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
		w.WriteHeader(http.StatusPartialContent)
		if _, err := io.Copy(w, body); err != nil {
			log.Err(err).Str("file_id", fileID).Msg("error copying PDF range to client")
		}
		return
	}

	body, err := a.services.Drive.Download(ctx, fileID, "")
	if err != nil {
		log.Err(err).Str("file_id", fileID).Msg("failed to stream PDF")
		http.Error(w, "Failed to stream PDF", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	if file.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Err(err).Str("file_id", fileID).Msg("error copying PDF to client")
	}
}

// fileMeta serves file metadata through a short-lived local cache so range
// requests from the browser's PDF viewer do not hammer the provider.
func (a *API) fileMeta(ctx context.Context, fileID string) (drive.File, error) {
	if cached, ok := a.pdfMeta.Get(fileID); ok {
		return cached.(drive.File), nil
	}

	file, err := a.services.Drive.GetFile(ctx, fileID)
	if err != nil {
		return drive.File{}, err
	}

	a.pdfMeta.SetDefault(fileID, file)
	return file, nil
}

// parseByteRange understands the single-range form "bytes=start-end" with
// an optional open end. Suffix ranges ("bytes=-500") are not supported.
func parseByteRange(header string, size int64) (start, end int64, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}

	parts := strings.SplitN(strings.TrimPrefix(header, prefix), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}

	if parts[1] == "" {
		end = size - 1
	} else {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}

	if start < 0 || start > end || end >= size {
		return 0, 0, false
	}
	return start, end, true
}
