package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshare/driveshare/pkg/storage/drive"
)

func TestStreamPDFFull(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/PDF1", nil, cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, `inline; filename="report.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 report body", w.Body.String())
}

func TestStreamPDFRange(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/PDF1", nil, cookies, map[string]string{
		"Range": "bytes=2-8",
	})
	require.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 2-8/20", w.Header().Get("Content-Range"))
	assert.Equal(t, "7", w.Header().Get("Content-Length"))
	assert.Equal(t, "DF-1.4 ", w.Body.String())
}

func TestStreamPDFOpenEndedRange(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/PDF1", nil, cookies, map[string]string{
		"Range": "bytes=10-",
	})
	require.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "bytes 10-19/20", w.Header().Get("Content-Range"))
}

func TestStreamPDFInvalidRange(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/PDF1", nil, cookies, map[string]string{
		"Range": "bytes=50-60",
	})
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
	assert.Equal(t, "bytes */20", w.Header().Get("Content-Range"))
}

func TestStreamPDFRejectsNonPDF(t *testing.T) {
	h := newHarness(t)
	h.drive.AddFile(drive.File{
		ID:       "TXT1",
		Name:     "notes.txt",
		MimeType: "text/plain",
		Parents:  []string{"F1"},
	}, []byte("plain text"))
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/TXT1", nil, cookies, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File is not a PDF")
}

func TestStreamPDFMissingFile(t *testing.T) {
	h := newHarness(t)
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/stream/NOPE", nil, cookies, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadPDF(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	w := h.do(http.MethodGet, "/pdf/PDF1/download", nil, cookies, map[string]string{
		"Range": "bytes=0-4",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="report.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 report body", w.Body.String())
}

func TestPDFViewerCountsView(t *testing.T) {
	h := newHarness(t)
	h.seedTree()
	cookies := h.login(t, "viewer@example.com")

	link, err := h.api.links.Create(context.Background(), "F1", "Reports", nil)
	require.NoError(t, err)

	w := h.do(http.MethodGet, "/pdf/PDF1?token="+link.Token, nil, cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/pdf/stream/PDF1")

	stats, err := h.api.links.All(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].PDFViews)
}

func TestFileMetaCaches(t *testing.T) {
	h := newHarness(t)
	h.seedTree()

	file, err := h.api.fileMeta(context.Background(), "PDF1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", file.Name)

	// Subsequent lookups hit the local cache even if the provider fails.
	h.drive.Fail("PDF1")
	file, err = h.api.fileMeta(context.Background(), "PDF1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", file.Name)
}
