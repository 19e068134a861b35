// Package attach manages the composer's pending-attachment queue: transient
// records for files selected but not yet sent, including preview temp-file
// lifecycle for images.
package attach

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"textora/internal/logging"
)

const pdfMIME = "application/pdf"

// PendingUpload is a pre-send attachment. Created on file selection,
// destroyed on send (converted into a log message) or explicit removal.
type PendingUpload struct {
	ID          string
	Path        string
	Name        string
	Size        int64
	MIME        string
	IsPDF       bool
	PreviewPath string

	released bool
}

// IsImage reports whether the attachment is an image.
func (u *PendingUpload) IsImage() bool {
	return strings.HasPrefix(u.MIME, "image/")
}

// ReleasePreview removes the preview temp file. Releasing twice, or releasing
// an upload without a preview, is a no-op.
func (u *PendingUpload) ReleasePreview() {
	if u.released || u.PreviewPath == "" {
		return
	}
	u.released = true
	if err := os.Remove(u.PreviewPath); err != nil && !os.IsNotExist(err) {
		logging.Attach("preview release failed for %s: %v", u.Name, err)
	}
}

// Queue holds pending uploads in selection order.
type Queue struct {
	cacheDir string
	items    []*PendingUpload
}

// NewQueue returns an empty queue whose image previews are materialized under
// cacheDir.
func NewQueue(cacheDir string) *Queue {
	return &Queue{cacheDir: cacheDir}
}

// Enqueue builds a PendingUpload per path and appends them, in order, to the
// existing queue. Images get a preview temp-file copy; PDFs get the fixed
// file-type marker and no preview. Unreadable files are skipped.
func (q *Queue) Enqueue(paths ...string) []*PendingUpload {
	var added []*PendingUpload
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			logging.Attach("skipping %s: %v", p, err)
			continue
		}
		mt := mime.TypeByExtension(filepath.Ext(p))
		u := &PendingUpload{
			ID:    uuid.NewString(),
			Path:  p,
			Name:  filepath.Base(p),
			Size:  info.Size(),
			MIME:  mt,
			IsPDF: mt == pdfMIME,
		}
		if u.IsImage() {
			if preview, err := q.makePreview(p); err == nil {
				u.PreviewPath = preview
			} else {
				logging.Attach("no preview for %s: %v", u.Name, err)
			}
		}
		added = append(added, u)
	}
	q.items = append(q.items, added...)
	if len(added) > 0 {
		logging.Attach("queued %d attachment(s)", len(added))
	}
	return added
}

func (q *Queue) makePreview(src string) (string, error) {
	if err := os.MkdirAll(q.cacheDir, 0o755); err != nil {
		return "", err
	}
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(q.cacheDir, "preview-*"+filepath.Ext(src))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("copy preview: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// Remove locates an upload by ID, releases its preview, and filters it out.
// Removing a nonexistent ID is a no-op.
func (q *Queue) Remove(id string) {
	for i, u := range q.items {
		if u.ID == id {
			u.ReleasePreview()
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Drain atomically returns the queued uploads and empties the queue. Preview
// ownership transfers to the caller, which converts them into log messages.
func (q *Queue) Drain() []*PendingUpload {
	items := q.items
	q.items = nil
	return items
}

// Clear releases every preview and empties the queue.
func (q *Queue) Clear() {
	for _, u := range q.items {
		u.ReleasePreview()
	}
	q.items = nil
}

// Items returns the queued uploads in selection order.
func (q *Queue) Items() []*PendingUpload { return q.items }

// Len reports the queue length.
func (q *Queue) Len() int { return len(q.items) }

// ReleasePreviewFile removes a preview file that already migrated into the
// message log. Missing files are ignored.
func ReleasePreviewFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Attach("preview release failed: %v", err)
	}
}

// FormatSize renders a byte count the way the transcript displays it:
// "N B" below 1 KiB, one-decimal KB below 1 MiB, one-decimal MB above.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
