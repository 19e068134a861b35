// Package download saves generated carousel images to disk. Downloads of a
// carousel are deliberately serialized with a fixed inter-download delay so a
// burst of saves cannot collide.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"textora/internal/logging"
	"textora/internal/session"
)

// stagger is the fixed delay between consecutive downloads of one carousel.
const stagger = 500 * time.Millisecond

// Downloader writes carousel images into a downloads directory.
type Downloader struct {
	dir    string
	client *http.Client
	delay  time.Duration
}

// New returns a downloader targeting dir.
func New(dir string) *Downloader {
	return &Downloader{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
		delay:  stagger,
	}
}

// fileName is the fixed naming pattern for saved artwork.
func fileName(img session.CarouselImage) string {
	return fmt.Sprintf("textora_ai_image_%d.png", img.ID)
}

// Save fetches a single image and writes it to the downloads directory,
// returning the saved path.
func (d *Downloader) Save(ctx context.Context, img session.CarouselImage) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image %d: status %d", img.ID, resp.StatusCode)
	}

	path := filepath.Join(d.dir, fileName(img))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	logging.Download("saved %s", path)
	return path, nil
}

// SaveAll downloads every image of a carousel, one at a time, sleeping the
// fixed stagger before each image after the first. A failed image does not
// stop the rest; all failures are joined into the returned error.
func (d *Downloader) SaveAll(ctx context.Context, images []session.CarouselImage) ([]string, error) {
	var (
		saved []string
		errs  []error
	)
	for i, img := range images {
		if i > 0 {
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return saved, ctx.Err()
			}
		}
		path, err := d.Save(ctx, img)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		saved = append(saved, path)
	}
	return saved, errors.Join(errs...)
}
