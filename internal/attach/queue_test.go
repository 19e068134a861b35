package attach

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnqueueImageGetsPreviewCopy(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	img := writeFile(t, dir, "photo.png", []byte("pngdata"))

	added := q.Enqueue(img)
	if len(added) != 1 {
		t.Fatalf("added = %d", len(added))
	}
	u := added[0]
	if !u.IsImage() || u.IsPDF {
		t.Fatalf("misclassified: %+v", u)
	}
	if u.MIME != "image/png" {
		t.Errorf("mime = %q", u.MIME)
	}
	if u.Size != int64(len("pngdata")) {
		t.Errorf("size = %d", u.Size)
	}
	if u.PreviewPath == "" {
		t.Fatal("image got no preview")
	}
	data, err := os.ReadFile(u.PreviewPath)
	if err != nil || string(data) != "pngdata" {
		t.Fatalf("preview copy wrong: %q, %v", data, err)
	}
}

func TestEnqueuePDFNoPreview(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	pdf := writeFile(t, dir, "doc.pdf", []byte("%PDF"))

	added := q.Enqueue(pdf)
	if len(added) != 1 {
		t.Fatalf("added = %d", len(added))
	}
	u := added[0]
	if !u.IsPDF || u.IsImage() {
		t.Fatalf("misclassified: %+v", u)
	}
	if u.PreviewPath != "" {
		t.Errorf("pdf got a preview: %s", u.PreviewPath)
	}
}

func TestEnqueueSkipsUnreadableAndAppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	a := writeFile(t, dir, "a.png", []byte("a"))
	b := writeFile(t, dir, "b.pdf", []byte("b"))

	q.Enqueue(a)
	q.Enqueue(filepath.Join(dir, "missing.png"), dir, b) // missing file and a directory are skipped

	items := q.Items()
	if len(items) != 2 {
		t.Fatalf("queue len = %d, want 2", len(items))
	}
	if items[0].Name != "a.png" || items[1].Name != "b.pdf" {
		t.Errorf("order wrong: %s, %s", items[0].Name, items[1].Name)
	}
}

func TestRemoveNonexistentKeepsQueue(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	q.Enqueue(writeFile(t, dir, "a.png", []byte("a")))

	q.Remove("no-such-id")
	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", q.Len())
	}
}

func TestRemoveReleasesPreview(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	added := q.Enqueue(writeFile(t, dir, "a.png", []byte("a")))
	preview := added[0].PreviewPath

	q.Remove(added[0].ID)
	if q.Len() != 0 {
		t.Fatalf("queue len = %d", q.Len())
	}
	if _, err := os.Stat(preview); !os.IsNotExist(err) {
		t.Errorf("preview still on disk: %v", err)
	}
}

func TestDoubleReleaseIsNoop(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	added := q.Enqueue(writeFile(t, dir, "a.png", []byte("a")))

	added[0].ReleasePreview()
	added[0].ReleasePreview() // must not panic or error

	(&PendingUpload{}).ReleasePreview() // no preview at all
}

func TestDrainTransfersOwnership(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	q.Enqueue(writeFile(t, dir, "a.png", []byte("a")))
	q.Enqueue(writeFile(t, dir, "b.png", []byte("b")))

	drained := q.Drain()
	if len(drained) != 2 || q.Len() != 0 {
		t.Fatalf("drained = %d, left = %d", len(drained), q.Len())
	}
	// Previews survive the drain; the log owns them now.
	for _, u := range drained {
		if _, err := os.Stat(u.PreviewPath); err != nil {
			t.Errorf("preview gone after drain: %v", err)
		}
	}
}

func TestClearReleasesEverything(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(filepath.Join(dir, "cache"))
	added := q.Enqueue(writeFile(t, dir, "a.png", []byte("a")))
	preview := added[0].PreviewPath

	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("queue len = %d", q.Len())
	}
	if _, err := os.Stat(preview); !os.IsNotExist(err) {
		t.Errorf("preview still on disk: %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5*1024*1024 + 512*1024, "5.5 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
