package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	return s
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveRandomizesFilename(t *testing.T) {
	s := newTestStorage(t)
	data := testPNG(t, 4, 4)

	first, err := s.Save(data, "photo.PNG")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.Save(data, "photo.PNG")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if first == second {
		t.Error("two saves of the same upload produced the same filename")
	}
	if !strings.HasSuffix(first, ".png") {
		t.Errorf("stored name %q does not keep a lowercased extension", first)
	}
	if strings.Contains(first, "photo") {
		t.Errorf("stored name %q leaks the original filename", first)
	}
}

func TestGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	data := testPNG(t, 4, 4)

	name, err := s.Save(data, "dish.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(name)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("retrieved data differs from saved data")
	}
	if !s.Exists(name) {
		t.Error("Exists returned false for a stored image")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	name, err := s.Save(testPNG(t, 4, 4), "dish.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Exists(name) {
		t.Error("image still exists after delete")
	}

	// Deleting again is a no-op.
	if err := s.Delete(name); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"", "../escape.png", "a/b.png"} {
		if _, err := s.Path(name); err == nil {
			t.Errorf("Path(%q) accepted an unsafe name", name)
		}
	}
}

func TestDecodeAndBlurHash(t *testing.T) {
	data := testPNG(t, 200, 100)

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		t.Fatalf("blurhash: %v", err)
	}
	if hash == "" {
		t.Error("empty blurhash")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("Decode accepted non-image data")
	}
}
