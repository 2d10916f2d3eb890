package imageproc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"aura_avatar/internal/domain"

	"github.com/disintegration/imaging"
)

type fakeStore struct {
	uploads map[string][]byte
}

func (s *fakeStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[key] = data
	return "https://cdn.test/" + key, nil
}

// failingResizer fails only for one derivative size.
type failingResizer struct {
	failWidth int
}

func (r failingResizer) Resize(data []byte, width, height int) ([]byte, error) {
	if width == r.failWidth {
		return nil, errors.New("forced resize failure")
	}
	return ImagingResizer{}.Resize(data, width, height)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDeriveAllSizes(t *testing.T) {
	store := &fakeStore{}
	f := NewFanout(ImagingResizer{}, store)

	urls := f.Derive(context.Background(), "av1", "", testPNG(t, 64, 64))

	for _, size := range DerivativeSizes {
		if urls[size.Name] == "" {
			t.Fatalf("missing derivative %s", size.Name)
		}
	}
	if len(urls) != 4 {
		t.Fatalf("derivatives = %d, want 4", len(urls))
	}
}

func TestDeriveSingleFailureIsSkipped(t *testing.T) {
	store := &fakeStore{}
	// width 400 only matches the profile derivative
	f := NewFanout(failingResizer{failWidth: 400}, store)

	urls := f.Derive(context.Background(), "av2", "", testPNG(t, 64, 64))

	if _, ok := urls[domain.URLProfile]; ok {
		t.Fatal("failed derivative must be absent")
	}
	for _, name := range []string{domain.URLStory, domain.URLPost, domain.URLHD} {
		if urls[name] == "" {
			t.Fatalf("derivative %s missing, only the failed one should be absent", name)
		}
	}
	if len(urls) != 3 {
		t.Fatalf("derivatives = %d, want 3 of 4", len(urls))
	}
}

func TestResizeExactDimensions(t *testing.T) {
	out, err := ImagingResizer{}.Resize(testPNG(t, 64, 32), 40, 40)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("resized to %dx%d, want 40x40", b.Dx(), b.Dy())
	}
}
