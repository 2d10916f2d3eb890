package imageproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Resizer produces a resized/cropped rendition of image bytes.
type Resizer interface {
	Resize(data []byte, width, height int) ([]byte, error)
}

// ImagingResizer is the production Resizer, a deterministic center-crop
// fill followed by PNG encoding.
type ImagingResizer struct{}

func (ImagingResizer) Resize(data []byte, width, height int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail keeps aspect ratio inside the given bounds.
func Thumbnail(data []byte, maxSize int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
