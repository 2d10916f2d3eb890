package imageproc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/logger"
)

// Store uploads image bytes and returns a public URL.
type Store interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

type DerivativeSize struct {
	Name   string
	Width  int
	Height int
}

// DerivativeSizes are the premium export formats, produced for photo-based
// generations only.
var DerivativeSizes = []DerivativeSize{
	{Name: domain.URLProfile, Width: 400, Height: 400},
	{Name: domain.URLStory, Width: 1080, Height: 1920},
	{Name: domain.URLPost, Width: 1080, Height: 1080},
	{Name: domain.URLHD, Width: 2048, Height: 2048},
}

const maxSourceBytes = 20 * 1024 * 1024

// Fanout derives the named resized variants of a chosen image.
type Fanout struct {
	resizer Resizer
	store   Store
	client  *http.Client
}

func NewFanout(resizer Resizer, store Store) *Fanout {
	return &Fanout{
		resizer: resizer,
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Derive produces the premium derivative set. A failed derivative is logged
// and simply absent from the returned map; the caller treats a missing key
// as "unavailable", not as an error.
func (f *Fanout) Derive(ctx context.Context, avatarID, imageURL string, imageData []byte) map[string]string {
	if imageData == nil {
		data, err := f.download(ctx, imageURL)
		if err != nil {
			logger.Warn("derivative source download failed", "avatar_id", avatarID, "error", err)
			return map[string]string{}
		}
		imageData = data
	}

	urls := make(map[string]string, len(DerivativeSizes))
	for _, size := range DerivativeSizes {
		resized, err := f.resizer.Resize(imageData, size.Width, size.Height)
		if err != nil {
			logger.Warn("derivative resize failed", "avatar_id", avatarID, "derivative", size.Name, "error", err)
			continue
		}

		key := fmt.Sprintf("avatars/%s/%s.png", avatarID, size.Name)
		url, err := f.store.Upload(ctx, key, resized)
		if err != nil {
			logger.Warn("derivative upload failed", "avatar_id", avatarID, "derivative", size.Name, "error", err)
			continue
		}
		urls[size.Name] = url
	}
	return urls
}

func (f *Fanout) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
}
