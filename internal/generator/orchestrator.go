package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/logger"
	"aura_avatar/internal/prompt"
	"aura_avatar/internal/provider"

	"golang.org/x/sync/errgroup"
)

// ErrUnavailable means no eligible adapter could produce an image. Only the
// uploaded-photo path can surface it; the text path always terminates in the
// deterministic fallback.
var ErrUnavailable = errors.New("generation unavailable")

// Outcome is the chosen image plus provenance.
type Outcome struct {
	ImageURL   string
	ImageData  []byte
	Provider   string
	Prompt     string
	Variations []domain.Variation
}

type Options struct {
	// AdapterTimeout bounds each individual vendor call. A timed-out
	// adapter counts as failed and the chain advances.
	AdapterTimeout time.Duration
	// VariationCount caps premium style variations per generation.
	VariationCount int
}

// Orchestrator runs the provider fallback chain. Generators are tried in
// the order given; the caller is expected to place the deterministic
// fallback last. No retries happen at this layer: auth, quota and network
// failures simply advance the chain.
type Orchestrator struct {
	generators []provider.Generator
	photo      []provider.PhotoTransformer
	enhancer   provider.Enhancer
	timeout    time.Duration
	variations int
}

func New(generators []provider.Generator, photo []provider.PhotoTransformer, enhancer provider.Enhancer, opts Options) *Orchestrator {
	timeout := opts.AdapterTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	variations := opts.VariationCount
	if variations <= 0 {
		variations = 4
	}
	return &Orchestrator{
		generators: generators,
		photo:      photo,
		enhancer:   enhancer,
		timeout:    timeout,
		variations: variations,
	}
}

// Generate runs a single request through the chain. wantVariations asks for
// the premium style-variation fan-out on the photo path.
func (o *Orchestrator) Generate(ctx context.Context, req domain.AvatarRequest, wantVariations bool) (*Outcome, error) {
	if req.UploadedImageURL != "" {
		return o.transformPhoto(ctx, req, wantVariations)
	}
	return o.textToImage(ctx, req)
}

func (o *Orchestrator) textToImage(ctx context.Context, req domain.AvatarRequest) (*Outcome, error) {
	p, negative := prompt.Build(req)
	if o.enhancer != nil {
		p = o.enhancer.Enhance(ctx, p)
	}

	size := req.SizePixels()

	for _, g := range o.generators {
		if !g.Available() {
			genAttempts.WithLabelValues(g.Name(), "skipped").Inc()
			logger.Debug("adapter not configured, skipping", "provider", g.Name())
			continue
		}

		res, err := o.callGenerator(ctx, g, p, negative, size)
		if err != nil {
			genAttempts.WithLabelValues(g.Name(), "failure").Inc()
			logger.Warn("generation attempt failed, advancing chain", "provider", g.Name(), "error", err)
			continue
		}

		genAttempts.WithLabelValues(g.Name(), "success").Inc()
		if g.Name() == "dicebear" {
			genFallbacks.Inc()
		}
		return &Outcome{
			ImageURL:  res.ImageURL,
			ImageData: res.ImageData,
			Provider:  g.Name(),
			Prompt:    p,
		}, nil
	}

	// Reachable only when the chain was built without the fallback.
	return nil, ErrUnavailable
}

// transformPhoto is the image-conditioned path. There is no placeholder
// substitute here: when a user supplies their own photo, a wrong result is
// worse than an error.
func (o *Orchestrator) transformPhoto(ctx context.Context, req domain.AvatarRequest, wantVariations bool) (*Outcome, error) {
	p := prompt.BuildPhotoTransform(req)

	for _, t := range o.photo {
		if !t.Available() {
			genAttempts.WithLabelValues(t.Name(), "skipped").Inc()
			continue
		}

		res, err := o.callTransformer(ctx, t, req.UploadedImageURL, p)
		if err != nil {
			genAttempts.WithLabelValues(t.Name(), "failure").Inc()
			logger.Warn("photo transform failed, advancing chain", "provider", t.Name(), "error", err)
			continue
		}

		genAttempts.WithLabelValues(t.Name(), "success").Inc()
		out := &Outcome{
			ImageURL:  res.ImageURL,
			ImageData: res.ImageData,
			Provider:  t.Name(),
			Prompt:    p,
		}
		if wantVariations {
			out.Variations = o.styleVariations(ctx, t, req.UploadedImageURL)
		}
		return out, nil
	}

	return nil, ErrUnavailable
}

// Variations renders alternate styles for an already hosted image, outside
// the generation flow. Uses the first configured image-capable adapter.
func (o *Orchestrator) Variations(ctx context.Context, imageURL string) ([]domain.Variation, error) {
	for _, t := range o.photo {
		if !t.Available() {
			continue
		}
		return o.styleVariations(ctx, t, imageURL), nil
	}
	return nil, ErrUnavailable
}

// styleVariations renders up to variations alternate styles concurrently.
// A failed variation is dropped; it never fails the parent generation.
func (o *Orchestrator) styleVariations(ctx context.Context, t provider.PhotoTransformer, imageURL string) []domain.Variation {
	styles := prompt.VariationStyles
	if len(styles) > o.variations {
		styles = styles[:o.variations]
	}

	var mu sync.Mutex
	results := make([]domain.Variation, 0, len(styles))

	g, gctx := errgroup.WithContext(ctx)
	for _, style := range styles {
		g.Go(func() error {
			res, err := o.callTransformer(gctx, t, imageURL, prompt.BuildVariation(style))
			if err != nil {
				logger.Warn("variation dropped", "style", style.Name, "error", err)
				return nil
			}
			url := res.ImageURL
			if url == "" {
				return nil
			}
			mu.Lock()
			results = append(results, domain.Variation{Style: style.Name, URL: url})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Orchestrator) callGenerator(ctx context.Context, g provider.Generator, p, negative string, size int) (*provider.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return g.Generate(callCtx, p, negative, size)
}

func (o *Orchestrator) callTransformer(ctx context.Context, t provider.PhotoTransformer, imageURL, p string) (*provider.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return t.TransformPhoto(callCtx, imageURL, p, prompt.NegativePrompt)
}
