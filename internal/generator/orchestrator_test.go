package generator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/provider"
)

type fakeGenerator struct {
	name      string
	available bool
	err       error
	calls     atomic.Int64
}

func (f *fakeGenerator) Name() string    { return f.name }
func (f *fakeGenerator) Available() bool { return f.available }

func (f *fakeGenerator) Generate(ctx context.Context, prompt, negative string, size int) (*provider.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Result{ImageURL: "https://img.test/" + f.name}, nil
}

type fakeTransformer struct {
	name      string
	available bool
	failFor   map[string]bool // prompts that should fail
	calls     atomic.Int64
}

func (f *fakeTransformer) Name() string    { return f.name }
func (f *fakeTransformer) Available() bool { return f.available }

func (f *fakeTransformer) TransformPhoto(ctx context.Context, imageURL, prompt, negative string) (*provider.Result, error) {
	f.calls.Add(1)
	for marker := range f.failFor {
		if marker != "" && strings.Contains(prompt, marker) {
			return nil, &provider.Error{Provider: f.name, Kind: provider.KindNetwork, Err: errors.New("forced")}
		}
	}
	return &provider.Result{ImageURL: "https://img.test/" + f.name + "/" + prompt[:min(8, len(prompt))]}, nil
}

func textRequest() domain.AvatarRequest {
	return domain.AvatarRequest{
		Gender: "male", Age: "adult", SkinTone: "fair",
		HairStyle: "short", HairColor: "black", Outfit: "casual",
		Background: "transparent", ArtStyle: "anime", AuraEffect: "none",
		Pose: "front", Size: "512",
	}
}

func quotaErr(name string) error {
	return &provider.Error{Provider: name, Kind: provider.KindQuota, Err: errors.New("quota exceeded")}
}

func TestTextPathFirstSuccessWins(t *testing.T) {
	primary := &fakeGenerator{name: "gemini", available: true}
	secondary := &fakeGenerator{name: "stability", available: true}
	o := New([]provider.Generator{primary, secondary, provider.NewDiceBear()}, nil, nil, Options{})

	out, err := o.Generate(context.Background(), textRequest(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Provider != "gemini" {
		t.Fatalf("provider = %s, want gemini", out.Provider)
	}
	if secondary.calls.Load() != 0 {
		t.Fatalf("secondary was called despite primary success")
	}
}

func TestTextPathIsTotalUnderVendorOutage(t *testing.T) {
	// Every configured vendor fails with quota/unavailable; the fallback
	// must still return a valid artifact.
	primary := &fakeGenerator{name: "gemini", available: true, err: quotaErr("gemini")}
	secondary := &fakeGenerator{name: "stability", available: false}
	o := New([]provider.Generator{primary, secondary, provider.NewDiceBear()}, nil, nil, Options{})

	out, err := o.Generate(context.Background(), textRequest(), false)
	if err != nil {
		t.Fatalf("text path must never fail: %v", err)
	}
	if out.Provider != "dicebear" {
		t.Fatalf("provider = %s, want dicebear fallback", out.Provider)
	}
	if out.ImageURL == "" {
		t.Fatal("fallback returned empty image URL")
	}
	if secondary.calls.Load() != 0 {
		t.Fatal("unavailable adapter must not be invoked")
	}
}

func TestTextPathNoRetryOnQuota(t *testing.T) {
	primary := &fakeGenerator{name: "gemini", available: true, err: quotaErr("gemini")}
	o := New([]provider.Generator{primary, provider.NewDiceBear()}, nil, nil, Options{})

	if _, err := o.Generate(context.Background(), textRequest(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := primary.calls.Load(); got != 1 {
		t.Fatalf("quota failure retried: %d calls", got)
	}
}

func TestPhotoPathUnavailableWhenNoTransformerConfigured(t *testing.T) {
	req := textRequest()
	req.UploadedImageURL = "https://cdn.test/me.png"

	unconfigured := &fakeTransformer{name: "replicate", available: false}
	o := New([]provider.Generator{provider.NewDiceBear()}, []provider.PhotoTransformer{unconfigured}, nil, Options{})

	_, err := o.Generate(context.Background(), req, false)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if unconfigured.calls.Load() != 0 {
		t.Fatal("unconfigured transformer must not be invoked")
	}
}

func TestPhotoPathNeverSubstitutesFallback(t *testing.T) {
	req := textRequest()
	req.UploadedImageURL = "https://cdn.test/me.png"

	// Even with the fallback generator configured, a photo request with no
	// image-capable adapter must fail, not silently degrade.
	o := New([]provider.Generator{provider.NewDiceBear()}, nil, nil, Options{})

	out, err := o.Generate(context.Background(), req, false)
	if err == nil {
		t.Fatalf("photo path returned %+v without an image-capable adapter", out)
	}
}

func TestVariationFailuresAreDropped(t *testing.T) {
	req := textRequest()
	req.UploadedImageURL = "https://cdn.test/me.png"

	tr := &fakeTransformer{
		name:      "replicate",
		available: true,
		failFor:   map[string]bool{"cyberpunk": true},
	}
	o := New(nil, []provider.PhotoTransformer{tr}, nil, Options{VariationCount: 4})

	out, err := o.Generate(context.Background(), req, true)
	if err != nil {
		t.Fatalf("parent generation failed: %v", err)
	}
	if len(out.Variations) != 3 {
		t.Fatalf("variations = %d, want 3 (one dropped)", len(out.Variations))
	}
	for _, v := range out.Variations {
		if v.Style == "cyberpunk" {
			t.Fatal("failed variation present in output")
		}
	}
}

func TestStandaloneVariations(t *testing.T) {
	tr := &fakeTransformer{name: "replicate", available: true}
	o := New(nil, []provider.PhotoTransformer{tr}, nil, Options{VariationCount: 4})

	got, err := o.Variations(context.Background(), "https://cdn.test/me.png")
	if err != nil {
		t.Fatalf("Variations: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("variations = %d, want 4", len(got))
	}

	unconfigured := &fakeTransformer{name: "replicate", available: false}
	none := New(nil, []provider.PhotoTransformer{unconfigured}, nil, Options{})
	if _, err := none.Variations(context.Background(), "https://cdn.test/me.png"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

type recordingEnhancer struct{ calls int }

func (r *recordingEnhancer) Enhance(ctx context.Context, p string) string {
	r.calls++
	return p + " (enriched)"
}

func TestEnhancementAppliedOnTextPath(t *testing.T) {
	enh := &recordingEnhancer{}
	o := New([]provider.Generator{provider.NewDiceBear()}, nil, enh, Options{})

	out, err := o.Generate(context.Background(), textRequest(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enh.calls != 1 {
		t.Fatalf("enhancer calls = %d, want 1", enh.calls)
	}
	if !strings.Contains(out.Prompt, "enriched") {
		t.Fatalf("enhanced prompt not used: %q", out.Prompt)
	}
}
