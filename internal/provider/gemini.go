package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"aura_avatar/internal/logger"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"
)

const (
	geminiImageModel   = "imagen-4.0-generate-001"
	geminiEnhanceModel = "gemini-2.5-flash"
)

// Gemini generates avatars with Imagen and offers prompt enhancement via
// gemini-2.5-flash. Enhanced prompts are memoized so repeated trait
// combinations do not spend enhancement quota.
type Gemini struct {
	client   *genai.Client
	enhanced *cache.Cache
}

// NewGemini builds the adapter. An empty API key yields an unconfigured
// adapter that reports Unavailable without network calls.
func NewGemini(ctx context.Context, apiKey string) *Gemini {
	g := &Gemini{enhanced: cache.New(30*time.Minute, 10*time.Minute)}
	if apiKey == "" {
		return g
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Warn("gemini client init failed, adapter disabled", "error", err)
		return g
	}
	g.client = client
	return g
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Available() bool { return g.client != nil }

func (g *Gemini) Generate(ctx context.Context, prompt, negative string, size int) (*Result, error) {
	if g.client == nil {
		return nil, newErr(g.Name(), KindUnavailable, errors.New("GEMINI_API_KEY not configured"))
	}

	// Imagen has no separate negative prompt input; the deny-list travels
	// inside the prompt, the way the vendor documents it.
	full := prompt + " Avoid: " + negative + "."

	resp, err := g.client.Models.GenerateImages(ctx, geminiImageModel, full, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, newErr(g.Name(), classifyGeminiErr(err), err)
	}

	if len(resp.GeneratedImages) == 0 {
		return nil, newErr(g.Name(), KindEmptyResult, errors.New("no image generated"))
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		return nil, newErr(g.Name(), KindEmptyResult, errors.New("no image data in response"))
	}

	return &Result{ImageData: img.ImageBytes}, nil
}

// Enhance rewrites the prompt into a richer one. On any failure the original
// prompt comes back unchanged; enhancement is never critical.
func (g *Gemini) Enhance(ctx context.Context, prompt string) string {
	if g.client == nil {
		return prompt
	}
	if v, ok := g.enhanced.Get(prompt); ok {
		return v.(string)
	}

	instruction := "Rewrite the following avatar description into a richer, more detailed prompt for an AI image generator. Keep it under 120 words and reply with the prompt only.\n\n" + prompt
	resp, err := g.client.Models.GenerateContent(ctx, geminiEnhanceModel, genai.Text(instruction), nil)
	if err != nil {
		logger.Warn("prompt enhancement failed", "error", err)
		return prompt
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return prompt
	}

	g.enhanced.Set(prompt, out, cache.DefaultExpiration)
	return out
}

func classifyGeminiErr(err error) ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429"):
		return KindQuota
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "permission"):
		return KindAuth
	default:
		return KindNetwork
	}
}
