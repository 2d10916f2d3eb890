package service

import (
	"context"
	"errors"
	"fmt"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/generator"
	"aura_avatar/internal/imageproc"
	"aura_avatar/internal/logger"
	"aura_avatar/internal/prompt"

	"github.com/google/uuid"
)

// UserGetter is the slice of the user repository the generation flow needs.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AvatarCreator persists a generated avatar and optionally spends a credit
// in the same transaction.
type AvatarCreator interface {
	CreateWithCredit(ctx context.Context, a *domain.Avatar, spendCredit bool) (int, error)
}

// ImageGenerator runs the provider fallback chain.
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.AvatarRequest, wantVariations bool) (*generator.Outcome, error)
	Variations(ctx context.Context, imageURL string) ([]domain.Variation, error)
}

// BackgroundRemover cuts the subject out of a hosted image. May be nil.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) (string, error)
}

// BlobStore uploads image bytes and returns a public URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Deriver produces the social-format derivatives for premium photo avatars.
type Deriver interface {
	Derive(ctx context.Context, avatarID, imageURL string, imageData []byte) map[string]string
}

// PromptEnhancer rewrites a prompt; implementations return the input
// unchanged on failure.
type PromptEnhancer interface {
	Enhance(ctx context.Context, p string) string
}

// FeedPublisher pushes new public avatars to the live feed. May be nil.
type FeedPublisher interface {
	PublishAvatar(a *domain.Avatar)
}

// GenerationResult is a created avatar plus the credit balance after the
// spend. Remaining is -1 for premium users, who do not spend credits.
type GenerationResult struct {
	Avatar    *domain.Avatar
	Remaining int
}

// GenerationService owns the end-to-end generation flow: entitlement checks,
// the provider chain, storage, derivatives and the atomic persist+spend.
type GenerationService struct {
	users     UserGetter
	avatars   AvatarCreator
	gen       ImageGenerator
	store     BlobStore
	deriver   Deriver
	enhancer  PromptEnhancer
	bgRemover BackgroundRemover
	feed      FeedPublisher
}

func NewGenerationService(users UserGetter, avatars AvatarCreator, gen ImageGenerator, store BlobStore, deriver Deriver, enhancer PromptEnhancer, bgRemover BackgroundRemover, feed FeedPublisher) *GenerationService {
	return &GenerationService{
		users:     users,
		avatars:   avatars,
		gen:       gen,
		store:     store,
		deriver:   deriver,
		enhancer:  enhancer,
		bgRemover: bgRemover,
		feed:      feed,
	}
}

// Generate validates the request, enforces entitlements, runs the provider
// chain and persists the result. Entitlement failures happen before any
// provider is called, so a rejected request never consumes vendor quota.
func (s *GenerationService) Generate(ctx context.Context, userID int64, req domain.AvatarRequest) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Premium {
		if user.Credits <= 0 {
			return nil, domain.ErrNoCredits
		}
		if req.Size != "512" {
			return nil, domain.ErrSizeRequiresPremium
		}
	}

	out, err := s.gen.Generate(ctx, req, user.Premium)
	if err != nil {
		if errors.Is(err, generator.ErrUnavailable) {
			return nil, domain.ErrGenerationUnavailable
		}
		return nil, err
	}

	avatarID := uuid.NewString()
	urls, err := s.storeImage(ctx, avatarID, out)
	if err != nil {
		return nil, err
	}

	if user.Premium && req.UploadedImageURL != "" && s.deriver != nil {
		for name, url := range s.deriver.Derive(ctx, avatarID, urls[domain.URLNormal], out.ImageData) {
			urls[name] = url
		}
	}

	avatar := &domain.Avatar{
		ID:         avatarID,
		UserID:     user.ID,
		UserName:   user.DisplayName,
		UserPhoto:  user.PhotoURL,
		Prompt:     out.Prompt,
		Provider:   out.Provider,
		URLs:       urls,
		Variations: out.Variations,
		Size:       req.Size,
		Premium:    user.Premium,
		Public:     true,
		Hashtags:   prompt.Hashtags(req.ArtStyle, req.Gender, req.Age),
	}

	remaining, err := s.avatars.CreateWithCredit(ctx, avatar, !user.Premium)
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.PublishAvatar(avatar)
	}

	return &GenerationResult{Avatar: avatar, Remaining: remaining}, nil
}

// storeImage uploads the chosen image (and a thumbnail) when the provider
// returned raw bytes. Providers that return hosted URLs are used as-is.
func (s *GenerationService) storeImage(ctx context.Context, avatarID string, out *generator.Outcome) (map[string]string, error) {
	urls := map[string]string{
		domain.URLNormal:    out.ImageURL,
		domain.URLThumbnail: out.ImageURL,
	}

	if len(out.ImageData) == 0 || s.store == nil {
		return urls, nil
	}

	normal, err := s.store.Upload(ctx, fmt.Sprintf("avatars/%s/%s.png", avatarID, domain.URLNormal), out.ImageData)
	if err != nil {
		return nil, fmt.Errorf("store avatar image: %w", err)
	}
	urls[domain.URLNormal] = normal
	urls[domain.URLThumbnail] = normal

	thumb, err := imageproc.Thumbnail(out.ImageData, 256)
	if err != nil {
		logger.Warn("thumbnail generation failed, using full image", "avatar_id", avatarID, "error", err)
		return urls, nil
	}
	thumbURL, err := s.store.Upload(ctx, fmt.Sprintf("avatars/%s/%s.png", avatarID, domain.URLThumbnail), thumb)
	if err != nil {
		logger.Warn("thumbnail upload failed, using full image", "avatar_id", avatarID, "error", err)
		return urls, nil
	}
	urls[domain.URLThumbnail] = thumbURL

	return urls, nil
}

// Variations renders alternate styles for an existing hosted image. A
// premium perk, same as the variations produced during generation.
func (s *GenerationService) Variations(ctx context.Context, userID int64, imageURL string) ([]domain.Variation, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Premium {
		return nil, domain.ErrPremiumRequired
	}

	variations, err := s.gen.Variations(ctx, imageURL)
	if err != nil {
		if errors.Is(err, generator.ErrUnavailable) {
			return nil, domain.ErrGenerationUnavailable
		}
		return nil, err
	}
	return variations, nil
}

// RemoveBackground cuts the subject out of a hosted image. Like the photo
// path, there is no degraded substitute for a failed edit.
func (s *GenerationService) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	if s.bgRemover == nil {
		return "", domain.ErrGenerationUnavailable
	}
	url, err := s.bgRemover.RemoveBackground(ctx, imageURL)
	if err != nil {
		logger.Warn("background removal failed", "error", err)
		return "", domain.ErrGenerationUnavailable
	}
	return url, nil
}

// EnhancePrompt rewrites a raw prompt into a richer one. It never fails:
// without an enhancer, or on enhancer error, the input comes back unchanged.
func (s *GenerationService) EnhancePrompt(ctx context.Context, p string) string {
	if s.enhancer == nil {
		return p
	}
	return s.enhancer.Enhance(ctx, p)
}
