package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/generator"
)

// memDB stands in for the user and avatar repositories with the same
// decrement-if-positive spend semantics the real transaction has.
type memDB struct {
	mu      sync.Mutex
	user    domain.User
	created []domain.Avatar
}

func (m *memDB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.user.ID {
		return nil, domain.ErrUserNotFound
	}
	u := m.user
	return &u, nil
}

func (m *memDB) CreateWithCredit(ctx context.Context, a *domain.Avatar, spendCredit bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if spendCredit {
		if m.user.Credits <= 0 {
			return 0, domain.ErrNoCredits
		}
		m.user.Credits--
	}
	m.created = append(m.created, *a)
	if !spendCredit {
		return -1, nil
	}
	return m.user.Credits, nil
}

type fakeGen struct {
	calls int32
	out   generator.Outcome
	err   error
}

func (f *fakeGen) Generate(ctx context.Context, req domain.AvatarRequest, wantVariations bool) (*generator.Outcome, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := f.out
	return &out, nil
}

func (f *fakeGen) Variations(ctx context.Context, imageURL string) ([]domain.Variation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.out.Variations, nil
}

type fakeDeriver struct {
	calls int32
	urls  map[string]string
}

func (f *fakeDeriver) Derive(ctx context.Context, avatarID, imageURL string, imageData []byte) map[string]string {
	atomic.AddInt32(&f.calls, 1)
	return f.urls
}

func validRequest() domain.AvatarRequest {
	return domain.AvatarRequest{
		Gender:   "female",
		Age:      "young adult",
		ArtStyle: "anime",
		Size:     "512",
	}
}

func newTestService(db *memDB, gen *fakeGen, deriver *fakeDeriver) *GenerationService {
	var d Deriver
	if deriver != nil {
		d = deriver
	}
	return NewGenerationService(db, db, gen, nil, d, nil, nil, nil)
}

func TestGenerateSpendsOneCredit(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "https://img/x.png", Provider: "gemini", Prompt: "p"}}
	svc := newTestService(db, gen, nil)

	res, err := svc.Generate(context.Background(), 1, validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", res.Remaining)
	}
	if res.Avatar.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", res.Avatar.Provider)
	}
	if len(db.created) != 1 {
		t.Fatalf("created %d avatars, want 1", len(db.created))
	}
}

func TestGenerateNoCreditsRejectedBeforeProviderCall(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 0}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u"}}
	svc := newTestService(db, gen, nil)

	_, err := svc.Generate(context.Background(), 1, validRequest())
	if !errors.Is(err, domain.ErrNoCredits) {
		t.Fatalf("err = %v, want ErrNoCredits", err)
	}
	if n := atomic.LoadInt32(&gen.calls); n != 0 {
		t.Errorf("provider called %d times before entitlement rejection, want 0", n)
	}
}

func TestGenerateNoCreditsWinsOverSizeGate(t *testing.T) {
	// A broke free user asking for a premium size is told about the
	// credits first; that is the check the upgrade flow hangs off.
	db := &memDB{user: domain.User{ID: 1, Credits: 0}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u"}}
	svc := newTestService(db, gen, nil)

	req := validRequest()
	req.Size = "1024"
	_, err := svc.Generate(context.Background(), 1, req)
	if !errors.Is(err, domain.ErrNoCredits) {
		t.Fatalf("err = %v, want ErrNoCredits", err)
	}
	if n := atomic.LoadInt32(&gen.calls); n != 0 {
		t.Errorf("provider called %d times, want 0", n)
	}
}

func TestGenerateSizeRequiresPremium(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u"}}
	svc := newTestService(db, gen, nil)

	req := validRequest()
	req.Size = "2048"
	_, err := svc.Generate(context.Background(), 1, req)
	if !errors.Is(err, domain.ErrSizeRequiresPremium) {
		t.Fatalf("err = %v, want ErrSizeRequiresPremium", err)
	}
	if n := atomic.LoadInt32(&gen.calls); n != 0 {
		t.Errorf("provider called %d times, want 0", n)
	}
}

func TestGeneratePremiumDoesNotSpend(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3, Premium: true}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u", Provider: "stability"}}
	svc := newTestService(db, gen, nil)

	req := validRequest()
	req.Size = "2048"
	res, err := svc.Generate(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Remaining != -1 {
		t.Errorf("remaining = %d, want -1 for premium", res.Remaining)
	}
	if db.user.Credits != 3 {
		t.Errorf("credits = %d, want untouched 3", db.user.Credits)
	}
}

func TestGenerateConcurrentSpendNeverOverdraws(t *testing.T) {
	const credits, attempts = 3, 8

	db := &memDB{user: domain.User{ID: 1, Credits: credits}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u", Provider: "gemini"}}
	svc := newTestService(db, gen, nil)

	var wg sync.WaitGroup
	var ok, denied int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Generate(context.Background(), 1, validRequest())
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrNoCredits):
				atomic.AddInt32(&denied, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != credits {
		t.Errorf("%d generations succeeded, want exactly %d", ok, credits)
	}
	if ok+denied != attempts {
		t.Errorf("ok+denied = %d, want %d", ok+denied, attempts)
	}
	if db.user.Credits != 0 {
		t.Errorf("final credits = %d, want 0", db.user.Credits)
	}
}

func TestGenerateUnavailableMapsToDomainError(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3}}
	gen := &fakeGen{err: generator.ErrUnavailable}
	svc := newTestService(db, gen, nil)

	req := validRequest()
	req.UploadedImageURL = "https://img/photo.jpg"
	_, err := svc.Generate(context.Background(), 1, req)
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
	if len(db.created) != 0 {
		t.Errorf("created %d avatars on failure, want 0", len(db.created))
	}
}

func TestGenerateDerivativesOnlyForPremiumPhoto(t *testing.T) {
	derived := map[string]string{
		domain.URLProfile: "https://img/profile.png",
		domain.URLStory:   "https://img/story.png",
		domain.URLPost:    "https://img/post.png",
		domain.URLHD:      "https://img/hd.png",
	}

	tests := []struct {
		name       string
		premium    bool
		photo      string
		wantDerive bool
	}{
		{"premium photo", true, "https://img/selfie.jpg", true},
		{"premium text", true, "", false},
		{"free photo", false, "https://img/selfie.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &memDB{user: domain.User{ID: 1, Credits: 3, Premium: tt.premium}}
			gen := &fakeGen{out: generator.Outcome{ImageURL: "u", Provider: "replicate"}}
			deriver := &fakeDeriver{urls: derived}
			svc := newTestService(db, gen, deriver)

			req := validRequest()
			req.UploadedImageURL = tt.photo
			res, err := svc.Generate(context.Background(), 1, req)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}

			called := atomic.LoadInt32(&deriver.calls) > 0
			if called != tt.wantDerive {
				t.Fatalf("deriver called = %v, want %v", called, tt.wantDerive)
			}
			if tt.wantDerive {
				for name, url := range derived {
					if res.Avatar.URLs[name] != url {
						t.Errorf("URLs[%q] = %q, want %q", name, res.Avatar.URLs[name], url)
					}
				}
			}
		})
	}
}

type fakeBGRemover struct {
	url string
	err error
}

func (f *fakeBGRemover) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func TestVariationsRequirePremium(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3}}
	gen := &fakeGen{out: generator.Outcome{Variations: []domain.Variation{{Style: "cyberpunk", URL: "u"}}}}
	svc := newTestService(db, gen, nil)

	_, err := svc.Variations(context.Background(), 1, "https://img/me.png")
	if !errors.Is(err, domain.ErrPremiumRequired) {
		t.Fatalf("err = %v, want ErrPremiumRequired", err)
	}
	if n := atomic.LoadInt32(&gen.calls); n != 0 {
		t.Errorf("provider called %d times, want 0", n)
	}

	db.user.Premium = true
	got, err := svc.Variations(context.Background(), 1, "https://img/me.png")
	if err != nil {
		t.Fatalf("Variations: %v", err)
	}
	if len(got) != 1 || got[0].Style != "cyberpunk" {
		t.Errorf("variations = %+v", got)
	}
}

func TestVariationsUnavailableMapsToDomainError(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Premium: true}}
	gen := &fakeGen{err: generator.ErrUnavailable}
	svc := newTestService(db, gen, nil)

	_, err := svc.Variations(context.Background(), 1, "https://img/me.png")
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
}

func TestRemoveBackground(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1}}
	gen := &fakeGen{}

	// No adapter configured.
	svc := newTestService(db, gen, nil)
	if _, err := svc.RemoveBackground(context.Background(), "https://img/me.png"); !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}

	// Adapter failure is never surfaced as a raw vendor error.
	svc = NewGenerationService(db, db, gen, nil, nil, nil, &fakeBGRemover{err: errors.New("quota")}, nil)
	if _, err := svc.RemoveBackground(context.Background(), "https://img/me.png"); !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}

	svc = NewGenerationService(db, db, gen, nil, nil, nil, &fakeBGRemover{url: "https://img/cutout.png"}, nil)
	url, err := svc.RemoveBackground(context.Background(), "https://img/me.png")
	if err != nil {
		t.Fatalf("RemoveBackground: %v", err)
	}
	if url != "https://img/cutout.png" {
		t.Errorf("url = %q", url)
	}
}

func TestGenerateInvalidRequest(t *testing.T) {
	db := &memDB{user: domain.User{ID: 1, Credits: 3}}
	gen := &fakeGen{out: generator.Outcome{ImageURL: "u"}}
	svc := newTestService(db, gen, nil)

	req := validRequest()
	req.Size = "800"
	if _, err := svc.Generate(context.Background(), 1, req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
