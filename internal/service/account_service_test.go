package service

import (
	"context"
	"errors"
	"testing"

	"aura_avatar/internal/domain"
)

type memAccounts struct {
	byUID  map[string]*domain.User
	nextID int64
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byUID: make(map[string]*domain.User), nextID: 1}
}

func (m *memAccounts) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range m.byUID {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memAccounts) GetByAuthUID(ctx context.Context, uid string) (*domain.User, error) {
	if u, ok := m.byUID[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memAccounts) Create(ctx context.Context, u *domain.User) error {
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.byUID[u.AuthUID] = &cp
	return nil
}

func (m *memAccounts) Upgrade(ctx context.Context, id int64) error {
	for _, u := range m.byUID {
		if u.ID == id {
			u.Premium = true
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (m *memAccounts) UpdateProfile(ctx context.Context, id int64, displayName, photoURL string) error {
	for _, u := range m.byUID {
		if u.ID == id {
			if displayName != "" {
				u.DisplayName = displayName
			}
			if photoURL != "" {
				u.PhotoURL = photoURL
			}
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type memReferrals struct {
	codes   map[int64]string
	applied map[int64]int64
}

func newMemReferrals() *memReferrals {
	return &memReferrals{codes: make(map[int64]string), applied: make(map[int64]int64)}
}

func (m *memReferrals) GetOrCreateCode(ctx context.Context, userID int64, code string) (string, error) {
	if existing, ok := m.codes[userID]; ok {
		return existing, nil
	}
	m.codes[userID] = code
	return code, nil
}

func (m *memReferrals) Apply(ctx context.Context, referredID int64, code string, award int) (*domain.Referral, error) {
	var referrerID int64
	for id, c := range m.codes {
		if c == code {
			referrerID = id
		}
	}
	if referrerID == 0 || referrerID == referredID {
		return nil, domain.ErrInvalidReferralCode
	}
	if _, ok := m.applied[referredID]; ok {
		return nil, domain.ErrAlreadyReferred
	}
	m.applied[referredID] = referrerID
	return &domain.Referral{ReferrerID: referrerID, ReferredID: referredID, CreditsAwarded: award}, nil
}

func (m *memReferrals) ListByReferrer(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	var refs []domain.Referral
	for referred, referrer := range m.applied {
		if referrer == referrerID {
			refs = append(refs, domain.Referral{ReferrerID: referrerID, ReferredID: referred})
		}
	}
	return refs, nil
}

func TestAuthenticateCreatesWithFreeCredits(t *testing.T) {
	svc := NewAccountService(newMemAccounts(), newMemReferrals(), 3, 5)

	u, err := svc.Authenticate(context.Background(), AuthProfile{UID: "uid-1", DisplayName: "nova"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Credits != 3 {
		t.Errorf("credits = %d, want 3", u.Credits)
	}
	if u.Premium {
		t.Error("new account must not be premium")
	}
}

func TestAuthenticateReturnsExistingAccount(t *testing.T) {
	accounts := newMemAccounts()
	svc := NewAccountService(accounts, newMemReferrals(), 3, 5)

	first, err := svc.Authenticate(context.Background(), AuthProfile{UID: "uid-1"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	second, err := svc.Authenticate(context.Background(), AuthProfile{UID: "uid-1"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if len(accounts.byUID) != 1 {
		t.Errorf("created %d accounts, want 1", len(accounts.byUID))
	}
}

func TestUpgradeIsIdempotent(t *testing.T) {
	accounts := newMemAccounts()
	svc := NewAccountService(accounts, newMemReferrals(), 3, 5)

	u, _ := svc.Authenticate(context.Background(), AuthProfile{UID: "uid-1"})
	for i := 0; i < 2; i++ {
		upgraded, err := svc.Upgrade(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("Upgrade #%d: %v", i+1, err)
		}
		if !upgraded.Premium {
			t.Fatalf("premium = false after upgrade #%d", i+1)
		}
	}
}

func TestUpdateProfileChangesOnlyProvidedFields(t *testing.T) {
	accounts := newMemAccounts()
	svc := NewAccountService(accounts, newMemReferrals(), 3, 5)

	u, _ := svc.Authenticate(context.Background(), AuthProfile{UID: "uid-1", DisplayName: "nova", PhotoURL: "https://img/old.png"})

	updated, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{DisplayName: "supernova"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.DisplayName != "supernova" {
		t.Errorf("display_name = %q, want supernova", updated.DisplayName)
	}
	if updated.PhotoURL != "https://img/old.png" {
		t.Errorf("photo_url = %q, want unchanged", updated.PhotoURL)
	}

	if _, err := svc.UpdateProfile(context.Background(), 99, ProfileUpdate{DisplayName: "x"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestReferralCodeIsStable(t *testing.T) {
	svc := NewAccountService(newMemAccounts(), newMemReferrals(), 3, 5)

	first, err := svc.ReferralCode(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReferralCode: %v", err)
	}
	second, err := svc.ReferralCode(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReferralCode: %v", err)
	}
	if first != second {
		t.Errorf("code changed between calls: %q vs %q", first, second)
	}
}

func TestApplyReferral(t *testing.T) {
	refs := newMemReferrals()
	svc := NewAccountService(newMemAccounts(), refs, 3, 5)

	code, _ := svc.ReferralCode(context.Background(), 1)

	ref, err := svc.ApplyReferral(context.Background(), 2, code)
	if err != nil {
		t.Fatalf("ApplyReferral: %v", err)
	}
	if ref.ReferrerID != 1 || ref.CreditsAwarded != 5 {
		t.Errorf("referral = %+v", ref)
	}

	if _, err := svc.ApplyReferral(context.Background(), 2, code); !errors.Is(err, domain.ErrAlreadyReferred) {
		t.Errorf("second apply err = %v, want ErrAlreadyReferred", err)
	}
	if _, err := svc.ApplyReferral(context.Background(), 1, code); !errors.Is(err, domain.ErrInvalidReferralCode) {
		t.Errorf("self-referral err = %v, want ErrInvalidReferralCode", err)
	}
	if _, err := svc.ApplyReferral(context.Background(), 3, ""); !errors.Is(err, domain.ErrInvalidReferralCode) {
		t.Errorf("empty code err = %v, want ErrInvalidReferralCode", err)
	}
}
