package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

func newTestService(repo Repository) *service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Google:          GoogleConfig{TokenEncryptionKey: testEncryptionKey},
	}, repo, newTestLogger()).(*service)
}

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	view, err := svc.Register(ctx, RegisterRequest{
		Email:    "User@Example.com",
		Password: "pass1234",
		Name:     "  Ada   Lovelace ",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "Ada Lovelace", view.Name)
	require.Equal(t, SubscriptionFree, view.Subscription)
	require.NotEmpty(t, view.ID)

	resp, err := svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "pass1234"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.Equal(t, view.Email, claims.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	refreshed, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "Ada Lovelace", refreshed.User.Name)
}

func TestService_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "pass1234", Name: "One"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "pass12345", Name: "Two"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeEmailExists))
}

func TestService_RegisterValidation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "empty email", req: RegisterRequest{Password: "pass1234", Name: "Ada"}},
		{name: "display form email", req: RegisterRequest{Email: "Ada <ada@example.com>", Password: "pass1234", Name: "Ada"}},
		{name: "short password", req: RegisterRequest{Email: "ada@example.com", Password: "short", Name: "Ada"}},
		{name: "blank name", req: RegisterRequest{Email: "ada@example.com", Password: "pass1234", Name: "   "}},
		{name: "long name", req: RegisterRequest{Email: "ada@example.com", Password: "pass1234", Name: strings.Repeat("n", maxNameLen+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(newMemoryRepo())
			_, err := svc.Register(context.Background(), tc.req)
			require.True(t, apperrors.IsCode(err, CodeInvalidInput), "got %v", err)
		})
	}
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "pass1234", Name: "Ada"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
}

func TestService_TokenTypeAndExpiry(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "pass1234", Name: "Ada"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	_, err = svc.Refresh(ctx, resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	_, err = svc.ValidateToken(ctx, "")
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(ctx, resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestService_UpdateProfile(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	view, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "pass1234", Name: "Ada"})
	require.NoError(t, err)

	name := "Ada King"
	avatar := "https://cdn.example.com/ada.png"
	updated, err := svc.UpdateProfile(ctx, view.ID, UpdateProfileRequest{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	require.Equal(t, "Ada King", updated.Name)
	require.Equal(t, avatar, updated.Avatar)

	bad := "javascript:alert(1)"
	_, err = svc.UpdateProfile(ctx, view.ID, UpdateProfileRequest{Avatar: &bad})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))

	none := ""
	updated, err = svc.UpdateProfile(ctx, view.ID, UpdateProfileRequest{Avatar: &none})
	require.NoError(t, err)
	require.Empty(t, updated.Avatar)
	require.Equal(t, "Ada King", updated.Name)

	_, err = svc.UpdateProfile(ctx, "missing", UpdateProfileRequest{Name: &name})
	require.True(t, apperrors.IsCode(err, CodeUserNotFound))
}

func TestService_SignInGoogle(t *testing.T) {
	t.Parallel()
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	seal, err := newSealer(testEncryptionKey)
	require.NoError(t, err)

	claims := googleClaims{
		Subject:       "g-123",
		Email:         "Grace@Example.com",
		EmailVerified: true,
		Name:          "Grace Hopper",
		Picture:       "https://lh3.example.com/grace.png",
	}
	first, err := svc.signInGoogle(ctx, seal, claims, "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", first.User.Email)
	require.Equal(t, "Grace Hopper", first.User.Name)
	require.Equal(t, claims.Picture, first.User.Avatar)

	identity, found, err := repo.GetIdentityByUser(ctx, first.User.ID, googleProvider)
	require.NoError(t, err)
	require.True(t, found)
	require.NotEqual(t, "refresh-1", identity.RefreshToken)
	plain, err := seal.open(identity.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", plain)

	second, err := svc.signInGoogle(ctx, seal, claims, "")
	require.NoError(t, err)
	require.Equal(t, first.User.ID, second.User.ID)

	_, err = svc.Register(ctx, RegisterRequest{Email: "linus@example.com", Password: "pass1234", Name: "Linus"})
	require.NoError(t, err)
	_, err = svc.signInGoogle(ctx, seal, googleClaims{Subject: "g-456", Email: "linus@example.com", EmailVerified: true}, "")
	require.True(t, apperrors.IsCode(err, CodeLinkingDisabled))
}

func TestService_GoogleNotConfigured(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())

	_, err := svc.GoogleAuthURL(context.Background(), "state", "challenge")
	require.True(t, apperrors.IsCode(err, CodeNotConfigured))

	_, err = svc.LoginWithGoogle(context.Background(), "code", "verifier")
	require.True(t, apperrors.IsCode(err, CodeNotConfigured))
}

func TestService_GoogleAuthURL(t *testing.T) {
	t.Parallel()
	svc := NewService(Config{Google: GoogleConfig{
		ClientID:           "client",
		ClientSecret:       "secret",
		RedirectURL:        "http://localhost:8080/api/v1/auth/google/callback",
		TokenEncryptionKey: testEncryptionKey,
	}}, newMemoryRepo(), newTestLogger())

	link, err := svc.GoogleAuthURL(context.Background(), "st", "ch")
	require.NoError(t, err)
	require.Contains(t, link, "state=st")
	require.Contains(t, link, "code_challenge=ch")
	require.Contains(t, link, "code_challenge_method=S256")
	require.Contains(t, link, "access_type=offline")
}

func TestService_LogoutWithoutIdentity(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemoryRepo())
	require.NoError(t, svc.Logout(context.Background(), "nobody"))
}

func TestSealer(t *testing.T) {
	t.Parallel()
	_, err := newSealer("short")
	require.Error(t, err)

	s, err := newSealer(testEncryptionKey)
	require.NoError(t, err)

	empty, err := s.seal("")
	require.NoError(t, err)
	require.Empty(t, empty)

	sealed, err := s.seal("secret-token")
	require.NoError(t, err)
	again, err := s.seal("secret-token")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again)

	plain, err := s.open(sealed)
	require.NoError(t, err)
	require.Equal(t, "secret-token", plain)

	_, err = s.open("AAAA")
	require.ErrorIs(t, err, errSealedTokenShort)
}

func TestGoogleDisplayName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		claims googleClaims
		want   string
	}{
		{googleClaims{Name: "Grace Hopper", GivenName: "Grace"}, "Grace Hopper"},
		{googleClaims{GivenName: "Grace", Email: "g@example.com"}, "Grace"},
		{googleClaims{Email: "grace.h@example.com"}, "grace.h"},
		{googleClaims{Name: strings.Repeat("x", 60)}, strings.Repeat("x", maxNameLen)},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, googleDisplayName(tc.claims))
	}
}

func TestCodeChallengeFromVerifier(t *testing.T) {
	t.Parallel()
	// RFC 7636 appendix B.
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		CodeChallengeFromVerifier("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	mu         sync.Mutex
	users      map[string]User
	identities map[string]Identity
	seq        int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User), identities: make(map[string]Identity)}
}

func (m *memoryRepo) Create(_ context.Context, in NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == in.Email {
			return User{}, ErrEmailExists
		}
	}
	m.seq++
	now := time.Now()
	user := User{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Email:        in.Email,
		Name:         in.Name,
		Avatar:       in.Avatar,
		Subscription: SubscriptionFree,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, id, name, avatar string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s not found", id)
	}
	u.Name, u.Avatar, u.UpdatedAt = name, avatar, time.Now()
	m.users[id] = u
	return u, nil
}

func (m *memoryRepo) GetIdentity(_ context.Context, provider, subject string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[provider+"|"+subject]
	return id, ok, nil
}

func (m *memoryRepo) GetIdentityByUser(_ context.Context, userID, provider string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.identities {
		if id.UserID == userID && id.Provider == provider {
			return id, true, nil
		}
	}
	return Identity{}, false, nil
}

func (m *memoryRepo) UpsertIdentity(_ context.Context, identity Identity) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := identity.Provider + "|" + identity.ProviderSubject
	if existing, ok := m.identities[key]; ok {
		identity.ID = existing.ID
		identity.CreatedAt = existing.CreatedAt
	} else {
		identity.ID = fmt.Sprintf("identity-%d", len(m.identities)+1)
		identity.CreatedAt = time.Now()
	}
	identity.UpdatedAt = time.Now()
	m.identities[key] = identity
	return identity, nil
}
