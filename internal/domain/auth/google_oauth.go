package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

const (
	googleProvider  = "google"
	googleIssuerURL = "https://accounts.google.com"
	googleRevokeURL = "https://oauth2.googleapis.com/revoke"
)

type googleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

func (s *service) GoogleAuthURL(_ context.Context, state, codeChallenge string) (string, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// LoginWithGoogle exchanges the authorization code, verifies the id token and
// signs in the linked account, creating one on first use.
func (s *service) LoginWithGoogle(ctx context.Context, code, codeVerifier string) (LoginResponse, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return LoginResponse{}, err
	}
	seal, err := newSealer(s.cfg.Google.TokenEncryptionKey)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeNotConfigured, "google token encryption key is invalid", err)
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(codeVerifier) == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "missing oauth code or verifier", nil)
	}
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeOAuthFailed, "failed to exchange oauth code", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return LoginResponse{}, apperrors.Wrap(CodeOAuthFailed, "missing id_token in oauth response", nil)
	}
	claims, err := s.verifyGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		return LoginResponse{}, err
	}
	if !claims.EmailVerified {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "google account email not verified", nil)
	}
	return s.signInGoogle(ctx, seal, claims, token.RefreshToken)
}

func (s *service) signInGoogle(ctx context.Context, seal sealer, claims googleClaims, refreshToken string) (LoginResponse, error) {
	email, err := normalizeEmail(claims.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", err)
	}
	if claims.Subject == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidToken, "missing google subject", nil)
	}

	identity, found, err := s.repo.GetIdentity(ctx, googleProvider, claims.Subject)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInternal, "failed to fetch identity", err)
	}
	if found {
		user, err := s.loadUser(ctx, identity.UserID)
		if err != nil {
			return LoginResponse{}, err
		}
		if refreshToken != "" {
			if err := s.saveIdentity(ctx, seal, user.ID, claims, refreshToken); err != nil {
				return LoginResponse{}, err
			}
		}
		return s.issueTokens(user)
	}

	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInternal, "failed to check existing user", err)
	} else if exists {
		return LoginResponse{}, apperrors.Wrap(CodeLinkingDisabled, "account linking by email is not enabled", nil)
	}

	passwordHash, err := randomPasswordHash()
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInternal, "failed to generate password hash", err)
	}
	avatar, _ := normalizeAvatar(claims.Picture)
	user, err := s.repo.Create(ctx, NewUser{
		Email:        email,
		Name:         googleDisplayName(claims),
		Avatar:       avatar,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return LoginResponse{}, s.createError(err)
	}
	if err := s.saveIdentity(ctx, seal, user.ID, claims, refreshToken); err != nil {
		return LoginResponse{}, err
	}
	s.logger.Info("user registered via google", "userId", user.ID)
	return s.issueTokens(user)
}

// Logout revokes the stored Google refresh token, if any. Revocation failures
// are logged and never surface to the caller.
func (s *service) Logout(ctx context.Context, userID string) error {
	identity, found, err := s.repo.GetIdentityByUser(ctx, userID, googleProvider)
	if err != nil {
		return apperrors.Wrap(CodeInternal, "failed to fetch identity", err)
	}
	if !found || identity.RefreshToken == "" {
		return nil
	}
	seal, err := newSealer(s.cfg.Google.TokenEncryptionKey)
	if err != nil {
		s.logger.Warn("google token key unusable, skipping revoke", "error", err)
		return nil
	}
	refreshToken, err := seal.open(identity.RefreshToken)
	if err != nil {
		s.logger.Warn("failed to decrypt google refresh token", "error", err)
		return nil
	}
	if err := revokeGoogleToken(ctx, refreshToken); err != nil {
		s.logger.Warn("failed to revoke google refresh token", "error", err)
	}
	return nil
}

func (s *service) googleOAuthConfig() (*oauth2.Config, error) {
	g := s.cfg.Google
	if strings.TrimSpace(g.ClientID) == "" || strings.TrimSpace(g.ClientSecret) == "" || strings.TrimSpace(g.RedirectURL) == "" {
		return nil, apperrors.Wrap(CodeNotConfigured, "google oauth is not configured", nil)
	}
	if strings.TrimSpace(g.TokenEncryptionKey) == "" {
		return nil, apperrors.Wrap(CodeNotConfigured, "google token encryption key is missing", nil)
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

func (s *service) verifyGoogleIDToken(ctx context.Context, rawToken string) (googleClaims, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuerURL)
	if err != nil {
		return googleClaims{}, apperrors.Wrap(CodeOAuthFailed, "failed to initialize oidc provider", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: s.cfg.Google.ClientID})
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return googleClaims{}, apperrors.Wrap(CodeInvalidToken, "failed to verify id token", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return googleClaims{}, apperrors.Wrap(CodeInvalidToken, "failed to parse id token claims", err)
	}
	if claims.Email == "" {
		return googleClaims{}, apperrors.Wrap(CodeInvalidToken, "missing email in id token", nil)
	}
	return claims, nil
}

func (s *service) saveIdentity(ctx context.Context, seal sealer, userID string, claims googleClaims, refreshToken string) error {
	sealed, err := seal.seal(refreshToken)
	if err != nil {
		return apperrors.Wrap(CodeInternal, "failed to encrypt refresh token", err)
	}
	_, err = s.repo.UpsertIdentity(ctx, Identity{
		UserID:          userID,
		Provider:        googleProvider,
		ProviderSubject: claims.Subject,
		ProviderEmail:   claims.Email,
		RefreshToken:    sealed,
	})
	if err != nil {
		return apperrors.Wrap(CodeInternal, "failed to persist identity", err)
	}
	return nil
}

// googleDisplayName prefers the full name, then the given name, then the
// mailbox part of the address.
func googleDisplayName(claims googleClaims) string {
	for _, candidate := range []string{claims.Name, claims.GivenName, strings.Split(claims.Email, "@")[0]} {
		if name, err := normalizeName(candidate); err == nil {
			return name
		}
		if name := strings.Join(strings.Fields(candidate), " "); name != "" {
			return string([]rune(name)[:maxNameLen])
		}
	}
	return "kai user"
}

func randomPasswordHash() (string, error) {
	raw, err := randomString(32)
	if err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func randomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeFromVerifier computes the PKCE S256 challenge for a verifier.
func CodeChallengeFromVerifier(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func revokeGoogleToken(ctx context.Context, refreshToken string) error {
	form := url.Values{"token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("google revoke returned status %d", resp.StatusCode)
}

// NewOAuthState returns a state, code verifier, and code challenge for PKCE.
func NewOAuthState() (state, codeVerifier, codeChallenge string, err error) {
	if state, err = randomString(32); err != nil {
		return "", "", "", err
	}
	if codeVerifier, err = randomString(32); err != nil {
		return "", "", "", err
	}
	return state, codeVerifier, CodeChallengeFromVerifier(codeVerifier), nil
}
