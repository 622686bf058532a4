package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	maxNameLen   = 50
	minPassword  = 8
	maxAvatarLen = 2048
)

// Service exposes account workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (UserView, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	GoogleAuthURL(ctx context.Context, state, codeChallenge string) (string, error)
	LoginWithGoogle(ctx context.Context, code, codeVerifier string) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Profile(ctx context.Context, userID string) (UserView, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserView, error)
	Logout(ctx context.Context, userID string) error
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return UserView{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", err)
	}
	name, err := normalizeName(req.Name)
	if err != nil {
		return UserView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
	}
	if len(req.Password) < minPassword {
		return UserView{}, apperrors.Wrap(CodeInvalidInput, fmt.Sprintf("password must be at least %d characters", minPassword), nil)
	}
	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return UserView{}, apperrors.Wrap(CodeInternal, "failed to check user", err)
	} else if exists {
		return UserView{}, apperrors.Wrap(CodeEmailExists, "email already registered", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, apperrors.Wrap(CodeInternal, "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, NewUser{Email: email, Name: name, PasswordHash: string(hashed)})
	if err != nil {
		return UserView{}, s.createError(err)
	}
	s.logger.Info("user registered", "userId", user.ID)
	return toView(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "invalid email address", err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidInput, "password cannot be empty", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInternal, "failed to fetch user", err)
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
	}
	return s.issueTokens(user)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing", nil)
	}
	return s.parseToken(token, tokenTypeAccess)
}

func (s *service) Profile(ctx context.Context, userID string) (UserView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toView(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	name, avatar := user.Name, user.Avatar
	if req.Name != nil {
		if name, err = normalizeName(*req.Name); err != nil {
			return UserView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
		}
	}
	if req.Avatar != nil {
		if avatar, err = normalizeAvatar(*req.Avatar); err != nil {
			return UserView{}, apperrors.Wrap(CodeInvalidInput, err.Error(), nil)
		}
	}
	updated, err := s.repo.UpdateProfile(ctx, user.ID, name, avatar)
	if err != nil {
		return UserView{}, apperrors.Wrap(CodeInternal, "failed to update profile", err)
	}
	return toView(updated), nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return LoginResponse{}, err
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.issueTokens(user)
}

func (s *service) loadUser(ctx context.Context, userID string) (User, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, apperrors.Wrap(CodeInternal, "failed to load user", err)
	}
	if !found {
		return User{}, apperrors.Wrap(CodeUserNotFound, "user not found", nil)
	}
	return user, nil
}

func (s *service) createError(err error) error {
	if errors.Is(err, ErrEmailExists) {
		return apperrors.Wrap(CodeEmailExists, "email already registered", err)
	}
	return apperrors.Wrap(CodeInternal, "failed to create user", err)
}

func (s *service) issueTokens(user User) (LoginResponse, error) {
	access, err := s.signToken(user, tokenTypeAccess, s.cfg.TokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Token: access, RefreshToken: refresh, User: toView(user)}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

func (s *service) signToken(user User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap(CodeInternal, "failed to sign token", err)
	}
	return signed, nil
}

// parseToken verifies signature, expiry and token type.
func (s *service) parseToken(token, wantType string) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token validation failed", err)
	}
	if claims.TokenType != wantType {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token type mismatch", nil)
	}
	if claims.Subject == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing subject", nil)
	}
	return Claims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func toView(user User) UserView {
	sub := user.Subscription
	if sub == "" {
		sub = SubscriptionFree
	}
	return UserView{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Avatar:       user.Avatar,
		Subscription: sub,
		CreatedAt:    user.CreatedAt,
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}

func normalizeName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", errors.New("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("name cannot exceed %d characters", maxNameLen)
	}
	return name, nil
}

// normalizeAvatar accepts an empty value (clears the avatar) or an absolute http(s) URL.
func normalizeAvatar(raw string) (string, error) {
	avatar := strings.TrimSpace(raw)
	if avatar == "" {
		return "", nil
	}
	if len(avatar) > maxAvatarLen {
		return "", errors.New("avatar url too long")
	}
	u, err := url.Parse(avatar)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", errors.New("avatar must be an http(s) url")
	}
	return avatar, nil
}

func newTokenID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
