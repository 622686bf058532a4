package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Google          GoogleConfig
}

// GoogleConfig holds OAuth settings for Google sign-in.
type GoogleConfig struct {
	ClientID             string
	ClientSecret         string
	RedirectURL          string
	TokenEncryptionKey   string
	PostLoginRedirectURL string
}

// Subscription is the account plan.
type Subscription string

const (
	SubscriptionFree Subscription = "free"
	SubscriptionPro  Subscription = "pro"
)

// User represents a persisted account.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Avatar       string       `json:"avatar,omitempty"`
	Subscription Subscription `json:"subscription"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewUser is the input to Repository.Create.
type NewUser struct {
	Email        string
	Name         string
	Avatar       string
	PasswordHash string
}

// Identity links a user to an external sign-in provider.
type Identity struct {
	ID              string
	UserID          string
	Provider        string
	ProviderSubject string
	ProviderEmail   string
	RefreshToken    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed tokens.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UpdateProfileRequest changes display fields; nil leaves a field as is.
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Avatar       string       `json:"avatar,omitempty"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    string
	Email     string
	TokenType string
	ExpiresAt time.Time
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
