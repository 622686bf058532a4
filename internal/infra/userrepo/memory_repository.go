package userrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/kai-insight/internal/domain/auth"
)

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]auth.User
	emailIndex map[string]string
	identities map[string]auth.Identity
	userIndex  map[string]string
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]auth.User),
		emailIndex: make(map[string]string),
		identities: make(map[string]auth.Identity),
		userIndex:  make(map[string]string),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, in auth.NewUser) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[in.Email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	id, err := uuid.NewV7()
	if err != nil {
		return auth.User{}, err
	}
	now := time.Now().UTC()
	user := auth.User{
		ID:           id.String(),
		Email:        in.Email,
		Name:         in.Name,
		Avatar:       in.Avatar,
		Subscription: auth.SubscriptionFree,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	r.emailIndex[in.Email] = user.ID
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id, name, avatar string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return auth.User{}, fmt.Errorf("user %s not found", id)
	}
	user.Name = name
	user.Avatar = avatar
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

// GetIdentity returns an identity by provider and subject.
func (r *MemoryRepository) GetIdentity(_ context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[identityKey(provider, providerSubject)]
	return identity, ok, nil
}

// GetIdentityByUser returns an identity by user and provider.
func (r *MemoryRepository) GetIdentityByUser(_ context.Context, userID, provider string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.userIndex[identityKey(provider, userID)]
	if !ok {
		return auth.Identity{}, false, nil
	}
	return r.identities[key], true, nil
}

// UpsertIdentity stores or updates the identity mapping. Empty token and
// email fields keep their stored values.
func (r *MemoryRepository) UpsertIdentity(_ context.Context, identity auth.Identity) (auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if identity.UserID == "" {
		return auth.Identity{}, errors.New("userID is required")
	}
	key := identityKey(identity.Provider, identity.ProviderSubject)
	now := time.Now().UTC()
	if existing, ok := r.identities[key]; ok {
		if identity.RefreshToken != "" {
			existing.RefreshToken = identity.RefreshToken
		}
		if identity.ProviderEmail != "" {
			existing.ProviderEmail = identity.ProviderEmail
		}
		existing.UpdatedAt = now
		r.identities[key] = existing
		return existing, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return auth.Identity{}, err
	}
	identity.ID = id.String()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	r.identities[key] = identity
	r.userIndex[identityKey(identity.Provider, identity.UserID)] = key
	return identity, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)

func identityKey(provider, subject string) string {
	return provider + ":" + subject
}
