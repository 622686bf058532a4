package auth

import "context"

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, user NewUser) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	UpdateProfile(ctx context.Context, id, name, avatar string) (User, error)
	GetIdentity(ctx context.Context, provider, providerSubject string) (Identity, bool, error)
	GetIdentityByUser(ctx context.Context, userID, provider string) (Identity, bool, error)
	UpsertIdentity(ctx context.Context, identity Identity) (Identity, error)
}
