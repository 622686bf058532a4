package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/kai-insight/internal/domain/auth"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	avatar        TEXT NOT NULL DEFAULT '',
	subscription  TEXT NOT NULL DEFAULT 'free',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS user_identities (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	provider         TEXT NOT NULL,
	provider_subject TEXT NOT NULL,
	provider_email   TEXT NOT NULL DEFAULT '',
	refresh_token    TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (provider, provider_subject),
	UNIQUE (user_id, provider)
)`

const userColumns = `id, email, name, avatar, subscription, password_hash, created_at, updated_at`

const identityColumns = `id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at`

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the users and user_identities tables when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, in auth.NewUser) (auth.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return auth.User{}, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, avatar, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		id.String(), in.Email, in.Name, in.Avatar, in.PasswordHash)
	user, err := scanUser(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return auth.User{}, auth.ErrEmailExists
	}
	return user, err
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return found(scanUser(row))
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (auth.User, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return found(scanUser(row))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, name, avatar string) (auth.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET name = $2, avatar = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, name, avatar)
	return scanUser(row)
}

func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM user_identities
		WHERE provider = $1 AND provider_subject = $2`, provider, providerSubject)
	return found(scanIdentity(row))
}

func (r *PostgresRepository) GetIdentityByUser(ctx context.Context, userID, provider string) (auth.Identity, bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM user_identities
		WHERE user_id = $1 AND provider = $2`, userID, provider)
	return found(scanIdentity(row))
}

// UpsertIdentity inserts the identity or refreshes the stored email and token.
// Empty values never overwrite stored ones.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity auth.Identity) (auth.Identity, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return auth.Identity{}, err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_identities (id, user_id, provider, provider_subject, provider_email, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, provider_subject) DO UPDATE SET
			provider_email = COALESCE(NULLIF(EXCLUDED.provider_email, ''), user_identities.provider_email),
			refresh_token  = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), user_identities.refresh_token),
			updated_at     = now()
		RETURNING `+identityColumns,
		id.String(), identity.UserID, identity.Provider, identity.ProviderSubject, identity.ProviderEmail, identity.RefreshToken)
	return scanIdentity(row)
}

func scanUser(row pgx.Row) (auth.User, error) {
	var user auth.User
	var subscription string
	var created, updated time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Avatar, &subscription, &user.PasswordHash, &created, &updated); err != nil {
		return auth.User{}, err
	}
	user.Subscription = auth.Subscription(subscription)
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	return user, nil
}

func scanIdentity(row pgx.Row) (auth.Identity, error) {
	var identity auth.Identity
	var created, updated time.Time
	if err := row.Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderSubject,
		&identity.ProviderEmail, &identity.RefreshToken, &created, &updated); err != nil {
		return auth.Identity{}, err
	}
	identity.CreatedAt = created.UTC()
	identity.UpdatedAt = updated.UTC()
	return identity, nil
}

// found folds pgx.ErrNoRows into the (value, false, nil) lookup convention.
func found[T any](v T, err error) (T, bool, error) {
	var zero T
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
