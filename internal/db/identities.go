package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// identityRepo handles identity database operations.
type identityRepo struct {
	q querier
}

// FindByHandle retrieves an identity by its login handle.
func (r *identityRepo) FindByHandle(ctx context.Context, handle string) (*Identity, error) {
	query := `
		SELECT id, handle, password_hash, first_name, last_name, role, created_at
		FROM identities
		WHERE handle = $1
	`
	var identity Identity
	err := r.q.QueryRow(ctx, query, handle).Scan(
		&identity.ID,
		&identity.Handle,
		&identity.PasswordHash,
		&identity.FirstName,
		&identity.LastName,
		&identity.Role,
		&identity.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying identity: %w", err)
	}
	return &identity, nil
}

// Create inserts a new identity and fills in its ID and creation time.
func (r *identityRepo) Create(ctx context.Context, identity *Identity) error {
	query := `
		INSERT INTO identities (handle, password_hash, first_name, last_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		identity.Handle,
		identity.PasswordHash,
		identity.FirstName,
		identity.LastName,
		identity.Role,
	).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting identity: %w", classify(err))
	}
	return nil
}

// Update rewrites the credential, names and role of an existing identity.
func (r *identityRepo) Update(ctx context.Context, identity *Identity) error {
	query := `
		UPDATE identities
		SET password_hash = $2, first_name = $3, last_name = $4, role = $5
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		identity.ID,
		identity.PasswordHash,
		identity.FirstName,
		identity.LastName,
		identity.Role,
	)
	if err != nil {
		return fmt.Errorf("updating identity: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
