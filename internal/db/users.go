package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// userRepo handles account holder database operations.
type userRepo struct {
	q querier
}

const userColumns = `id, dni, name, email, password_hash, birth_date, subscribed, plan_id, follower_id, playlist_id`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.DNI,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.BirthDate,
		&u.Subscribed,
		&u.PlanID,
		&u.FollowerID,
		&u.PlaylistID,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) list(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) getWhere(ctx context.Context, column string, arg any) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by %s: %w", column, err)
	}
	return u, nil
}

// List retrieves all users ordered by ID.
func (r *userRepo) List(ctx context.Context) ([]User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// ListSubscribed retrieves users with an active subscription.
func (r *userRepo) ListSubscribed(ctx context.Context) ([]User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE subscribed ORDER BY id`)
}

// ListByPlan retrieves the subscribers of a plan.
func (r *userRepo) ListByPlan(ctx context.Context, planID int64) ([]User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE plan_id = $1 ORDER BY id`, planID)
}

// Get retrieves a user by ID.
func (r *userRepo) Get(ctx context.Context, id int64) (*User, error) {
	return r.getWhere(ctx, "id", id)
}

// FindByName retrieves a user by exact name.
func (r *userRepo) FindByName(ctx context.Context, name string) (*User, error) {
	return r.getWhere(ctx, "name", name)
}

// FindByEmail retrieves a user by email.
func (r *userRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.getWhere(ctx, "email", email)
}

// FindByDNI retrieves a user by national identity number.
func (r *userRepo) FindByDNI(ctx context.Context, dni string) (*User, error) {
	return r.getWhere(ctx, "dni", dni)
}

// FindByFollower retrieves the user that followerID follows.
func (r *userRepo) FindByFollower(ctx context.Context, followerID int64) (*User, error) {
	return r.getWhere(ctx, "follower_id", followerID)
}

// FindByPlaylist retrieves the owner of a playlist.
func (r *userRepo) FindByPlaylist(ctx context.Context, playlistID int64) (*User, error) {
	return r.getWhere(ctx, "playlist_id", playlistID)
}

// Save inserts or updates a user, including its relation references.
func (r *userRepo) Save(ctx context.Context, user *User) error {
	if user.ID == 0 {
		query := `
			INSERT INTO users (dni, name, email, password_hash, birth_date, subscribed, plan_id, follower_id, playlist_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		err := r.q.QueryRow(ctx, query,
			user.DNI,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.BirthDate,
			user.Subscribed,
			user.PlanID,
			user.FollowerID,
			user.PlaylistID,
		).Scan(&user.ID)
		if err != nil {
			return fmt.Errorf("inserting user: %w", classify(err))
		}
		return nil
	}

	query := `
		UPDATE users
		SET dni = $2, name = $3, email = $4, password_hash = $5, birth_date = $6,
			subscribed = $7, plan_id = $8, follower_id = $9, playlist_id = $10
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		user.ID,
		user.DNI,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.BirthDate,
		user.Subscribed,
		user.PlanID,
		user.FollowerID,
		user.PlaylistID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by ID.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
