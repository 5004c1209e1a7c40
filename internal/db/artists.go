package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// artistRepo handles artist database operations.
type artistRepo struct {
	q querier
}

const artistColumns = `id, name, genre, country, birth_date`

func scanArtist(row pgx.Row) (*Artist, error) {
	var a Artist
	if err := row.Scan(&a.ID, &a.Name, &a.Genre, &a.Country, &a.BirthDate); err != nil {
		return nil, err
	}
	return &a, nil
}

// List retrieves all artists ordered by ID.
func (r *artistRepo) List(ctx context.Context) ([]Artist, error) {
	rows, err := r.q.Query(ctx, `SELECT `+artistColumns+` FROM artists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning artist: %w", err)
		}
		artists = append(artists, *a)
	}
	return artists, rows.Err()
}

// Get retrieves an artist by ID.
func (r *artistRepo) Get(ctx context.Context, id int64) (*Artist, error) {
	a, err := scanArtist(r.q.QueryRow(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist: %w", err)
	}
	return a, nil
}

// FindByName retrieves an artist by exact name.
func (r *artistRepo) FindByName(ctx context.Context, name string) (*Artist, error) {
	a, err := scanArtist(r.q.QueryRow(ctx, `SELECT `+artistColumns+` FROM artists WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist by name: %w", err)
	}
	return a, nil
}

// Save inserts or updates an artist.
func (r *artistRepo) Save(ctx context.Context, artist *Artist) error {
	if artist.ID == 0 {
		query := `
			INSERT INTO artists (name, genre, country, birth_date)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err := r.q.QueryRow(ctx, query,
			artist.Name,
			artist.Genre,
			artist.Country,
			artist.BirthDate,
		).Scan(&artist.ID)
		if err != nil {
			return fmt.Errorf("inserting artist: %w", classify(err))
		}
		return nil
	}

	query := `
		UPDATE artists
		SET name = $2, genre = $3, country = $4, birth_date = $5
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		artist.ID,
		artist.Name,
		artist.Genre,
		artist.Country,
		artist.BirthDate,
	)
	if err != nil {
		return fmt.Errorf("updating artist: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an artist by ID.
func (r *artistRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting artist: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
