package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// songRepo handles song database operations.
type songRepo struct {
	q querier
}

const songColumns = `id, title, duration, genre, release_date, artist_id`

func scanSong(row pgx.Row) (*Song, error) {
	var s Song
	if err := row.Scan(&s.ID, &s.Title, &s.Duration, &s.Genre, &s.ReleaseDate, &s.ArtistID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *songRepo) list(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, *s)
	}
	return songs, rows.Err()
}

// List retrieves all songs ordered by ID.
func (r *songRepo) List(ctx context.Context) ([]Song, error) {
	return r.list(ctx, `SELECT `+songColumns+` FROM songs ORDER BY id`)
}

// ListByArtist retrieves the songs attributed to an artist.
func (r *songRepo) ListByArtist(ctx context.Context, artistID int64) ([]Song, error) {
	return r.list(ctx, `SELECT `+songColumns+` FROM songs WHERE artist_id = $1 ORDER BY id`, artistID)
}

// Get retrieves a song by ID.
func (r *songRepo) Get(ctx context.Context, id int64) (*Song, error) {
	s, err := scanSong(r.q.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return s, nil
}

// Save inserts or updates a song, including its artist reference.
func (r *songRepo) Save(ctx context.Context, song *Song) error {
	if song.ID == 0 {
		query := `
			INSERT INTO songs (title, duration, genre, release_date, artist_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err := r.q.QueryRow(ctx, query,
			song.Title,
			song.Duration,
			song.Genre,
			song.ReleaseDate,
			song.ArtistID,
		).Scan(&song.ID)
		if err != nil {
			return fmt.Errorf("inserting song: %w", classify(err))
		}
		return nil
	}

	query := `
		UPDATE songs
		SET title = $2, duration = $3, genre = $4, release_date = $5, artist_id = $6
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query,
		song.ID,
		song.Title,
		song.Duration,
		song.Genre,
		song.ReleaseDate,
		song.ArtistID,
	)
	if err != nil {
		return fmt.Errorf("updating song: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a song by ID.
func (r *songRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting song: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
