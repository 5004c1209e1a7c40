package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/justestif/go-music-platform/internal/db"
	"github.com/justestif/go-music-platform/internal/db/memory"
)

// plainHasher stores passwords with a fixed prefix so tests can inspect them.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type fixture struct {
	store     *memory.Store
	artists   *ArtistService
	songs     *SongService
	playlists *PlaylistService
	plans     *PlanService
	users     *UserService
}

func newFixture() *fixture {
	store := memory.New()
	return &fixture{
		store:     store,
		artists:   NewArtistService(store),
		songs:     NewSongService(store),
		playlists: NewPlaylistService(store),
		plans:     NewPlanService(store),
		users:     NewUserService(store, plainHasher{}),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) artist(t *testing.T, name string) *db.Artist {
	t.Helper()
	a, err := f.artists.Create(context.Background(), db.Artist{
		Name:      name,
		Genre:     "rock",
		Country:   "UK",
		BirthDate: date(1946, time.September, 5),
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) song(t *testing.T, title string) *db.Song {
	t.Helper()
	s, err := f.songs.Create(context.Background(), db.Song{
		Title:       title,
		Duration:    "5:55",
		Genre:       "rock",
		ReleaseDate: date(1975, time.October, 31),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) playlist(t *testing.T, name string) *PlaylistDetail {
	t.Helper()
	p, err := f.playlists.Create(context.Background(), db.Playlist{Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) plan(t *testing.T, name string) *db.MembershipPlan {
	t.Helper()
	p, err := f.plans.Create(context.Background(), db.MembershipPlan{
		Name:        name,
		Price:       9.99,
		Description: "monthly",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) user(t *testing.T, name, dni string) *db.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), UserInput{
		DNI:       dni,
		Name:      name,
		Email:     name + "@example.com",
		Password:  "password123",
		BirthDate: date(1990, time.January, 1),
	})
	require.NoError(t, err)
	return u
}
