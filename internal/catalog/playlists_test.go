package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-music-platform/internal/db"
)

func TestPlaylistCreate_DuplicateName(t *testing.T) {
	f := newFixture()
	f.playlist(t, "Road Trip")

	_, err := f.playlists.Create(context.Background(), db.Playlist{Name: "Road Trip"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPlaylistUpdate_Name(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	road := f.playlist(t, "Road Trip")
	f.playlist(t, "Workout")

	_, err := f.playlists.Update(ctx, road.ID, db.Playlist{Name: "Workout"})
	assert.ErrorIs(t, err, ErrConflict, "renaming onto another playlist's name")

	same, err := f.playlists.Update(ctx, road.ID, db.Playlist{Name: "Road Trip"})
	require.NoError(t, err, "keeping its own name")
	assert.Equal(t, "Road Trip", same.Name)

	renamed, err := f.playlists.Update(ctx, road.ID, db.Playlist{Name: "Night Drive"})
	require.NoError(t, err)
	assert.Equal(t, "Night Drive", renamed.Name)

	_, err = f.playlists.Update(ctx, 999, db.Playlist{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaylistAddRemove_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.playlist(t, "Road Trip")
	first := f.song(t, "One")
	second := f.song(t, "Two")

	_, err := f.playlists.AddSong(ctx, p.ID, first.ID)
	require.NoError(t, err)
	before, err := f.playlists.Get(ctx, p.ID)
	require.NoError(t, err)

	added, err := f.playlists.AddSong(ctx, p.ID, second.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, added.SongIDs)

	removed, err := f.playlists.RemoveSong(ctx, p.ID, second.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, before.SongIDs, removed.SongIDs)
}

func TestPlaylistAddSong_Guards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.playlist(t, "Road Trip")
	s := f.song(t, "One")

	_, err := f.playlists.AddSong(ctx, p.ID, s.ID)
	require.NoError(t, err)

	_, err = f.playlists.AddSong(ctx, p.ID, s.ID)
	assert.ErrorIs(t, err, ErrConflict, "duplicate add")

	_, err = f.playlists.AddSong(ctx, 999, s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "missing playlist")

	_, err = f.playlists.AddSong(ctx, p.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound, "missing song")

	other := f.song(t, "Two")
	_, err = f.playlists.RemoveSong(ctx, p.ID, other.ID)
	assert.ErrorIs(t, err, ErrConflict, "remove absent song")
}

func TestPlaylistDelete_Scenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s1 := f.song(t, "S1")
	p1 := f.playlist(t, "P1")

	_, err := f.playlists.AddSong(ctx, p1.ID, s1.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.playlists.Delete(ctx, p1.ID), ErrConflict)

	_, err = f.playlists.RemoveSong(ctx, p1.ID, s1.ID)
	require.NoError(t, err)
	require.NoError(t, f.playlists.Delete(ctx, p1.ID))

	_, err = f.playlists.Get(ctx, p1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaylistDelete_Owned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.playlist(t, "Mine")
	u := f.user(t, "ana", "12345678")

	_, err := f.users.AssignPlaylist(ctx, u.ID, p.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.playlists.Delete(ctx, p.ID), ErrConflict)
}

func TestPlaylistSongArtist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.playlist(t, "Road Trip")
	a := f.artist(t, "Queen")
	withArtist := f.song(t, "One")
	noArtist := f.song(t, "Two")
	outside := f.song(t, "Three")

	_, err := f.songs.AssignArtist(ctx, withArtist.ID, a.ID)
	require.NoError(t, err)
	for _, id := range []int64{withArtist.ID, noArtist.ID} {
		_, err := f.playlists.AddSong(ctx, p.ID, id)
		require.NoError(t, err)
	}

	got, err := f.playlists.SongArtist(ctx, p.ID, withArtist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Queen", got.Name)

	tests := []struct {
		name       string
		playlistID int64
		songID     int64
	}{
		{name: "song without artist", playlistID: p.ID, songID: noArtist.ID},
		{name: "song outside playlist", playlistID: p.ID, songID: outside.ID},
		{name: "missing playlist", playlistID: 999, songID: withArtist.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.playlists.SongArtist(ctx, tt.playlistID, tt.songID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
