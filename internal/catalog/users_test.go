package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate(t *testing.T) {
	f := newFixture()
	u := f.user(t, "ana", "12345678")

	assert.False(t, u.Subscribed)
	assert.Nil(t, u.PlanID)
	assert.Nil(t, u.FollowerID)
	assert.Nil(t, u.PlaylistID)
	assert.Equal(t, "hashed:password123", u.PasswordHash)
}

func TestUserCreate_Uniqueness(t *testing.T) {
	base := UserInput{
		DNI:       "12345678",
		Name:      "ana",
		Email:     "ana@example.com",
		Password:  "password123",
		BirthDate: date(1990, time.January, 1),
	}

	tests := []struct {
		name   string
		modify func(*UserInput)
	}{
		{name: "same name", modify: func(in *UserInput) { in.DNI = "87654321"; in.Email = "other@example.com" }},
		{name: "same email", modify: func(in *UserInput) { in.DNI = "87654321"; in.Name = "bea" }},
		{name: "same DNI", modify: func(in *UserInput) { in.Name = "bea"; in.Email = "bea@example.com" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			_, err := f.users.Create(ctx, base)
			require.NoError(t, err)

			in := base
			tt.modify(&in)
			_, err = f.users.Create(ctx, in)
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}

func TestUserUpdate_KeepsLinks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "ana", "12345678")
	gold := f.plan(t, "Gold")
	_, err := f.users.Subscribe(ctx, u.ID, gold.ID)
	require.NoError(t, err)

	got, err := f.users.Update(ctx, u.ID, UserInput{
		DNI:       "12345678",
		Name:      "ana maria",
		Email:     "ana@example.com",
		Password:  "newpassword",
		BirthDate: date(1990, time.January, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana maria", got.Name)
	assert.Equal(t, "hashed:newpassword", got.PasswordHash)
	assert.True(t, got.Subscribed)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, gold.ID, *got.PlanID)

	f.user(t, "bea", "87654321")
	_, err = f.users.Update(ctx, u.ID, UserInput{DNI: "87654321", Name: "ana maria", Email: "ana@example.com", Password: "newpassword"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserAssignFollower(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.user(t, "a", "11111111")
	b := f.user(t, "b", "22222222")
	c := f.user(t, "c", "33333333")

	got, err := f.users.AssignFollower(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FollowerID)
	assert.Equal(t, b.ID, *got.FollowerID)

	tests := []struct {
		name     string
		followed int64
		follower int64
		wantErr  error
	}{
		{name: "second follower", followed: a.ID, follower: c.ID, wantErr: ErrConflict},
		{name: "self follow", followed: c.ID, follower: c.ID, wantErr: ErrConflict},
		{name: "follower already follows", followed: c.ID, follower: b.ID, wantErr: ErrConflict},
		{name: "missing followed", followed: 999, follower: c.ID, wantErr: ErrNotFound},
		{name: "missing follower", followed: c.ID, follower: 999, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.AssignFollower(ctx, tt.followed, tt.follower)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserSubscribeCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "ana", "12345678")
	gold := f.plan(t, "Gold")
	basic := f.plan(t, "Basic")

	got, err := f.users.Subscribe(ctx, u.ID, gold.ID)
	require.NoError(t, err)
	assert.True(t, got.Subscribed)

	_, err = f.users.Subscribe(ctx, u.ID, basic.ID)
	require.ErrorIs(t, err, ErrConflict)

	got, err = f.users.Cancel(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Subscribed)
	assert.Nil(t, got.PlanID)

	_, err = f.users.Cancel(ctx, u.ID)
	require.ErrorIs(t, err, ErrConflict)

	got, err = f.users.Subscribe(ctx, u.ID, basic.ID)
	require.NoError(t, err)
	assert.Equal(t, basic.ID, *got.PlanID)

	active, err := f.users.ListSubscribed(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, u.ID, active[0].ID)

	_, err = f.users.Subscribe(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserAssignPlaylist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ana := f.user(t, "ana", "12345678")
	bea := f.user(t, "bea", "87654321")
	mine := f.playlist(t, "Mine")
	other := f.playlist(t, "Other")

	got, err := f.users.AssignPlaylist(ctx, ana.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, *got.PlaylistID)

	_, err = f.users.AssignPlaylist(ctx, ana.ID, other.ID)
	assert.ErrorIs(t, err, ErrConflict, "user already owns a playlist")

	_, err = f.users.AssignPlaylist(ctx, bea.ID, mine.ID)
	assert.ErrorIs(t, err, ErrConflict, "playlist already owned")

	_, err = f.users.AssignPlaylist(ctx, bea.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserAssignPlaylist_IgnoresPlan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ana := f.user(t, "ana", "12345678")
	gold := f.plan(t, "Gold")
	p := f.playlist(t, "Mine")

	_, err := f.users.Subscribe(ctx, ana.ID, gold.ID)
	require.NoError(t, err)

	_, err = f.users.AssignPlaylist(ctx, ana.ID, p.ID)
	assert.NoError(t, err, "holding a plan must not block playlist assignment")
}

func TestUserSongArtist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ana := f.user(t, "ana", "12345678")
	mine := f.playlist(t, "Mine")
	other := f.playlist(t, "Other")
	a := f.artist(t, "Queen")
	s := f.song(t, "One")

	_, err := f.songs.AssignArtist(ctx, s.ID, a.ID)
	require.NoError(t, err)
	for _, pid := range []int64{mine.ID, other.ID} {
		_, err := f.playlists.AddSong(ctx, pid, s.ID)
		require.NoError(t, err)
	}
	_, err = f.users.AssignPlaylist(ctx, ana.ID, mine.ID)
	require.NoError(t, err)

	got, err := f.users.SongArtist(ctx, ana.ID, mine.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.users.SongArtist(ctx, ana.ID, other.ID, s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "playlist owned by nobody")
}

func TestUserDelete_Guards(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture, userID int64)
	}{
		{
			name: "followed",
			setup: func(t *testing.T, f *fixture, userID int64) {
				other := f.user(t, "other", "99999999")
				_, err := f.users.AssignFollower(context.Background(), userID, other.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "owns playlist",
			setup: func(t *testing.T, f *fixture, userID int64) {
				p := f.playlist(t, "Mine")
				_, err := f.users.AssignPlaylist(context.Background(), userID, p.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "holds plan",
			setup: func(t *testing.T, f *fixture, userID int64) {
				p := f.plan(t, "Gold")
				_, err := f.users.Subscribe(context.Background(), userID, p.ID)
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			u := f.user(t, "ana", "12345678")
			tt.setup(t, f, u.ID)

			assert.ErrorIs(t, f.users.Delete(context.Background(), u.ID), ErrConflict)
		})
	}
}

func TestUserDelete_ClearsFollowing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.user(t, "a", "11111111")
	b := f.user(t, "b", "22222222")

	_, err := f.users.AssignFollower(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, b.ID))

	got, err := f.users.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FollowerID)

	_, err = f.users.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
