package web

import (
	"context"

	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/db"
)

// The interfaces below are the subsets of the catalog services the
// handlers call.

type artistService interface {
	List(ctx context.Context) ([]db.Artist, error)
	Get(ctx context.Context, id int64) (*db.Artist, error)
	Songs(ctx context.Context, id int64) ([]db.Song, error)
	Create(ctx context.Context, artist db.Artist) (*db.Artist, error)
	Update(ctx context.Context, id int64, changes db.Artist) (*db.Artist, error)
	Delete(ctx context.Context, id int64) error
}

type songService interface {
	List(ctx context.Context) ([]db.Song, error)
	Get(ctx context.Context, id int64) (*db.Song, error)
	Create(ctx context.Context, song db.Song) (*db.Song, error)
	Update(ctx context.Context, id int64, changes db.Song) (*db.Song, error)
	Delete(ctx context.Context, id int64) error
	AssignArtist(ctx context.Context, songID, artistID int64) (*db.Song, error)
}

type playlistService interface {
	List(ctx context.Context) ([]catalog.PlaylistDetail, error)
	Get(ctx context.Context, id int64) (*catalog.PlaylistDetail, error)
	Create(ctx context.Context, playlist db.Playlist) (*catalog.PlaylistDetail, error)
	Update(ctx context.Context, id int64, changes db.Playlist) (*catalog.PlaylistDetail, error)
	Delete(ctx context.Context, id int64) error
	AddSong(ctx context.Context, playlistID, songID int64) (*catalog.PlaylistDetail, error)
	RemoveSong(ctx context.Context, playlistID, songID int64) (*catalog.PlaylistDetail, error)
	SongArtist(ctx context.Context, playlistID, songID int64) (*db.Artist, error)
}

type planService interface {
	List(ctx context.Context) ([]db.MembershipPlan, error)
	Get(ctx context.Context, id int64) (*db.MembershipPlan, error)
	Subscribers(ctx context.Context, id int64) ([]db.User, error)
	Create(ctx context.Context, plan db.MembershipPlan) (*db.MembershipPlan, error)
	Update(ctx context.Context, id int64, changes db.MembershipPlan) (*db.MembershipPlan, error)
	Delete(ctx context.Context, id int64) error
}

type userService interface {
	List(ctx context.Context) ([]db.User, error)
	ListSubscribed(ctx context.Context) ([]db.User, error)
	Get(ctx context.Context, id int64) (*db.User, error)
	Create(ctx context.Context, in catalog.UserInput) (*db.User, error)
	Update(ctx context.Context, id int64, in catalog.UserInput) (*db.User, error)
	Delete(ctx context.Context, id int64) error
	AssignFollower(ctx context.Context, followedID, followerID int64) (*db.User, error)
	Subscribe(ctx context.Context, id, planID int64) (*db.User, error)
	Cancel(ctx context.Context, id int64) (*db.User, error)
	AssignPlaylist(ctx context.Context, id, playlistID int64) (*db.User, error)
	SongArtist(ctx context.Context, id, playlistID, songID int64) (*db.Artist, error)
}

var (
	_ artistService   = (*catalog.ArtistService)(nil)
	_ songService     = (*catalog.SongService)(nil)
	_ playlistService = (*catalog.PlaylistService)(nil)
	_ planService     = (*catalog.PlanService)(nil)
	_ userService     = (*catalog.UserService)(nil)
)
