package db

import "context"

// Store runs units of work against the catalog.
type Store interface {
	// InTx runs fn in one all-or-nothing transaction.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx exposes the entity repositories bound to a single transaction.
type Tx interface {
	Identities() IdentityRepository
	Artists() ArtistRepository
	Songs() SongRepository
	Playlists() PlaylistRepository
	Plans() PlanRepository
	Users() UserRepository
}

// Lookups return ErrNotFound when no row matches. Save inserts when the
// record's ID is zero and updates otherwise; inserts assign the ID.

// IdentityRepository persists authentication principals.
type IdentityRepository interface {
	FindByHandle(ctx context.Context, handle string) (*Identity, error)
	Create(ctx context.Context, identity *Identity) error
	Update(ctx context.Context, identity *Identity) error
}

// ArtistRepository persists artists.
type ArtistRepository interface {
	List(ctx context.Context) ([]Artist, error)
	Get(ctx context.Context, id int64) (*Artist, error)
	FindByName(ctx context.Context, name string) (*Artist, error)
	Save(ctx context.Context, artist *Artist) error
	Delete(ctx context.Context, id int64) error
}

// SongRepository persists songs.
type SongRepository interface {
	List(ctx context.Context) ([]Song, error)
	Get(ctx context.Context, id int64) (*Song, error)
	ListByArtist(ctx context.Context, artistID int64) ([]Song, error)
	Save(ctx context.Context, song *Song) error
	Delete(ctx context.Context, id int64) error
}

// PlaylistRepository persists playlists and their song membership.
type PlaylistRepository interface {
	List(ctx context.Context) ([]Playlist, error)
	Get(ctx context.Context, id int64) (*Playlist, error)
	FindByName(ctx context.Context, name string) (*Playlist, error)
	Save(ctx context.Context, playlist *Playlist) error
	Delete(ctx context.Context, id int64) error

	SongIDs(ctx context.Context, playlistID int64) ([]int64, error)
	HasSong(ctx context.Context, playlistID, songID int64) (bool, error)
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
	// CountContaining returns how many playlists include the song.
	CountContaining(ctx context.Context, songID int64) (int, error)
}

// PlanRepository persists membership plans.
type PlanRepository interface {
	List(ctx context.Context) ([]MembershipPlan, error)
	Get(ctx context.Context, id int64) (*MembershipPlan, error)
	FindByName(ctx context.Context, name string) (*MembershipPlan, error)
	Save(ctx context.Context, plan *MembershipPlan) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository persists account holders and their relation references.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	ListSubscribed(ctx context.Context) ([]User, error)
	ListByPlan(ctx context.Context, planID int64) ([]User, error)
	Get(ctx context.Context, id int64) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByDNI(ctx context.Context, dni string) (*User, error)
	// FindByFollower returns the user that followerID follows.
	FindByFollower(ctx context.Context, followerID int64) (*User, error)
	// FindByPlaylist returns the owner of the playlist.
	FindByPlaylist(ctx context.Context, playlistID int64) (*User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
}
