// Package memory provides an in-process implementation of db.Store.
//
// Transactions are serialized and work on a private copy of the data that is
// swapped in only when the transaction function succeeds. Uniqueness rules
// mirror the PostgreSQL schema and report db.ErrDuplicate.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/justestif/go-music-platform/internal/db"
)

// Store is an in-memory catalog store.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

type state struct {
	nextID int64

	identities map[int64]db.Identity
	artists    map[int64]db.Artist
	songs      map[int64]db.Song
	playlists  map[int64]db.Playlist
	members    map[int64]map[int64]struct{} // playlist -> songs
	plans      map[int64]db.MembershipPlan
	users      map[int64]db.User
}

func newState() *state {
	return &state{
		identities: make(map[int64]db.Identity),
		artists:    make(map[int64]db.Artist),
		songs:      make(map[int64]db.Song),
		playlists:  make(map[int64]db.Playlist),
		members:    make(map[int64]map[int64]struct{}),
		plans:      make(map[int64]db.MembershipPlan),
		users:      make(map[int64]db.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:     s.nextID,
		identities: maps.Clone(s.identities),
		artists:    maps.Clone(s.artists),
		songs:      maps.Clone(s.songs),
		playlists:  maps.Clone(s.playlists),
		members:    make(map[int64]map[int64]struct{}, len(s.members)),
		plans:      maps.Clone(s.plans),
		users:      maps.Clone(s.users),
	}
	for id, songs := range s.members {
		c.members[id] = maps.Clone(songs)
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// InTx runs fn against a snapshot and commits it only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(db.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) Identities() db.IdentityRepository { return identities{t} }
func (t *tx) Artists() db.ArtistRepository     { return artists{t} }
func (t *tx) Songs() db.SongRepository         { return songs{t} }
func (t *tx) Playlists() db.PlaylistRepository { return playlists{t} }
func (t *tx) Plans() db.PlanRepository         { return plans{t} }
func (t *tx) Users() db.UserRepository         { return users{t} }

// sortedValues returns map values ordered by ID.
func sortedValues[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", db.ErrDuplicate, constraint)
}

// ============================================================================
// Identities
// ============================================================================

type identities struct{ t *tx }

func (r identities) FindByHandle(_ context.Context, handle string) (*db.Identity, error) {
	for _, i := range r.t.st.identities {
		if i.Handle == handle {
			return &i, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r identities) Create(_ context.Context, identity *db.Identity) error {
	for _, i := range r.t.st.identities {
		if i.Handle == identity.Handle {
			return duplicate("identities_handle_key")
		}
	}
	identity.ID = r.t.st.id()
	identity.CreatedAt = r.t.now()
	r.t.st.identities[identity.ID] = *identity
	return nil
}

func (r identities) Update(_ context.Context, identity *db.Identity) error {
	existing, ok := r.t.st.identities[identity.ID]
	if !ok {
		return db.ErrNotFound
	}
	existing.PasswordHash = identity.PasswordHash
	existing.FirstName = identity.FirstName
	existing.LastName = identity.LastName
	existing.Role = identity.Role
	r.t.st.identities[identity.ID] = existing
	return nil
}

// ============================================================================
// Artists
// ============================================================================

type artists struct{ t *tx }

func (r artists) List(context.Context) ([]db.Artist, error) {
	return sortedValues(r.t.st.artists), nil
}

func (r artists) Get(_ context.Context, id int64) (*db.Artist, error) {
	a, ok := r.t.st.artists[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (r artists) FindByName(_ context.Context, name string) (*db.Artist, error) {
	for _, a := range r.t.st.artists {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r artists) Save(_ context.Context, artist *db.Artist) error {
	if artist.ID != 0 {
		if _, ok := r.t.st.artists[artist.ID]; !ok {
			return db.ErrNotFound
		}
	}
	for _, a := range r.t.st.artists {
		if a.ID != artist.ID && a.Name == artist.Name {
			return duplicate("artists_name_key")
		}
	}
	if artist.ID == 0 {
		artist.ID = r.t.st.id()
	}
	r.t.st.artists[artist.ID] = *artist
	return nil
}

func (r artists) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.st.artists[id]; !ok {
		return db.ErrNotFound
	}
	for _, s := range r.t.st.songs {
		if s.ArtistID != nil && *s.ArtistID == id {
			return fmt.Errorf("artist %d is referenced by song %d", id, s.ID)
		}
	}
	delete(r.t.st.artists, id)
	return nil
}

// ============================================================================
// Songs
// ============================================================================

type songs struct{ t *tx }

func (r songs) List(context.Context) ([]db.Song, error) {
	return sortedValues(r.t.st.songs), nil
}

func (r songs) ListByArtist(_ context.Context, artistID int64) ([]db.Song, error) {
	var out []db.Song
	for _, s := range sortedValues(r.t.st.songs) {
		if s.ArtistID != nil && *s.ArtistID == artistID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r songs) Get(_ context.Context, id int64) (*db.Song, error) {
	s, ok := r.t.st.songs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (r songs) Save(_ context.Context, song *db.Song) error {
	if song.ID != 0 {
		if _, ok := r.t.st.songs[song.ID]; !ok {
			return db.ErrNotFound
		}
	}
	if song.ArtistID != nil {
		if _, ok := r.t.st.artists[*song.ArtistID]; !ok {
			return fmt.Errorf("song references missing artist %d", *song.ArtistID)
		}
	}
	if song.ID == 0 {
		song.ID = r.t.st.id()
	}
	r.t.st.songs[song.ID] = *song
	return nil
}

func (r songs) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.st.songs[id]; !ok {
		return db.ErrNotFound
	}
	for pid, members := range r.t.st.members {
		if _, ok := members[id]; ok {
			return fmt.Errorf("song %d is referenced by playlist %d", id, pid)
		}
	}
	delete(r.t.st.songs, id)
	return nil
}

// ============================================================================
// Playlists
// ============================================================================

type playlists struct{ t *tx }

func (r playlists) List(context.Context) ([]db.Playlist, error) {
	return sortedValues(r.t.st.playlists), nil
}

func (r playlists) Get(_ context.Context, id int64) (*db.Playlist, error) {
	p, ok := r.t.st.playlists[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (r playlists) FindByName(_ context.Context, name string) (*db.Playlist, error) {
	for _, p := range r.t.st.playlists {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r playlists) Save(_ context.Context, playlist *db.Playlist) error {
	if playlist.ID != 0 {
		if _, ok := r.t.st.playlists[playlist.ID]; !ok {
			return db.ErrNotFound
		}
	}
	for _, p := range r.t.st.playlists {
		if p.ID != playlist.ID && p.Name == playlist.Name {
			return duplicate("playlists_name_key")
		}
	}
	if playlist.ID == 0 {
		playlist.ID = r.t.st.id()
	}
	r.t.st.playlists[playlist.ID] = *playlist
	return nil
}

func (r playlists) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.st.playlists[id]; !ok {
		return db.ErrNotFound
	}
	if len(r.t.st.members[id]) > 0 {
		return fmt.Errorf("playlist %d still has songs", id)
	}
	for _, u := range r.t.st.users {
		if u.PlaylistID != nil && *u.PlaylistID == id {
			return fmt.Errorf("playlist %d is referenced by user %d", id, u.ID)
		}
	}
	delete(r.t.st.playlists, id)
	delete(r.t.st.members, id)
	return nil
}

func (r playlists) SongIDs(_ context.Context, playlistID int64) ([]int64, error) {
	ids := make([]int64, 0, len(r.t.st.members[playlistID]))
	for id := range r.t.st.members[playlistID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r playlists) HasSong(_ context.Context, playlistID, songID int64) (bool, error) {
	_, ok := r.t.st.members[playlistID][songID]
	return ok, nil
}

func (r playlists) AddSong(_ context.Context, playlistID, songID int64) error {
	if _, ok := r.t.st.playlists[playlistID]; !ok {
		return fmt.Errorf("playlist %d does not exist", playlistID)
	}
	if _, ok := r.t.st.songs[songID]; !ok {
		return fmt.Errorf("song %d does not exist", songID)
	}
	members := r.t.st.members[playlistID]
	if members == nil {
		members = make(map[int64]struct{})
		r.t.st.members[playlistID] = members
	}
	if _, ok := members[songID]; ok {
		return duplicate("playlist_songs_pkey")
	}
	members[songID] = struct{}{}
	return nil
}

func (r playlists) RemoveSong(_ context.Context, playlistID, songID int64) error {
	members := r.t.st.members[playlistID]
	if _, ok := members[songID]; !ok {
		return db.ErrNotFound
	}
	delete(members, songID)
	return nil
}

func (r playlists) CountContaining(_ context.Context, songID int64) (int, error) {
	n := 0
	for _, members := range r.t.st.members {
		if _, ok := members[songID]; ok {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Membership plans
// ============================================================================

type plans struct{ t *tx }

func (r plans) List(context.Context) ([]db.MembershipPlan, error) {
	return sortedValues(r.t.st.plans), nil
}

func (r plans) Get(_ context.Context, id int64) (*db.MembershipPlan, error) {
	p, ok := r.t.st.plans[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (r plans) FindByName(_ context.Context, name string) (*db.MembershipPlan, error) {
	for _, p := range r.t.st.plans {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r plans) Save(_ context.Context, plan *db.MembershipPlan) error {
	if plan.ID != 0 {
		if _, ok := r.t.st.plans[plan.ID]; !ok {
			return db.ErrNotFound
		}
	}
	for _, p := range r.t.st.plans {
		if p.ID != plan.ID && p.Name == plan.Name {
			return duplicate("membership_plans_name_key")
		}
	}
	if plan.ID == 0 {
		plan.ID = r.t.st.id()
	}
	r.t.st.plans[plan.ID] = *plan
	return nil
}

func (r plans) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.st.plans[id]; !ok {
		return db.ErrNotFound
	}
	for _, u := range r.t.st.users {
		if u.PlanID != nil && *u.PlanID == id {
			return fmt.Errorf("plan %d is referenced by user %d", id, u.ID)
		}
	}
	delete(r.t.st.plans, id)
	return nil
}

// ============================================================================
// Users
// ============================================================================

type users struct{ t *tx }

func (r users) filter(keep func(db.User) bool) []db.User {
	var out []db.User
	for _, u := range sortedValues(r.t.st.users) {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func (r users) find(match func(db.User) bool) (*db.User, error) {
	for _, u := range r.t.st.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r users) List(context.Context) ([]db.User, error) {
	return sortedValues(r.t.st.users), nil
}

func (r users) ListSubscribed(context.Context) ([]db.User, error) {
	return r.filter(func(u db.User) bool { return u.Subscribed }), nil
}

func (r users) ListByPlan(_ context.Context, planID int64) ([]db.User, error) {
	return r.filter(func(u db.User) bool { return u.PlanID != nil && *u.PlanID == planID }), nil
}

func (r users) Get(_ context.Context, id int64) (*db.User, error) {
	u, ok := r.t.st.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (r users) FindByName(_ context.Context, name string) (*db.User, error) {
	return r.find(func(u db.User) bool { return u.Name == name })
}

func (r users) FindByEmail(_ context.Context, email string) (*db.User, error) {
	return r.find(func(u db.User) bool { return u.Email == email })
}

func (r users) FindByDNI(_ context.Context, dni string) (*db.User, error) {
	return r.find(func(u db.User) bool { return u.DNI == dni })
}

func (r users) FindByFollower(_ context.Context, followerID int64) (*db.User, error) {
	return r.find(func(u db.User) bool { return u.FollowerID != nil && *u.FollowerID == followerID })
}

func (r users) FindByPlaylist(_ context.Context, playlistID int64) (*db.User, error) {
	return r.find(func(u db.User) bool { return u.PlaylistID != nil && *u.PlaylistID == playlistID })
}

func sameRef(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func (r users) Save(_ context.Context, user *db.User) error {
	if user.ID != 0 {
		if _, ok := r.t.st.users[user.ID]; !ok {
			return db.ErrNotFound
		}
	}
	for _, u := range r.t.st.users {
		if u.ID == user.ID {
			continue
		}
		switch {
		case u.DNI == user.DNI:
			return duplicate("users_dni_key")
		case u.Name == user.Name:
			return duplicate("users_name_key")
		case u.Email == user.Email:
			return duplicate("users_email_key")
		case sameRef(u.FollowerID, user.FollowerID):
			return duplicate("users_follower_id_key")
		case sameRef(u.PlaylistID, user.PlaylistID):
			return duplicate("users_playlist_id_key")
		}
	}
	if user.PlanID != nil {
		if _, ok := r.t.st.plans[*user.PlanID]; !ok {
			return fmt.Errorf("user references missing plan %d", *user.PlanID)
		}
	}
	if user.PlaylistID != nil {
		if _, ok := r.t.st.playlists[*user.PlaylistID]; !ok {
			return fmt.Errorf("user references missing playlist %d", *user.PlaylistID)
		}
	}
	if user.ID == 0 {
		user.ID = r.t.st.id()
	}
	r.t.st.users[user.ID] = *user
	return nil
}

func (r users) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.st.users[id]; !ok {
		return db.ErrNotFound
	}
	for _, u := range r.t.st.users {
		if u.FollowerID != nil && *u.FollowerID == id {
			return fmt.Errorf("user %d is referenced as follower of user %d", id, u.ID)
		}
	}
	delete(r.t.st.users, id)
	return nil
}
