package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-music-platform/internal/db"
)

// UserService manages account holders and their follow, plan and playlist links.
type UserService struct {
	store  db.Store
	hasher PasswordHasher
}

// NewUserService creates a UserService. Passwords are hashed with hasher
// before they are stored.
func NewUserService(store db.Store, hasher PasswordHasher) *UserService {
	return &UserService{store: store, hasher: hasher}
}

// UserInput carries the writable fields of a user.
type UserInput struct {
	DNI       string
	Name      string
	Email     string
	Password  string
	BirthDate time.Time
}

func userID(u *db.User) int64 { return u.ID }

func getUser(ctx context.Context, tx db.Tx, id int64) (*db.User, error) {
	u, err := tx.Users().Get(ctx, id)
	return lookup(u, err, "user", id)
}

// checkUserUnique rejects a name, email or DNI held by a user other than selfID.
func checkUserUnique(ctx context.Context, tx db.Tx, in UserInput, selfID int64) error {
	found, err := tx.Users().FindByName(ctx, in.Name)
	if err := unique(found, err, userID, selfID, "user name", in.Name); err != nil {
		return err
	}
	found, err = tx.Users().FindByEmail(ctx, in.Email)
	if err := unique(found, err, userID, selfID, "email", in.Email); err != nil {
		return err
	}
	found, err = tx.Users().FindByDNI(ctx, in.DNI)
	return unique(found, err, userID, selfID, "DNI", in.DNI)
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.User, error) {
		users, err := tx.Users().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		return users, nil
	})
}

// ListSubscribed returns users with an active subscription.
func (s *UserService) ListSubscribed(ctx context.Context) ([]db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.User, error) {
		users, err := tx.Users().ListSubscribed(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing subscribed users: %w", err)
		}
		return users, nil
	})
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (*db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		return getUser(ctx, tx, id)
	})
}

// Create stores a new, unsubscribed user with no links.
func (s *UserService) Create(ctx context.Context, in UserInput) (*db.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		if err := checkUserUnique(ctx, tx, in, 0); err != nil {
			return nil, err
		}
		user := &db.User{
			DNI:          in.DNI,
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			BirthDate:    in.BirthDate,
		}
		if err := tx.Users().Save(ctx, user); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return user, nil
	})
}

// Update replaces a user's own fields. Links and subscription state are kept.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (*db.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if err := checkUserUnique(ctx, tx, in, id); err != nil {
			return nil, err
		}
		user.DNI = in.DNI
		user.Name = in.Name
		user.Email = in.Email
		user.PasswordHash = hash
		user.BirthDate = in.BirthDate
		if err := tx.Users().Save(ctx, user); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return user, nil
	})
}

// Delete removes a user that has no follower, playlist or plan. If the user
// follows someone, that link is cleared first.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx db.Tx) error {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return err
		}
		switch {
		case user.FollowerID != nil:
			return conflict("user %d is followed by user %d", id, *user.FollowerID)
		case user.PlaylistID != nil:
			return conflict("user %d owns playlist %d", id, *user.PlaylistID)
		case user.PlanID != nil:
			return conflict("user %d is subscribed to membership plan %d", id, *user.PlanID)
		}

		followed, err := tx.Users().FindByFollower(ctx, id)
		switch {
		case err == nil:
			followed.FollowerID = nil
			if err := tx.Users().Save(ctx, followed); err != nil {
				return fmt.Errorf("clearing follower: %w", err)
			}
		case !errors.Is(err, db.ErrNotFound):
			return fmt.Errorf("finding followed user: %w", err)
		}

		if err := tx.Users().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	})
}

// AssignFollower records that followerID follows followedID. A user has at
// most one follower and follows at most one user.
func (s *UserService) AssignFollower(ctx context.Context, followedID, followerID int64) (*db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		followed, err := getUser(ctx, tx, followedID)
		if err != nil {
			return nil, err
		}
		if _, err := getUser(ctx, tx, followerID); err != nil {
			return nil, err
		}
		if followedID == followerID {
			return nil, conflict("user %d cannot follow themselves", followerID)
		}
		if followed.FollowerID != nil {
			return nil, conflict("user %d is already followed by user %d", followedID, *followed.FollowerID)
		}
		current, err := tx.Users().FindByFollower(ctx, followerID)
		switch {
		case err == nil:
			return nil, conflict("user %d already follows user %d", followerID, current.ID)
		case !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("finding followed user: %w", err)
		}

		followed.FollowerID = ref(followerID)
		if err := tx.Users().Save(ctx, followed); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return followed, nil
	})
}

// Subscribe gives a user a membership plan and marks them subscribed.
func (s *UserService) Subscribe(ctx context.Context, id, planID int64) (*db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := getPlan(ctx, tx, planID); err != nil {
			return nil, err
		}
		if user.PlanID != nil {
			return nil, conflict("user %d already holds membership plan %d", id, *user.PlanID)
		}
		user.PlanID = ref(planID)
		user.Subscribed = true
		if err := tx.Users().Save(ctx, user); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return user, nil
	})
}

// Cancel drops a user's membership plan.
func (s *UserService) Cancel(ctx context.Context, id int64) (*db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if user.PlanID == nil {
			return nil, conflict("user %d holds no membership plan", id)
		}
		user.PlanID = nil
		user.Subscribed = false
		if err := tx.Users().Save(ctx, user); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return user, nil
	})
}

// AssignPlaylist makes a user the owner of a playlist. Users own at most one
// playlist and a playlist has at most one owner.
func (s *UserService) AssignPlaylist(ctx context.Context, id, playlistID int64) (*db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.User, error) {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := getPlaylist(ctx, tx, playlistID); err != nil {
			return nil, err
		}
		if user.PlaylistID != nil {
			return nil, conflict("user %d already owns playlist %d", id, *user.PlaylistID)
		}
		owner, err := tx.Users().FindByPlaylist(ctx, playlistID)
		switch {
		case err == nil:
			return nil, conflict("playlist %d is already owned by user %d", playlistID, owner.ID)
		case !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("finding playlist owner: %w", err)
		}

		user.PlaylistID = ref(playlistID)
		if err := tx.Users().Save(ctx, user); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		return user, nil
	})
}

// SongArtist returns the artist of a song in the user's own playlist.
func (s *UserService) SongArtist(ctx context.Context, id, playlistID, songID int64) (*db.Artist, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.Artist, error) {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := getPlaylist(ctx, tx, playlistID); err != nil {
			return nil, err
		}
		if user.PlaylistID == nil || *user.PlaylistID != playlistID {
			return nil, notFound("playlist %d does not belong to user %d", playlistID, id)
		}
		return artistInPlaylist(ctx, tx, playlistID, songID)
	})
}
