package db

import (
	"time"
)

// Role is the authorization role carried by an Identity.
type Role string

// Roles understood by the authorization policy.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is an authentication principal.
type Identity struct {
	ID           int64
	Handle       string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
}

// Artist is a performer that songs can be attributed to.
type Artist struct {
	ID        int64
	Name      string
	Genre     string
	Country   string
	BirthDate time.Time
}

// Song is a single track. Duration is kept as entered ("m:ss").
type Song struct {
	ID          int64
	Title       string
	Duration    string
	Genre       string
	ReleaseDate time.Time
	ArtistID    *int64 // nullable
}

// Playlist is a named, unordered set of songs.
type Playlist struct {
	ID   int64
	Name string
}

// MembershipPlan is a subscription tier users can hold.
type MembershipPlan struct {
	ID          int64
	Name        string
	Price       float64
	Description string
}

// User is a platform account holder.
type User struct {
	ID           int64
	DNI          string
	Name         string
	Email        string
	PasswordHash string
	BirthDate    time.Time
	Subscribed   bool
	PlanID       *int64 // nullable - held membership plan
	FollowerID   *int64 // nullable - the user following this one
	PlaylistID   *int64 // nullable - owned playlist
}
