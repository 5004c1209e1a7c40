package web

import (
	"fmt"
	"time"

	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/db"
	"github.com/justestif/go-music-platform/internal/validation"
)

// ============================================================================
// Requests
// ============================================================================

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstname" validate:"max=100"`
	LastName  string `json:"lastname" validate:"max=100"`
}

type artistRequest struct {
	Name      string `json:"name" validate:"notblank"`
	Genre     string `json:"genre" validate:"notblank"`
	Country   string `json:"country" validate:"notblank"`
	BirthDate string `json:"birthDate" validate:"required,pastdate"`
}

func (req artistRequest) model() (db.Artist, error) {
	birth, err := parseDate("birthDate", req.BirthDate)
	if err != nil {
		return db.Artist{}, err
	}
	return db.Artist{
		Name:      req.Name,
		Genre:     req.Genre,
		Country:   req.Country,
		BirthDate: birth,
	}, nil
}

type songRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=30"`
	Duration    string `json:"duration" validate:"required,duration"`
	Genre       string `json:"genre" validate:"notblank"`
	ReleaseDate string `json:"releaseDate" validate:"required,datetime=2006-01-02"`
}

func (req songRequest) model() (db.Song, error) {
	released, err := parseDate("releaseDate", req.ReleaseDate)
	if err != nil {
		return db.Song{}, err
	}
	return db.Song{
		Title:       req.Title,
		Duration:    req.Duration,
		Genre:       req.Genre,
		ReleaseDate: released,
	}, nil
}

type playlistRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

type planRequest struct {
	Name        string   `json:"name" validate:"required,min=4,max=7"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Description string   `json:"description" validate:"notblank"`
}

func (req planRequest) model() db.MembershipPlan {
	return db.MembershipPlan{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
	}
}

type userRequest struct {
	DNI       string `json:"dni" validate:"required,len=8"`
	Name      string `json:"name" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=20"`
	BirthDate string `json:"birthDate" validate:"required,pastdate"`
}

func (req userRequest) input() (catalog.UserInput, error) {
	birth, err := parseDate("birthDate", req.BirthDate)
	if err != nil {
		return catalog.UserInput{}, err
	}
	return catalog.UserInput{
		DNI:       req.DNI,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birth,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := validation.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", errBadRequest, field, err)
	}
	return t, nil
}

// ============================================================================
// Responses
// ============================================================================

type tokenResponse struct {
	Token string `json:"token"`
}

type artistResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Country   string `json:"country"`
	BirthDate string `json:"birthDate"`
}

func newArtistResponse(a db.Artist) artistResponse {
	return artistResponse{
		ID:        a.ID,
		Name:      a.Name,
		Genre:     a.Genre,
		Country:   a.Country,
		BirthDate: formatDate(a.BirthDate),
	}
}

type songResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	Genre       string `json:"genre"`
	ReleaseDate string `json:"releaseDate"`
	ArtistID    *int64 `json:"artistId"`
}

func newSongResponse(s db.Song) songResponse {
	return songResponse{
		ID:          s.ID,
		Title:       s.Title,
		Duration:    s.Duration,
		Genre:       s.Genre,
		ReleaseDate: formatDate(s.ReleaseDate),
		ArtistID:    s.ArtistID,
	}
}

type playlistResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	SongIDs []int64 `json:"songIds"`
}

func newPlaylistResponse(p catalog.PlaylistDetail) playlistResponse {
	ids := p.SongIDs
	if ids == nil {
		ids = []int64{}
	}
	return playlistResponse{ID: p.ID, Name: p.Name, SongIDs: ids}
}

type planResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func newPlanResponse(p db.MembershipPlan) planResponse {
	return planResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
	}
}

// userResponse never carries the password hash.
type userResponse struct {
	ID         int64  `json:"id"`
	DNI        string `json:"dni"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	BirthDate  string `json:"birthDate"`
	Subscribed bool   `json:"subscribed"`
	PlanID     *int64 `json:"planId"`
	FollowerID *int64 `json:"followerId"`
	PlaylistID *int64 `json:"playlistId"`
}

func newUserResponse(u db.User) userResponse {
	return userResponse{
		ID:         u.ID,
		DNI:        u.DNI,
		Name:       u.Name,
		Email:      u.Email,
		BirthDate:  formatDate(u.BirthDate),
		Subscribed: u.Subscribed,
		PlanID:     u.PlanID,
		FollowerID: u.FollowerID,
		PlaylistID: u.PlaylistID,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(validation.DateLayout)
}

// mapSlice converts each element of in with fn.
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
