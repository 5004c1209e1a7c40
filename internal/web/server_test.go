package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/authz"
	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/db/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler    http.Handler
	adminToken string
}

func newTestServer(t *testing.T, cfg ServerConfig) *testServer {
	t.Helper()

	store := memory.New()
	hasher := auth.NewHasher(bcrypt.MinCost)
	creds := auth.NewCredentials(store, hasher)
	tokens, err := auth.NewTokenService([]string{testSecret}, time.Hour)
	require.NoError(t, err)
	gateway := auth.NewGateway(store, hasher, creds, tokens)
	policy, err := authz.NewPolicy()
	require.NoError(t, err)

	srv, err := NewServer(cfg, Deps{
		Gateway:     gateway,
		Credentials: creds,
		Tokens:      tokens,
		Policy:      policy,
		Artists:     catalog.NewArtistService(store),
		Songs:       catalog.NewSongService(store),
		Playlists:   catalog.NewPlaylistService(store),
		Plans:       catalog.NewPlanService(store),
		Users:       catalog.NewUserService(store, hasher),
	})
	require.NoError(t, err)

	_, err = gateway.EnsureAdmin(context.Background(), auth.Registration{Handle: "root", Password: "rootpass1"})
	require.NoError(t, err)

	ts := &testServer{handler: srv.Handler()}
	rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "root", "password": "rootpass1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ts.adminToken = decodeToken(t, rec)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return ts.doVersion(t, method, path, token, APIVersion, body)
}

func (ts *testServer) doVersion(t *testing.T, method, path, token, version string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if version != "" {
		req.Header.Set(VersionHeader, version)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type envelopeOf[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelopeOf[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success)
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorMessage {
	t.Helper()
	var msg ErrorMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg), rec.Body.String())
	return msg
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", token: "", status: http.StatusUnauthorized},
		{name: "garbage token", token: "not.a.jwt", status: http.StatusUnauthorized},
		{name: "admin token", token: ts.adminToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/artists", tt.token, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "root", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, decodeError(t, rec).StatusCode)
}

func TestUserRolePolicy(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username":  "ana",
		"password":  "secret123",
		"firstname": "Ana",
		"lastname":  "Diaz",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userToken := decodeToken(t, rec)

	// Registering the same handle again is a duplicate.
	rec = ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "ana", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "list artists", method: http.MethodGet, path: "/api/artists", status: http.StatusOK},
		{name: "list plans", method: http.MethodGet, path: "/api/plans", status: http.StatusOK},
		{name: "create playlist", method: http.MethodPost, path: "/api/playlists", body: map[string]string{"name": "Road"}, status: http.StatusCreated},
		{name: "list users is admin only", method: http.MethodGet, path: "/api/users", status: http.StatusForbidden},
		{name: "create artist is admin only", method: http.MethodPost, path: "/api/artists", body: map[string]string{"name": "X"}, status: http.StatusForbidden},
		{name: "delete plan is admin only", method: http.MethodDelete, path: "/api/plans/1", status: http.StatusForbidden},
		{name: "metrics outside api", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, userToken, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = ts.do(t, http.MethodGet, "/api/users", ts.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersionHeader(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	for _, version := range []string{"", "2"} {
		rec := ts.doVersion(t, http.MethodGet, "/api/artists", ts.adminToken, version, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		msg := decodeError(t, rec)
		assert.Equal(t, http.StatusBadRequest, msg.StatusCode)
		assert.Equal(t, "/api/artists", msg.Description)
		assert.False(t, msg.Timestamp.IsZero())
	}
}

func TestPlaylistMembership(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})
	admin := ts.adminToken

	rec := ts.do(t, http.MethodPost, "/api/songs", admin, map[string]string{
		"title": "One", "duration": "4:30", "genre": "Rock", "releaseDate": "1991-09-24",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	song := decodeData[songResponse](t, rec)
	assert.Nil(t, song.ArtistID)

	rec = ts.do(t, http.MethodPost, "/api/playlists", admin, map[string]string{"name": "Mix"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	playlist := decodeData[playlistResponse](t, rec)
	assert.Empty(t, playlist.SongIDs)

	songPath := "/api/playlists/" + itoa(playlist.ID) + "/songs/" + itoa(song.ID)

	rec = ts.do(t, http.MethodPut, songPath, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{song.ID}, decodeData[playlistResponse](t, rec).SongIDs)

	rec = ts.do(t, http.MethodPut, songPath, admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "adding twice")

	rec = ts.do(t, http.MethodDelete, "/api/songs/"+itoa(song.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "deleting a song in a playlist")

	rec = ts.do(t, http.MethodGet, songPath+"/artist", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "song without artist")

	rec = ts.do(t, http.MethodPost, "/api/artists", admin, map[string]string{
		"name": "Metallica", "genre": "Metal", "country": "US", "birthDate": "1981-10-28",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	artist := decodeData[artistResponse](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/songs/"+itoa(song.ID)+"/artist/"+itoa(artist.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, songPath+"/artist", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Metallica", decodeData[artistResponse](t, rec).Name)

	rec = ts.do(t, http.MethodDelete, songPath, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decodeData[playlistResponse](t, rec).SongIDs)

	// Still linked to its artist.
	rec = ts.do(t, http.MethodDelete, "/api/songs/"+itoa(song.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserLinks(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})
	admin := ts.adminToken

	createUser := func(dni, name, email string) userResponse {
		t.Helper()
		rec := ts.do(t, http.MethodPost, "/api/users", admin, map[string]string{
			"dni": dni, "name": name, "email": email, "password": "password1", "birthDate": "1990-05-01",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decodeData[userResponse](t, rec)
	}
	a := createUser("11111111", "alice", "alice@example.com")
	b := createUser("22222222", "bob", "bob@example.com")
	assert.False(t, a.Subscribed)

	rec := ts.do(t, http.MethodPost, "/api/users", admin, map[string]string{
		"dni": "33333333", "name": "alice", "email": "other@example.com", "password": "password1", "birthDate": "1990-05-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate name")

	rec = ts.do(t, http.MethodPost, "/api/plans", admin, map[string]any{"name": "Gold", "price": 9.99, "description": "all songs"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	plan := decodeData[planResponse](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/users/"+itoa(a.ID)+"/plan/"+itoa(plan.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeData[userResponse](t, rec).Subscribed)

	rec = ts.do(t, http.MethodGet, "/api/users/subscribed", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]userResponse](t, rec), 1)

	rec = ts.do(t, http.MethodDelete, "/api/plans/"+itoa(plan.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "plan has subscribers")

	rec = ts.do(t, http.MethodPut, "/api/users/"+itoa(a.ID)+"/follower/"+itoa(a.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self follow")

	rec = ts.do(t, http.MethodPut, "/api/users/"+itoa(a.ID)+"/follower/"+itoa(b.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, decodeData[userResponse](t, rec).FollowerID)

	rec = ts.do(t, http.MethodDelete, "/api/users/"+itoa(a.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "user has a follower")

	rec = ts.do(t, http.MethodDelete, "/api/users/"+itoa(b.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/users/"+itoa(a.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Nil(t, decodeData[userResponse](t, rec).FollowerID, "deleted follower is unlinked")

	rec = ts.do(t, http.MethodDelete, "/api/users/"+itoa(a.ID)+"/plan", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decodeData[userResponse](t, rec).PlanID)

	rec = ts.do(t, http.MethodGet, "/api/users/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	tests := []struct {
		name      string
		method    string
		path      string
		body      any
		wantField string
	}{
		{name: "bad duration", method: http.MethodPost, path: "/api/songs", body: map[string]string{"title": "One", "duration": "long", "genre": "Rock", "releaseDate": "1991-09-24"}, wantField: "duration"},
		{name: "short plan name", method: http.MethodPost, path: "/api/plans", body: map[string]any{"name": "Go", "price": 1, "description": "d"}, wantField: "name"},
		{name: "missing price", method: http.MethodPost, path: "/api/plans", body: map[string]any{"name": "Gold", "description": "d"}, wantField: "price"},
		{name: "future birth date", method: http.MethodPost, path: "/api/artists", body: map[string]string{"name": "A", "genre": "G", "country": "C", "birthDate": "2999-01-01"}, wantField: "birthDate"},
		{name: "short dni", method: http.MethodPost, path: "/api/users", body: map[string]string{"dni": "1", "name": "n", "email": "n@example.com", "password": "password1", "birthDate": "1990-01-01"}, wantField: "dni"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, ts.adminToken, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decodeError(t, rec).Errors, tt.wantField)
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/artists/abc", ts.adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/playlists", bytes.NewBufferString("{"))
		req.Header.Set(VersionHeader, APIVersion)
		req.Header.Set("Authorization", "Bearer "+ts.adminToken)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMultiBytePasswords(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	// 40 characters but 80 bytes: within the character rules, over bcrypt's limit.
	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "nino",
		"password": strings.Repeat("ñ", 40),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	// 19 characters, 76 bytes.
	rec = ts.do(t, http.MethodPost, "/api/users", ts.adminToken, map[string]string{
		"dni": "12345678", "name": "emoji", "email": "emoji@example.com",
		"password": strings.Repeat("😀", 19), "birthDate": "1990-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/users", ts.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]userResponse](t, rec), "rejected user is not stored")
}

func TestTrailingSlashPolicy(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "ana", "password": "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userToken := decodeToken(t, rec)

	tests := []struct {
		name   string
		token  string
		method string
		path   string
		status int
	}{
		{name: "user collection", token: userToken, method: http.MethodGet, path: "/api/artists", status: http.StatusOK},
		{name: "user collection with slash", token: userToken, method: http.MethodGet, path: "/api/artists/", status: http.StatusOK},
		{name: "admin collection with slash", token: ts.adminToken, method: http.MethodGet, path: "/api/artists/", status: http.StatusOK},
		{name: "user admin-only collection with slash", token: userToken, method: http.MethodGet, path: "/api/users/", status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/nowhere", decodeError(t, rec).Description)
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t, ServerConfig{AuthRateLimit: 2, AuthRateWindow: time.Hour})

	// newTestServer already spent one request logging in.
	body := map[string]string{"username": "root", "password": "wrong-password"}
	rec := ts.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
