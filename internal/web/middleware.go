package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-music-platform/internal/db"
	"github.com/justestif/go-music-platform/internal/logging"
	"github.com/justestif/go-music-platform/internal/metrics"
)

// VersionHeader carries the API version on every /api request.
const VersionHeader = "X-VERSION"

// APIVersion is the only version currently served.
const APIVersion = "1"

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the authenticated identity stored by the auth
// middleware, or nil.
func IdentityFrom(ctx context.Context) *db.Identity {
	identity, _ := ctx.Value(identityKey).(*db.Identity)
	return identity
}

// requestLogger logs one line per request and records request metrics.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := middleware.GetReqID(r.Context())
		if id == "" {
			id = logging.NewRequestID()
		}
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), elapsed)

		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// requireVersion rejects requests that do not name the served API version.
func requireVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(VersionHeader) != APIVersion {
			writeError(w, r, errVersionMismatch)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the bearer token to a stored identity. The token's
// subject is looked up first; the token is then fully validated against it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}

		subject, err := s.deps.Tokens.Subject(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		identity, err := s.deps.Credentials.Lookup(r.Context(), subject)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, errUnauthenticated)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !s.deps.Tokens.Validate(token, identity) {
			writeError(w, r, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		ctx = logging.WithSubject(ctx, identity.Handle)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authorize applies the role policy to the authenticated identity.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFrom(r.Context())
		if identity == nil {
			writeError(w, r, errUnauthenticated)
			return
		}

		allowed, err := s.deps.Policy.Allow(identity.Role, r.URL.Path, r.Method)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("role", string(identity.Role)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("access denied")
			writeError(w, r, errForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
