package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/justestif/go-music-platform/internal/db"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// MinSecretLength is the shortest HMAC secret accepted for signing.
const MinSecretLength = 32

var (
	// ErrNoSigningKey is returned when no secret is configured.
	ErrNoSigningKey = errors.New("no token signing secret configured")

	// ErrWeakSecret is returned for secrets shorter than MinSecretLength.
	ErrWeakSecret = fmt.Errorf("token signing secret must be at least %d bytes", MinSecretLength)
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type signingKey struct {
	id     string
	secret []byte
}

// TokenService issues and validates HS256 access tokens. The first configured
// secret signs new tokens; every configured secret is accepted on validation
// so secrets can be rotated without invalidating live tokens.
type TokenService struct {
	keys   []signingKey
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithIssuer sets the iss claim written to and required from tokens.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		s.issuer = issuer
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService. ttl <= 0 selects DefaultTokenTTL.
func NewTokenService(secrets []string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{ttl: ttl, now: time.Now}
	for _, secret := range secrets {
		if len(secret) < MinSecretLength {
			return nil, ErrWeakSecret
		}
		sum := sha256.Sum256([]byte(secret))
		s.keys = append(s.keys, signingKey{
			id:     hex.EncodeToString(sum[:4]),
			secret: []byte(secret),
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for identity with subject, issued-at and expiry claims.
func (s *TokenService) Issue(identity *db.Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Handle,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	key := s.keys[0]
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.id

	signed, err := token.SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse fully validates a token and returns its claims. Failures wrap
// ErrTokenInvalid; expired tokens additionally wrap ErrTokenExpired.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrTokenExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Subject returns the subject of a correctly signed token without checking
// its time-based claims.
func (s *TokenService) Subject(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims.Subject, nil
}

// Validate reports whether the token is correctly signed, unexpired and
// issued to identity.
func (s *TokenService) Validate(tokenString string, identity *db.Identity) bool {
	if identity == nil {
		return false
	}
	claims, err := s.Parse(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == identity.Handle
}

func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return s.keys[0].secret, nil
	}
	for _, k := range s.keys {
		if k.id == kid {
			return k.secret, nil
		}
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}
