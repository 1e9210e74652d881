package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Identity is the caller resolved from a bearer token: an opaque user id
// plus optional display name parts.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
}

type identityClaims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

type ctxKey int

const identityKey ctxKey = 0

// IdentityFrom returns the authenticated caller stored by the middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticator validates HS256 bearer tokens and resolves the caller
// identity for plan and subscription routes. Dashboard routes bypass it.
type Authenticator struct {
	secret []byte
	log    *zerolog.Logger
}

func NewAuthenticator(secret string, logger *zerolog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: logger}
}

// Middleware rejects requests without a valid bearer token and stores the
// resolved identity in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.identityFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized: JWT token is missing or invalid", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

func (a *Authenticator) identityFromRequest(r *http.Request) (Identity, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return Identity{}, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *Authenticator) parse(tok string) (Identity, error) {
	claims := &identityClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return Identity{}, errors.New("invalid token")
	}
	return Identity{
		UserID:    claims.Subject,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}
