package session

import (
	"context"
	"errors"
	"net/http"

	"tablecheck/internal/common/httpx"
	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/identity"
)

type Verifier interface {
	VerifySession(ctx context.Context, credential string, checkRevoked bool) (identity.Identity, error)
}

// Gate authenticates requests from their session cookie.
type Gate struct {
	verifier Verifier
	lg       *logger.Logger
}

func NewGate(v Verifier, lg *logger.Logger) *Gate {
	return &Gate{verifier: v, lg: lg}
}

// Authenticate resolves the Cookie header to an identity. A missing cookie is
// domain.ErrNotSignedIn and is never sent for verification.
func (g *Gate) Authenticate(ctx context.Context, cookieHeader string) (identity.Identity, error) {
	cred := ParseCookies(cookieHeader)[CookieName]
	if cred == "" {
		return identity.Identity{}, domain.ErrNotSignedIn
	}
	id, err := g.verifier.VerifySession(ctx, cred, true)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			return identity.Identity{}, err
		}
		if !errors.Is(err, domain.ErrInvalidSession) {
			err = errors.Join(domain.ErrInvalidSession, err)
		}
		return identity.Identity{}, err
	}
	return id, nil
}

// Require rejects unauthenticated requests and stores the identity in the context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(r.Context(), r.Header.Get("Cookie"))
		if err != nil {
			httpx.WriteServiceError(w, g.lg, err, "Session check failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(identity.Identity)
	return id, ok
}
