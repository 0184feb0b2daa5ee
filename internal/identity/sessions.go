package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"tablecheck/internal/domain"
)

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Sessions exchanges provider ID tokens for signed session credentials and verifies them
// on every protected request.
type Sessions struct {
	secret   []byte
	issuer   string
	parser   *jwt.Parser
	provider TokenVerifier
	revoked  RevocationStore
	now      func() time.Time
}

func NewSessions(secret []byte, issuer string, provider TokenVerifier, revoked RevocationStore) *Sessions {
	return &Sessions{
		secret:   secret,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		provider: provider,
		revoked:  revoked,
		now:      time.Now,
	}
}

// CreateSession mints a credential for the subject of providerToken. The provider token
// must verify and come from a recent sign-in.
func (s *Sessions) CreateSession(ctx context.Context, providerToken string, expiresIn time.Duration) (string, error) {
	if expiresIn < minSessionLifetime || expiresIn > maxSessionLifetime {
		return "", domain.Invalid("session lifetime must be between %s and %s", minSessionLifetime, maxSessionLifetime)
	}

	pc, err := s.provider.VerifyIDToken(ctx, providerToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}
	now := s.now()
	if !pc.IssuedAt.IsZero() && now.Sub(pc.IssuedAt) > recentSignIn {
		return "", fmt.Errorf("%w: provider token is not from a recent sign-in", domain.ErrInvalidSession)
	}

	claims := sessionClaims{
		Email: pc.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   pc.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// VerifySession checks the credential's signature, issuer and expiry and, with
// checkRevoked, that it was not signed out. Credential problems wrap
// domain.ErrInvalidSession; a failing revocation lookup wraps domain.ErrUpstream.
func (s *Sessions) VerifySession(ctx context.Context, credential string, checkRevoked bool) (Identity, error) {
	var claims sessionClaims
	_, err := s.parser.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", domain.ErrInvalidSession, claims.Issuer)
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return Identity{}, fmt.Errorf("%w: incomplete claims", domain.ErrInvalidSession)
	}

	id := Identity{
		UID:       claims.Subject,
		Email:     claims.Email,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}

	if checkRevoked && s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, id.SessionID)
		if err != nil {
			return Identity{}, errors.Join(domain.ErrUpstream, err)
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: session revoked", domain.ErrInvalidSession)
		}
	}
	return id, nil
}

// RevokeSession makes every later VerifySession with checkRevoked fail for this session.
func (s *Sessions) RevokeSession(ctx context.Context, id Identity) error {
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, id); err != nil {
		return errors.Join(domain.ErrUpstream, err)
	}
	return nil
}
