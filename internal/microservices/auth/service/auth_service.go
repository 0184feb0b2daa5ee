package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/identity"
)

type AuthServiceInterface interface {
	SignUp(ctx context.Context, creds domain.Credentials) (domain.SignUpResponse, string, error)
	SignIn(ctx context.Context, creds domain.Credentials) (string, error)
	SignOut(ctx context.Context, credential string) error
}

type SessionIssuer interface {
	CreateSession(ctx context.Context, providerToken string, expiresIn time.Duration) (string, error)
	VerifySession(ctx context.Context, credential string, checkRevoked bool) (identity.Identity, error)
	RevokeSession(ctx context.Context, id identity.Identity) error
}

// ErrTokenAfterSignUp means the account exists but no session could be issued for it.
var ErrTokenAfterSignUp = errors.New("user created but token fetch failed")

type AuthService struct {
	provider identity.PasswordProvider
	sessions SessionIssuer
	lifetime time.Duration
	lg       *logger.Logger
}

func NewAuthService(provider identity.PasswordProvider, sessions SessionIssuer, lifetime time.Duration, lg *logger.Logger) AuthServiceInterface {
	if lifetime <= 0 {
		lifetime = identity.SessionLifetime
	}
	return &AuthService{provider: provider, sessions: sessions, lifetime: lifetime, lg: lg}
}

func normalize(c domain.Credentials) (domain.Credentials, error) {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" || c.Password == "" {
		return c, domain.Invalid("email and password are required")
	}
	return c, nil
}

// SignUp creates the account, signs it in and returns the new session credential.
func (s *AuthService) SignUp(ctx context.Context, creds domain.Credentials) (domain.SignUpResponse, string, error) {
	creds, err := normalize(creds)
	if err != nil {
		return domain.SignUpResponse{}, "", err
	}
	acc, err := s.provider.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return domain.SignUpResponse{}, "", fmt.Errorf("sign up: %w", err)
	}
	s.lg.Info("user_created", map[string]any{"uid": acc.UID})

	token := acc.IDToken
	if token == "" {
		in, err := s.provider.SignIn(ctx, creds.Email, creds.Password)
		if err != nil {
			return domain.SignUpResponse{}, "", errors.Join(ErrTokenAfterSignUp, err)
		}
		token = in.IDToken
	}
	cred, err := s.sessions.CreateSession(ctx, token, s.lifetime)
	if err != nil {
		return domain.SignUpResponse{}, "", errors.Join(ErrTokenAfterSignUp, err)
	}
	return domain.SignUpResponse{UID: acc.UID, Email: acc.Email}, cred, nil
}

func (s *AuthService) SignIn(ctx context.Context, creds domain.Credentials) (string, error) {
	creds, err := normalize(creds)
	if err != nil {
		return "", err
	}
	acc, err := s.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	cred, err := s.sessions.CreateSession(ctx, acc.IDToken, s.lifetime)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.lg.Info("user_signed_in", map[string]any{"uid": acc.UID})
	return cred, nil
}

// SignOut revokes the presented session when it still verifies. Anything else is
// already unusable and is ignored.
func (s *AuthService) SignOut(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	id, err := s.sessions.VerifySession(ctx, credential, false)
	if err != nil {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, id); err != nil {
		return err
	}
	s.lg.Info("user_signed_out", map[string]any{"uid": id.UID, "session_id": id.SessionID})
	return nil
}
