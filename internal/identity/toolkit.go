package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"tablecheck/internal/domain"
)

// Account is what the provider returns after a password sign-up or sign-in.
type Account struct {
	UID     string
	Email   string
	IDToken string
}

// PasswordProvider creates and signs in email/password accounts.
type PasswordProvider interface {
	SignUp(ctx context.Context, email, password string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
}

// ProviderError is a 4xx answer from the provider, e.g. INVALID_PASSWORD.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Message)
}

// ToolkitClient talks to the Identity Toolkit REST API (or its emulator via baseURL).
type ToolkitClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewToolkitClient(baseURL, apiKey string, timeout time.Duration) *ToolkitClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ToolkitClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ToolkitClient) SignUp(ctx context.Context, email, password string) (Account, error) {
	return c.call(ctx, "accounts:signUp", email, password)
}

func (c *ToolkitClient) SignIn(ctx context.Context, email, password string) (Account, error) {
	return c.call(ctx, "accounts:signInWithPassword", email, password)
}

func (c *ToolkitClient) call(ctx context.Context, method, email, password string) (Account, error) {
	if c.apiKey == "" {
		return Account{}, errors.Join(domain.ErrUpstream, errors.New("identity api key is not set"))
	}
	body, err := sonic.Marshal(passwordRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return Account{}, err
	}

	endpoint := c.baseURL + "/v1/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Account{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Account{}, errors.Join(domain.ErrUpstream, fmt.Errorf("%s: %w", method, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Account{}, errors.Join(domain.ErrUpstream, fmt.Errorf("%s: read body: %w", method, err))
	}

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = sonic.Unmarshal(raw, &er)
		if resp.StatusCode < 500 {
			return Account{}, &ProviderError{Status: resp.StatusCode, Message: er.Error.Message}
		}
		return Account{}, errors.Join(domain.ErrUpstream, fmt.Errorf("%s: status %d %s", method, resp.StatusCode, er.Error.Message))
	}

	var ar accountResponse
	if err := sonic.Unmarshal(raw, &ar); err != nil {
		return Account{}, errors.Join(domain.ErrUpstream, fmt.Errorf("%s: decode: %w", method, err))
	}
	if ar.IDToken == "" {
		return Account{}, errors.Join(domain.ErrUpstream, fmt.Errorf("%s: response has no idToken", method))
	}
	return Account{UID: ar.LocalID, Email: ar.Email, IDToken: ar.IDToken}, nil
}
