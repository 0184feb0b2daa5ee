package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/config"
	"tablecheck/internal/docstore"
	"tablecheck/internal/events"
	"tablecheck/internal/identity"
)

func init() { logger.SetOutput(io.Discard) }

var providerSecret = []byte("provider-secret")

type stubProvider struct{ t *testing.T }

func (p stubProvider) token(uid string) string {
	now := time.Now()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uid, "email": uid + "@example.com", "iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	}).SignedString(providerSecret)
	require.NoError(p.t, err)
	return s
}

func (p stubProvider) SignUp(_ context.Context, email, _ string) (identity.Account, error) {
	return identity.Account{UID: "new-user", Email: email, IDToken: p.token("new-user")}, nil
}

func (p stubProvider) SignIn(_ context.Context, email, password string) (identity.Account, error) {
	if password != "secret" {
		return identity.Account{}, &identity.ProviderError{Status: 400, Message: "INVALID_PASSWORD"}
	}
	return identity.Account{UID: "staff-1", Email: email, IDToken: p.token("staff-1")}, nil
}

type testAPI struct {
	t     *testing.T
	srv   *httptest.Server
	store docstore.Store
}

func newTestAPI(t *testing.T, mutate func(*config.Config)) *testAPI {
	cfg := config.Default()
	cfg.Identity.SessionSecret = "session-secret"
	cfg.Cookies.Secure = false
	cfg.Cookies.SameSite = "Lax"
	if mutate != nil {
		mutate(cfg)
	}

	store := docstore.NewMemory()
	sessions := identity.NewSessions([]byte(cfg.Identity.SessionSecret), cfg.Identity.SessionIssuer,
		identity.NewHMACVerifier(providerSecret, ""), identity.NewDocRevocations(store))

	srv := httptest.NewServer(NewRouter(cfg, Deps{
		Store:    store,
		Sessions: sessions,
		Provider: stubProvider{t: t},
		Events:   events.Noop{},
	}))
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, store: store}
}

func (a *testAPI) do(method, path, body, cookie string, headers ...string) (*http.Response, string) {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(b)
}

// signIn returns the "session=..." pair from the Set-Cookie header.
func (a *testAPI) signIn() string {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/auth/signin", `{"email":"staff@example.com","password":"secret"}`, "")
	require.Equal(a.t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(a.t, `{"ok":true}`, body)
	set := resp.Header.Get("Set-Cookie")
	require.NotEmpty(a.t, set)
	return strings.SplitN(set, ";", 2)[0]
}

func TestHealthAndNotFound(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, body := api.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Service is running", body)

	resp, body = api.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, body)

	resp, body = api.do(http.MethodDelete, "/orders", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, body)
}

func TestPreflight(t *testing.T) {
	api := newTestAPI(t, nil)
	resp, _ := api.do(http.MethodOptions, "/orders", "", "", "Origin", "https://host.example")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://host.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, rt := range []struct{ method, path string }{
		{http.MethodPost, "/orders"},
		{http.MethodPost, "/now-serving"},
		{http.MethodPost, "/now-serving/next"},
		{http.MethodPost, "/table"},
		{http.MethodPost, "/tables/lookup"},
		{http.MethodPut, "/table"},
	} {
		resp, body := api.do(rt.method, rt.path, `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, rt.path)
		assert.JSONEq(t, `{"error":"Not signed in"}`, body)

		resp, body = api.do(rt.method, rt.path, `{}`, "session=abc")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, rt.path)
		assert.JSONEq(t, `{"error":"Invalid session"}`, body)
	}
}

func TestOrderPlacementAnnouncesTicket(t *testing.T) {
	api := newTestAPI(t, nil)
	require.NoError(t, api.store.Set(context.Background(), "counters", "orderQueue", docstore.Fields{"value": 4}, docstore.Overwrite))
	cookie := api.signIn()

	resp, body := api.do(http.MethodPost, "/orders",
		`{"items":[{"id":"x","qty":2}],"subtotal":10,"tax":1,"total":11,"note":""}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, "5", created["ticketNumber"])
	assert.Equal(t, 10.0, created["subtotal"])
	assert.Equal(t, 1.0, created["tax"])
	assert.Equal(t, 11.0, created["total"])
	assert.NotEmpty(t, created["orderId"])
	assert.NotEmpty(t, created["createdAt"])

	resp, body = api.do(http.MethodGet, "/now-serving", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"value":5}`, body)

	doc, found, err := api.store.Get(context.Background(), "orders", created["orderId"].(string))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "staff-1", doc.Fields["userId"])
	assert.Equal(t, "placed", doc.Fields["status"])
}

func TestOrderValidation(t *testing.T) {
	api := newTestAPI(t, nil)
	cookie := api.signIn()

	resp, body := api.do(http.MethodPost, "/orders", `{"items":[],"total":0}`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "items")

	resp, _ = api.do(http.MethodPost, "/orders", `{"items":`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNowServingEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	cookie := api.signIn()

	_, body := api.do(http.MethodGet, "/now-serving", "", "")
	assert.JSONEq(t, `{"value":1}`, body)

	resp, body := api.do(http.MethodPost, "/now-serving", `{"value":7.9}`, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"value":7}`, body)

	resp, body = api.do(http.MethodPost, "/now-serving/next", "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"value":8}`, body)

	for _, bad := range []string{`{"value":"9"}`, `{"value":null}`, `{}`, `{"value":1e19}`, `{"value":-1e19}`} {
		resp, _ = api.do(http.MethodPost, "/now-serving", bad, cookie)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}

	_, body = api.do(http.MethodGet, "/now-serving", "", "")
	assert.JSONEq(t, `{"value":8}`, body)
}

func TestTableRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	cookie := api.signIn()

	resp, body := api.do(http.MethodPost, "/table", `{"phone":"555-0101"}`, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No table found for that phone number."}`, body)

	resp, body = api.do(http.MethodPut, "/table", `{"phone_no":"555-0101","table":4}`, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"phoneNumber":"555-0101","tableNumber":"4"}`, body)

	resp, body = api.do(http.MethodPost, "/tables/lookup", `{"phoneNumber":" 555-0101 "}`, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"phoneNumber":"555-0101","tableNumber":"4"}`, body)

	resp, body = api.do(http.MethodPost, "/table", `{}`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"phoneNumber is required"}`, body)

	resp, _ = api.do(http.MethodPut, "/table", `{"phoneNumber":"555"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodPut, "/table", `{"phoneNumber":false,"phone":"555-0202","tableNumber":0,"table":9}`, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"phoneNumber":"555-0202","tableNumber":"9"}`, body)
}

func TestMenu(t *testing.T) {
	api := newTestAPI(t, nil)
	require.NoError(t, api.store.Set(context.Background(), "menu", "soup", docstore.Fields{"name": "Soup", "price": 4.5}, docstore.Overwrite))

	resp, body := api.do(http.MethodGet, "/menu", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":"soup","name":"Soup","price":4.5}]`, body)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, func(c *config.Config) { c.Server.AdminSecret = "letmein" })

	resp, body := api.do(http.MethodPost, "/auth/signup", `{"email":"n@example.com","password":"pw"}`, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Forbidden"}`, body)

	resp, body = api.do(http.MethodPost, "/auth/signup", `{"email":"n@example.com"}`, "", "x-admin-secret", "letmein")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"email and password are required"}`, body)

	resp, body = api.do(http.MethodPost, "/auth/signup", `{"email":"n@example.com","password":"pw"}`, "", "x-admin-secret", "letmein")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"uid":"new-user","email":"n@example.com"}`, body)
	set := resp.Header.Get("Set-Cookie")
	assert.Contains(t, set, "; Path=/; HttpOnly; SameSite=Lax; Max-Age=604800")

	resp, body = api.do(http.MethodPost, "/auth/signin", `{"email":"staff@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"INVALID_PASSWORD"}`, body)

	cookie := api.signIn()
	resp, _ = api.do(http.MethodPost, "/now-serving/next", "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(http.MethodPost, "/auth/signout", "", cookie)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "session=; Path=/; HttpOnly; SameSite=Lax; Max-Age=0", resp.Header.Get("Set-Cookie"))

	resp, body = api.do(http.MethodPost, "/now-serving/next", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid session"}`, body)
}
