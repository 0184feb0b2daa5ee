// Package session carries the signed session credential in a cookie and guards protected
// routes with it.
package session

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const CookieName = "session"

// ParseCookies splits a raw Cookie header. Pairs split on the first "=", names and values
// are percent-decoded when they decode cleanly, and a bare name maps to "".
func ParseCookies(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			out[part] = ""
			continue
		}
		out[decode(name)] = decode(value)
	}
	return out
}

func decode(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Cookies writes the session cookie with a fixed attribute set.
type Cookies struct {
	SameSite string
	Secure   bool
}

// Build renders a Set-Cookie value. maxAge < 0 omits Max-Age.
func (c Cookies) Build(name, value string, maxAge int) string {
	sameSite := c.SameSite
	if sameSite == "" {
		sameSite = "None"
	}
	parts := []string{
		name + "=" + encode(value),
		"Path=/",
		"HttpOnly",
		"SameSite=" + sameSite,
	}
	if c.Secure {
		parts = append(parts, "Secure")
	}
	if maxAge >= 0 {
		parts = append(parts, "Max-Age="+strconv.Itoa(maxAge))
	}
	return strings.Join(parts, "; ")
}

func (c Cookies) Issue(w http.ResponseWriter, credential string, lifetime time.Duration) {
	w.Header().Set("Set-Cookie", c.Build(CookieName, credential, int(lifetime/time.Second)))
}

func (c Cookies) Clear(w http.ResponseWriter) {
	w.Header().Set("Set-Cookie", c.Build(CookieName, "", 0))
}
