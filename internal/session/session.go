// Package session derives the visitor identifier that groups clicks from
// the same visitor for analytics. The identifier is advisory only and is
// never an authentication credential.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName carries the visitor token between redirects.
	CookieName = "lynx_vid"

	// TTL is the sliding session window. Every redirect that sees an
	// unexpired token pushes its expiry out by this much.
	TTL = 30 * time.Minute

	digestLen = 16
)

// Deriver computes session identifiers. Strategy is one of:
//
//   - "random": a fresh opaque uuid per session. Preferred — the id carries
//     no visitor-derived data.
//   - "digest": sha256(ip|ua|calendar day) truncated, so the same visitor on
//     the same day collapses to one session even across clients that drop
//     cookies.
type Deriver struct {
	strategy string
}

func NewDeriver(strategy string) *Deriver {
	return &Deriver{strategy: strategy}
}

// Derive returns the session id for a request and whether a new token was
// minted. An unexpired existing token is kept as-is; the caller re-issues
// the cookie either way so the expiry keeps sliding. A missing client IP
// degrades grouping but never fails.
func (d *Deriver) Derive(ip, userAgent, existingToken string, now time.Time) (string, bool) {
	if id, ok := parseToken(existingToken, now); ok {
		return id, false
	}

	if d.strategy == "digest" {
		sum := sha256.Sum256([]byte(ip + "|" + userAgent + "|" + now.UTC().Format("2006-01-02")))
		return hex.EncodeToString(sum[:])[:digestLen], true
	}
	return uuid.NewString(), true
}

// EncodeToken packs an id with its expiry for the cookie value.
func EncodeToken(id string, now time.Time) string {
	return fmt.Sprintf("%s.%d", id, now.Add(TTL).Unix())
}

// parseToken splits an "id.expiryUnix" token and rejects expired or
// malformed values.
func parseToken(token string, now time.Time) (string, bool) {
	if token == "" {
		return "", false
	}
	idx := strings.LastIndex(token, ".")
	if idx <= 0 {
		return "", false
	}
	exp, err := strconv.ParseInt(token[idx+1:], 10, 64)
	if err != nil {
		return "", false
	}
	if now.Unix() >= exp {
		return "", false
	}
	return token[:idx], true
}

// SetCookie (re-)issues the visitor cookie with a fresh sliding expiry.
func SetCookie(w http.ResponseWriter, id string, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    EncodeToken(id, now),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TTL.Seconds()),
	})
}

// FromRequest extracts the raw token from the request, if any.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
