package handlers

import (
	"database/sql"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lynxlabs/lynx/internal/analytics"
	"github.com/lynxlabs/lynx/internal/cache"
	"github.com/lynxlabs/lynx/internal/classify"
	"github.com/lynxlabs/lynx/internal/ipcheck"
	"github.com/lynxlabs/lynx/internal/models"
	"github.com/lynxlabs/lynx/internal/session"
)

// RedirectHandler is the hot path: resolve the short code, derive the
// visitor session, classify the request, hand the click to the collector,
// and send the visitor on their way. Only resolution failures surface to
// the visitor; everything else falls back to FallbackURL.
type RedirectHandler struct {
	DB          *sql.DB
	Cache       *cache.LinkCache
	Collector   *analytics.Collector
	Sessions    *session.Deriver
	IPCheck     *ipcheck.Checker // nil when disabled
	FallbackURL string
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("redirect: panic serving %q: %v", r.URL.Path, rec)
			http.Redirect(w, r, h.FallbackURL, http.StatusFound)
		}
	}()

	code := strings.Trim(r.URL.Path, "/")
	if code == "" || strings.Contains(code, "/") {
		jsonError(w, CodeLinkNotFound, "short link not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()

	// Cache first; state (active, expired) is re-evaluated every request so
	// cached links still age out.
	link, found := h.Cache.Get(code)
	if !found {
		var err error
		link, err = models.GetLinkByShortCode(r.Context(), h.DB, code)
		if err != nil {
			if err == sql.ErrNoRows {
				jsonError(w, CodeLinkNotFound, "short link not found", http.StatusNotFound)
				return
			}
			// Store trouble is not the visitor's problem
			log.Printf("redirect: resolve %q: %v", code, err)
			http.Redirect(w, r, h.FallbackURL, http.StatusFound)
			return
		}
		h.Cache.Set(code, link)
	}

	switch models.Evaluate(link, now) {
	case models.ResolutionExpired:
		jsonError(w, CodeLinkExpired, "this short link has expired", http.StatusGone)
		return
	case models.ResolutionInactive:
		jsonError(w, CodeLinkInactive, "short link not found", http.StatusNotFound)
		return
	case models.ResolutionNotFound:
		jsonError(w, CodeLinkNotFound, "short link not found", http.StatusNotFound)
		return
	}

	ip := clientIP(r)
	sessionID, _ := h.Sessions.Derive(ip, r.UserAgent(), session.FromRequest(r), now)
	session.SetCookie(w, sessionID, now)

	if link.TrackingEnabled {
		isBot := classify.IsBot(r.UserAgent()) || h.IPCheck.IsDatacenter(ip)
		h.Collector.Push(analytics.RawClick{
			LinkID:    link.ID,
			ClickedAt: now,
			IP:        ip,
			UserAgent: r.UserAgent(),
			Referer:   r.Referer(),
			SessionID: sessionID,
			IsBot:     isBot,
			UTM:       analytics.UTMFromQuery(r.URL.Query()),
			Query:     r.URL.RawQuery,
		})
	}

	http.Redirect(w, r, link.Destination, http.StatusFound)
}

// clientIP trusts RemoteAddr: chi's RealIP middleware has already folded
// X-Forwarded-For / X-Real-IP into it.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
