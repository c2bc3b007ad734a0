package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lynxlabs/lynx/internal/analytics"
	"github.com/lynxlabs/lynx/internal/models"
)

// StatsHandler serves the dashboard query interface. Everything is
// recomputed from stored clicks on each request.
type StatsHandler struct {
	DB   *sql.DB
	TopN int
}

type statsResponse struct {
	LinkID     int64               `json:"link_id"`
	Range      string              `json:"range"`
	From       time.Time           `json:"from"`
	To         time.Time           `json:"to"`
	Summary    analytics.Summary   `json:"summary"`
	Series     []analytics.Bucket  `json:"series"`
	Breakdowns map[string][]analytics.Slice `json:"breakdowns"`
	Hourly     [24]int             `json:"hourly"`
}

type overviewResponse struct {
	TotalLinks    int                    `json:"total_links"`
	ClicksToday   int                    `json:"clicks_today"`
	ClicksAllTime int                    `json:"clicks_all_time"`
	TopLinks      []models.LinkWithClicks `json:"top_links"`
}

func (h *StatsHandler) LinkStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, CodeBadRequest, "invalid id", http.StatusBadRequest)
		return
	}

	link := &models.Link{ID: id}
	if err := models.GetLinkByID(h.DB, link); err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, CodeLinkNotFound, "not found", http.StatusNotFound)
			return
		}
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}

	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = "24h"
	}
	now := time.Now().UTC()
	from, width, ok := analytics.RangeBounds(rangeName, now)
	if !ok {
		jsonError(w, CodeBadRequest, "unknown range", http.StatusBadRequest)
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}

	clicks, err := models.ClicksForLinkInRange(r.Context(), h.DB, id, from, now)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		LinkID:  id,
		Range:   rangeName,
		From:    from,
		To:      now,
		Summary: analytics.Summarize(clicks),
		Series:  analytics.TimeSeries(clicks, from, now, width, loc),
		Breakdowns: map[string][]analytics.Slice{
			"countries": analytics.BreakdownBy(clicks, analytics.CountryLabel, h.TopN),
			"cities":    analytics.BreakdownBy(clicks, analytics.CityLabel, h.TopN),
			"devices":   analytics.BreakdownBy(clicks, analytics.DeviceLabel, h.TopN),
			"browsers":  analytics.BreakdownBy(clicks, analytics.BrowserLabel, h.TopN),
			"oses":      analytics.BreakdownBy(clicks, analytics.OSLabel, h.TopN),
			"referrers": analytics.BreakdownBy(clicks, analytics.ReferrerLabel, h.TopN),
		},
		Hourly: analytics.HourlyDistribution(clicks, loc),
	})
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	totalLinks, err := models.TotalLinkCount(h.DB)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	today, err := models.ClicksToday(h.DB)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	allTime, err := models.ClicksAllTime(h.DB)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	topLinks, err := models.TopLinksByClicks(h.DB, h.TopN)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	if topLinks == nil {
		topLinks = []models.LinkWithClicks{}
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		TotalLinks:    totalLinks,
		ClicksToday:   today,
		ClicksAllTime: allTime,
		TopLinks:      topLinks,
	})
}
