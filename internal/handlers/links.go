package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lynxlabs/lynx/internal/cache"
	"github.com/lynxlabs/lynx/internal/config"
	"github.com/lynxlabs/lynx/internal/models"
	"github.com/lynxlabs/lynx/internal/slug"
)

// LinkHandler is the link-management API: the collaborator surface that
// owns link records and guarantees short-code uniqueness at creation.
type LinkHandler struct {
	DB    *sql.DB
	Cfg   *config.Config
	Cache *cache.LinkCache
}

type linkRequest struct {
	ShortCode       string `json:"short_code"`
	Destination     string `json:"destination"`
	Title           string `json:"title"`
	Notes           string `json:"notes"`
	Owner           string `json:"owner"`
	TrackingEnabled *bool  `json:"tracking_enabled"`
	IsActive        *bool  `json:"is_active"`
	ExpiresAt       string `json:"expires_at"` // RFC 3339, empty clears
}

type listResponse struct {
	Links  []models.Link `json:"links"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, CodeBadRequest, "invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Destination == "" {
		jsonError(w, CodeBadRequest, "destination is required", http.StatusBadRequest)
		return
	}
	if u, err := url.Parse(req.Destination); err != nil || u.Scheme == "" || u.Host == "" {
		jsonError(w, CodeBadRequest, "destination must be an absolute URL", http.StatusBadRequest)
		return
	}

	expiresAt, ok := parseExpiry(req.ExpiresAt)
	if !ok {
		jsonError(w, CodeBadRequest, "expires_at must be RFC 3339", http.StatusBadRequest)
		return
	}

	// Generate a short code if not provided, with collision retry. A caller
	// supplied code that already exists fails on the UNIQUE constraint.
	if req.ShortCode == "" {
		for i := 0; i < 10; i++ {
			candidate, err := slug.Generate()
			if err != nil {
				jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
				return
			}
			exists, err := models.ShortCodeExists(h.DB, candidate)
			if err != nil {
				jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
				return
			}
			if !exists {
				req.ShortCode = candidate
				break
			}
		}
		if req.ShortCode == "" {
			jsonError(w, CodeInternal, "failed to generate unique short code", http.StatusInternalServerError)
			return
		}
	}

	link := &models.Link{
		ShortCode:       req.ShortCode,
		Destination:     req.Destination,
		Title:           req.Title,
		Notes:           req.Notes,
		Owner:           req.Owner,
		IsActive:        true,
		TrackingEnabled: req.TrackingEnabled == nil || *req.TrackingEnabled,
		ExpiresAt:       expiresAt,
	}

	if err := models.CreateLink(h.DB, link); err != nil {
		jsonError(w, CodeInternal, "failed to create link: "+err.Error(), http.StatusInternalServerError)
		return
	}
	link.FillShortURL(h.Cfg.BaseURL)

	writeJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	search := r.URL.Query().Get("search")

	links, total, err := models.ListLinks(h.DB, limit, offset, search)
	if err != nil {
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []models.Link{}
	}
	for i := range links {
		links[i].FillShortURL(h.Cfg.BaseURL)
	}

	writeJSON(w, http.StatusOK, listResponse{
		Links:  links,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, ok := h.fetchLink(w, r)
	if !ok {
		return
	}
	link.FillShortURL(h.Cfg.BaseURL)
	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	link, ok := h.fetchLink(w, r)
	if !ok {
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, CodeBadRequest, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Invalidate under the old code before any rename takes effect
	h.Cache.Invalidate(link.ShortCode)

	if req.ShortCode != "" {
		link.ShortCode = req.ShortCode
	}
	if req.Destination != "" {
		link.Destination = req.Destination
	}
	link.Title = req.Title
	link.Notes = req.Notes
	if req.Owner != "" {
		link.Owner = req.Owner
	}
	if req.TrackingEnabled != nil {
		link.TrackingEnabled = *req.TrackingEnabled
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}
	if req.ExpiresAt != "" {
		expiresAt, ok := parseExpiry(req.ExpiresAt)
		if !ok {
			jsonError(w, CodeBadRequest, "expires_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		link.ExpiresAt = expiresAt
	}

	if err := models.UpdateLink(h.DB, link); err != nil {
		jsonError(w, CodeInternal, "failed to update: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate(link.ShortCode)
	link.FillShortURL(h.Cfg.BaseURL)

	writeJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, CodeBadRequest, "invalid id", http.StatusBadRequest)
		return
	}

	// Fetch first so the cached entry can be dropped
	link := &models.Link{ID: id}
	if err := models.GetLinkByID(h.DB, link); err == nil {
		h.Cache.Invalidate(link.ShortCode)
	}

	if err := models.SoftDeleteLink(h.DB, id); err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, CodeLinkNotFound, "not found", http.StatusNotFound)
			return
		}
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) fetchLink(w http.ResponseWriter, r *http.Request) (*models.Link, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, CodeBadRequest, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	link := &models.Link{ID: id}
	if err := models.GetLinkByID(h.DB, link); err != nil {
		if err == sql.ErrNoRows {
			jsonError(w, CodeLinkNotFound, "not found", http.StatusNotFound)
			return nil, false
		}
		jsonError(w, CodeInternal, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return link, true
}

func parseExpiry(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
