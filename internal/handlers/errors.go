package handlers

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes for resolution failures.
const (
	CodeLinkNotFound = "link_not_found"
	CodeLinkInactive = "link_inactive"
	CodeLinkExpired  = "link_expired"
	CodeBadRequest   = "bad_request"
	CodeInternal     = "internal_error"
	CodeUnauthorized = "unauthorized"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func jsonError(w http.ResponseWriter, code, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
