package http

import (
	"encoding/json"
	"net/http"

	"library-backend/internal/domain"
	"library-backend/internal/logger"
)

type errorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
}

type pagedResponse struct {
	Items    interface{} `json:"items"`
	Total    int32       `json:"total"`
	Page     int32       `json:"page"`
	PageSize int32       `json:"page_size"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func writePaged(w http.ResponseWriter, items interface{}, total, page, pageSize int32) {
	writeJSON(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// writeError maps domain error kinds onto HTTP status codes. Unclassified
// errors are logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	var status int
	switch kind {
	case domain.ErrKindNotFound:
		status = http.StatusNotFound
	case domain.ErrKindUnauthorized:
		status = http.StatusForbidden
	case domain.ErrKindInvalidState, domain.ErrKindAlreadyHeld, domain.ErrKindAlreadyPaid, domain.ErrKindDeletionBlocked:
		status = http.StatusConflict
	case domain.ErrKindLimitExceeded, domain.ErrKindOverdueBlock, domain.ErrKindEmptySelection:
		status = http.StatusUnprocessableEntity
	default:
		logger.Error("Unhandled error in request", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
