package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"library-backend/internal/service"
)

func pathID(r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// pagination reads page/page_size query params with sane defaults and caps.
func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 {
		pageSize = int32(v)
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func mustCaller(w http.ResponseWriter, r *http.Request) (service.Caller, bool) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return service.Caller{}, false
	}
	return caller, true
}
