package http

import (
	"net/http"

	"library-backend/internal/service"
)

type BorrowHandler struct {
	borrowService service.BorrowService
}

func NewBorrowHandler(borrowService service.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

func (h *BorrowHandler) RequestBorrow(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		BookID int32 `json:"book_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BookID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "book_id is required"})
		return
	}

	record, err := h.borrowService.RequestBorrow(r.Context(), caller, req.BookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BorrowHandler) Status(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}

	status, err := h.borrowService.GetUserBorrowingStatus(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *BorrowHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid borrow id"})
		return
	}

	record, err := h.borrowService.RequestReturn(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BorrowHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid borrow id"})
		return
	}

	if err := h.borrowService.CancelReservation(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Admin endpoints below.

func (h *BorrowHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	records, total, err := h.borrowService.ListAllBorrows(r.Context(), caller, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, records, total, page, pageSize)
}

func (h *BorrowHandler) ConfirmCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid borrow id"})
		return
	}
	var req struct {
		LoanDays int32 `json:"loan_days"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.borrowService.ConfirmCollection(r.Context(), caller, id, req.LoanDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BorrowHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid borrow id"})
		return
	}

	record, err := h.borrowService.ConfirmReturn(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// SweepExpired runs the reservation-expiry sweep on demand, outside the
// cron schedule. The route is admin-gated by the router.
func (h *BorrowHandler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	count, err := h.borrowService.CancelExpiredReservations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"cancelled": count})
}
