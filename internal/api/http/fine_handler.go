package http

import (
	"net/http"

	"library-backend/internal/service"
)

type FineHandler struct {
	fineService service.FineService
}

func NewFineHandler(fineService service.FineService) *FineHandler {
	return &FineHandler{fineService: fineService}
}

func (h *FineHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	fines, total, err := h.fineService.ListMyFines(r.Context(), caller, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, fines, total, page, pageSize)
}

func (h *FineHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		FineIDs    []int32 `json:"fine_ids"`
		Proof      string  `json:"proof"`
		CopyNumber string  `json:"copy_number"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.fineService.SubmitPayment(r.Context(), caller, req.FineIDs, req.Proof, req.CopyNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *FineHandler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	payments, total, err := h.fineService.ListMyPayments(r.Context(), caller, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, payments, total, page, pageSize)
}

// Admin endpoints below.

func (h *FineHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		BorrowRecordID int32  `json:"borrow_record_id"`
		AmountCents    int32  `json:"amount_cents"`
		Reason         string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BorrowRecordID <= 0 || req.AmountCents <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "borrow_record_id and a positive amount_cents are required"})
		return
	}

	fine, err := h.fineService.CreateFine(r.Context(), caller, req.BorrowRecordID, req.AmountCents, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fine)
}

func (h *FineHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	fines, total, err := h.fineService.ListAllFines(r.Context(), caller, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, fines, total, page, pageSize)
}

func (h *FineHandler) ListAllPayments(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	payments, total, err := h.fineService.ListAllPayments(r.Context(), caller, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, payments, total, page, pageSize)
}

func (h *FineHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payment id"})
		return
	}

	payment, err := h.fineService.ApprovePayment(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *FineHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payment id"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.fineService.RejectPayment(r.Context(), caller, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
