package http

import (
	"net/http"

	"library-backend/internal/service"
)

type UserHandler struct {
	userService  service.UserService
	adminService service.AdminService
}

func NewUserHandler(userService service.UserService, adminService service.AdminService) *UserHandler {
	return &UserHandler{userService: userService, adminService: adminService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteProfile(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *UserHandler) SubmitMembershipPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req struct {
		Proof      string `json:"proof"`
		CopyNumber string `json:"copy_number"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.userService.SubmitMembershipPayment(r.Context(), caller, req.Proof, req.CopyNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// Admin endpoints below.

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)

	users, total, err := h.adminService.ListUsers(r.Context(), caller, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, users, total, page, pageSize)
}

func (h *UserHandler) PromoteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	user, err := h.adminService.PromoteUser(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DemoteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	user, err := h.adminService.DemoteUser(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *UserHandler) ListMembershipPayments(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	status := r.URL.Query().Get("status")

	payments, total, err := h.adminService.ListMembershipPayments(r.Context(), caller, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, payments, total, page, pageSize)
}

func (h *UserHandler) ApproveMembershipPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payment id"})
		return
	}

	payment, err := h.adminService.ApproveMembershipPayment(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *UserHandler) RejectMembershipPayment(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.adminService.RejectMembershipPayment(r.Context(), caller, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
