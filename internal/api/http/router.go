package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-backend/internal/security"
	"library-backend/internal/service"
)

type RouterConfig struct {
	Tokens        security.TokenManager
	Auth          service.AuthService
	Books         service.BookService
	Borrows       service.BorrowService
	Fines         service.FineService
	Users         service.UserService
	Admin         service.AdminService
	Notifications service.NotificationService
}

// NewRouter assembles the full HTTP surface. Routes are grouped into
// public, authenticated and admin subrouters so the middleware chain is
// declared once per group.
func NewRouter(cfg RouterConfig) *mux.Router {
	authHandler := NewAuthHandler(cfg.Auth)
	bookHandler := NewBookHandler(cfg.Books)
	borrowHandler := NewBorrowHandler(cfg.Borrows)
	fineHandler := NewFineHandler(cfg.Fines)
	userHandler := NewUserHandler(cfg.Users, cfg.Admin)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public routes.
	public := r.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	public.HandleFunc("/auth/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	public.HandleFunc("/auth/reset-password/validate", authHandler.ValidateResetToken).Methods(http.MethodGet)
	public.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)
	public.HandleFunc("/books", bookHandler.List).Methods(http.MethodGet)
	public.HandleFunc("/books/{id:[0-9]+}", bookHandler.Get).Methods(http.MethodGet)

	// Authenticated routes.
	authed := r.PathPrefix("/api/v1").Subrouter()
	authed.Use(AuthMiddleware(cfg.Tokens))
	authed.HandleFunc("/borrows", borrowHandler.RequestBorrow).Methods(http.MethodPost)
	authed.HandleFunc("/borrows/status", borrowHandler.Status).Methods(http.MethodGet)
	authed.HandleFunc("/borrows/{id:[0-9]+}/return", borrowHandler.RequestReturn).Methods(http.MethodPost)
	authed.HandleFunc("/borrows/{id:[0-9]+}/cancel", borrowHandler.CancelReservation).Methods(http.MethodPost)
	authed.HandleFunc("/fines", fineHandler.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/fines/payments", fineHandler.SubmitPayment).Methods(http.MethodPost)
	authed.HandleFunc("/fines/payments", fineHandler.ListMyPayments).Methods(http.MethodGet)
	authed.HandleFunc("/profile", userHandler.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/profile", userHandler.DeleteProfile).Methods(http.MethodDelete)
	authed.HandleFunc("/profile/membership-payments", userHandler.SubmitMembershipPayment).Methods(http.MethodPost)
	authed.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods(http.MethodPost)

	// Admin routes.
	admin := r.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(AuthMiddleware(cfg.Tokens), RequireAdmin)
	admin.HandleFunc("/books", bookHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/books/{id:[0-9]+}", bookHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/books/{id:[0-9]+}", bookHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/borrows", borrowHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/borrows/{id:[0-9]+}/collect", borrowHandler.ConfirmCollection).Methods(http.MethodPost)
	admin.HandleFunc("/borrows/{id:[0-9]+}/return-confirm", borrowHandler.ConfirmReturn).Methods(http.MethodPost)
	admin.HandleFunc("/borrows/sweep-expired", borrowHandler.SweepExpired).Methods(http.MethodPost)
	admin.HandleFunc("/fines", fineHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/fines", fineHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/fines/payments", fineHandler.ListAllPayments).Methods(http.MethodGet)
	admin.HandleFunc("/fines/payments/{id:[0-9]+}/approve", fineHandler.ApprovePayment).Methods(http.MethodPost)
	admin.HandleFunc("/fines/payments/{id:[0-9]+}/reject", fineHandler.RejectPayment).Methods(http.MethodPost)
	admin.HandleFunc("/users", userHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}/promote", userHandler.PromoteUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/demote", userHandler.DemoteUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/membership-payments", userHandler.ListMembershipPayments).Methods(http.MethodGet)
	admin.HandleFunc("/membership-payments/{id:[0-9]+}/approve", userHandler.ApproveMembershipPayment).Methods(http.MethodPost)
	admin.HandleFunc("/membership-payments/{id:[0-9]+}/reject", userHandler.RejectMembershipPayment).Methods(http.MethodPost)

	return r
}
