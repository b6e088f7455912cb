package service

import (
	"context"

	"library-backend/internal/domain"
)

// Caller is the verified identity extracted from the bearer token. It is
// passed explicitly into every operation that acts on behalf of a user;
// role checks run against this, never against client-supplied fields.
type Caller struct {
	UserID int32
	Role   domain.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error) // user, access, refresh
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type BookService interface {
	AddBook(ctx context.Context, caller Caller, book *domain.Book) error
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	UpdateBook(ctx context.Context, caller Caller, book *domain.Book) error
	DeleteBook(ctx context.Context, caller Caller, id int32) error
	ListBooks(ctx context.Context, query, category string, page, pageSize int32) ([]domain.Book, int32, error)
}

type BorrowService interface {
	RequestBorrow(ctx context.Context, caller Caller, bookID int32) (*domain.BorrowRecord, error)
	ConfirmCollection(ctx context.Context, caller Caller, borrowID, loanDays int32) (*domain.BorrowRecord, error)
	RequestReturn(ctx context.Context, caller Caller, borrowID int32) (*domain.BorrowRecord, error)
	ConfirmReturn(ctx context.Context, caller Caller, borrowID int32) (*domain.BorrowRecord, error)
	CancelReservation(ctx context.Context, caller Caller, borrowID int32) error
	GetUserBorrowingStatus(ctx context.Context, caller Caller) (*domain.BorrowingStatus, error)
	ListAllBorrows(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.BorrowRecord, int32, error)

	// Periodic sweeps; idempotent, per-record failures are logged and
	// skipped rather than aborting the batch.
	CancelExpiredReservations(ctx context.Context) (int32, error)
	MarkOverdue(ctx context.Context) (int32, error)
}

type FineService interface {
	CreateFine(ctx context.Context, caller Caller, borrowRecordID, amountCents int32, reason string) (*domain.Fine, error)
	ListMyFines(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Fine, int32, error)
	ListAllFines(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Fine, int32, error)
	SubmitPayment(ctx context.Context, caller Caller, fineIDs []int32, proof, copyNumber string) (*domain.FinePayment, error)
	ListMyPayments(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.FinePayment, int32, error)
	ListAllPayments(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.FinePayment, int32, error)
	ApprovePayment(ctx context.Context, caller Caller, paymentID int32) (*domain.FinePayment, error)
	RejectPayment(ctx context.Context, caller Caller, paymentID int32, reason string) (*domain.FinePayment, error)
}

type UserService interface {
	GetProfile(ctx context.Context, caller Caller) (*domain.User, error)
	DeleteProfile(ctx context.Context, caller Caller) error
	SubmitMembershipPayment(ctx context.Context, caller Caller, proof, copyNumber string) (*domain.MembershipPayment, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.User, int32, error)
	PromoteUser(ctx context.Context, caller Caller, userID int32) (*domain.User, error)
	DemoteUser(ctx context.Context, caller Caller, userID int32) (*domain.User, error)
	DeleteUser(ctx context.Context, caller Caller, userID int32) error
	ListMembershipPayments(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.MembershipPayment, int32, error)
	ApproveMembershipPayment(ctx context.Context, caller Caller, paymentID int32) (*domain.MembershipPayment, error)
	RejectMembershipPayment(ctx context.Context, caller Caller, paymentID int32, reason string) (*domain.MembershipPayment, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, caller Caller, notificationID int32) error
}

type EmailService interface {
	SendReservationReadyNotification(ctx context.Context, email, name, bookTitle string, expiresAt string) error
	SendOverdueReminder(ctx context.Context, email, name, bookTitle string, dueDate string) error
	SendFineIssuedNotification(ctx context.Context, email, name, bookTitle string, amountCents int32) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}
