package repository

import (
	"context"
	"time"

	"library-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	// GetByIDForUpdate locks the book row for the duration of the enclosing
	// transaction so copy-counter updates are serialized per book.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, query, category string, page, pageSize int32) ([]domain.Book, int32, error)
}

type BorrowRepository interface {
	Create(ctx context.Context, rec *domain.BorrowRecord) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowRecord, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.BorrowRecord, error)
	Update(ctx context.Context, rec *domain.BorrowRecord) error
	ListByUser(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRecord, error)
	ListAll(ctx context.Context, status string, page, pageSize int32) ([]domain.BorrowRecord, int32, error)
	// CountHeldByUser counts records in statuses that consume the per-user
	// borrow limit (reserved + borrowed family).
	CountHeldByUser(ctx context.Context, userID int32) (int32, error)
	HasOverdue(ctx context.Context, userID int32) (bool, error)
	HasActiveForBook(ctx context.Context, userID, bookID int32) (bool, error)
	CountActiveByUser(ctx context.Context, userID int32) (int32, error)

	// Queue management
	NextQueuePosition(ctx context.Context, bookID int32) (int32, error)
	QueueHead(ctx context.Context, bookID int32) (*domain.BorrowRecord, error)
	ShiftQueue(ctx context.Context, bookID, afterPosition int32) error

	// Sweep inputs
	ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error)
	ListDueBorrows(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error)
	ListOverdue(ctx context.Context) ([]domain.BorrowRecord, error)
}

type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	GetByID(ctx context.Context, id int32) (*domain.Fine, error)
	GetByIDs(ctx context.Context, ids []int32) ([]domain.Fine, error)
	MarkPaid(ctx context.Context, ids []int32) error
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Fine, int32, error)
	ListAll(ctx context.Context, page, pageSize int32) ([]domain.Fine, int32, error)

	CreatePayment(ctx context.Context, payment *domain.FinePayment) error
	GetPaymentByID(ctx context.Context, id int32) (*domain.FinePayment, error)
	UpdatePayment(ctx context.Context, payment *domain.FinePayment) error
	ListPaymentsByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.FinePayment, int32, error)
	ListAllPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.FinePayment, int32, error)
	// HasPendingPaymentForFines reports whether any of the fines is already
	// referenced by a payment still waiting for approval.
	HasPendingPaymentForFines(ctx context.Context, fineIDs []int32) (bool, error)

	CreateMembershipPayment(ctx context.Context, payment *domain.MembershipPayment) error
	GetMembershipPaymentByID(ctx context.Context, id int32) (*domain.MembershipPayment, error)
	UpdateMembershipPayment(ctx context.Context, payment *domain.MembershipPayment) error
	ListMembershipPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.MembershipPayment, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

// Repositories bundles every repository bound to the same database handle,
// either the shared pool or a single transaction.
type Repositories struct {
	Users         UserRepository
	Books         BookRepository
	Borrows       BorrowRepository
	Fines         FineRepository
	Notifications NotificationRepository
}

// TxRunner executes fn with a Repositories bundle bound to one database
// transaction. Borrow/return/promotion mutations run through it so a book's
// counters and its queue move atomically.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
