package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

// fakeTxRunner runs the transactional closure directly against the mock
// repositories, standing in for a real database transaction.
type fakeTxRunner struct {
	repos repository.Repositories
}

func (f *fakeTxRunner) WithinTx(_ context.Context, fn func(r repository.Repositories) error) error {
	return fn(f.repos)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, page, pageSize int32) ([]domain.User, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookRepo) List(ctx context.Context, query, category string, page, pageSize int32) ([]domain.Book, int32, error) {
	args := m.Called(ctx, query, category, page, pageSize)
	return args.Get(0).([]domain.Book), args.Get(1).(int32), args.Error(2)
}

// MockBorrowRepo
type MockBorrowRepo struct {
	mock.Mock
}

func (m *MockBorrowRepo) Create(ctx context.Context, rec *domain.BorrowRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockBorrowRepo) GetByID(ctx context.Context, id int32) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) Update(ctx context.Context, rec *domain.BorrowRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockBorrowRepo) ListByUser(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, userID, statuses)
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) ListAll(ctx context.Context, status string, page, pageSize int32) ([]domain.BorrowRecord, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.BorrowRecord), args.Get(1).(int32), args.Error(2)
}
func (m *MockBorrowRepo) CountHeldByUser(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockBorrowRepo) HasOverdue(ctx context.Context, userID int32) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockBorrowRepo) HasActiveForBook(ctx context.Context, userID, bookID int32) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}
func (m *MockBorrowRepo) CountActiveByUser(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockBorrowRepo) NextQueuePosition(ctx context.Context, bookID int32) (int32, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockBorrowRepo) QueueHead(ctx context.Context, bookID int32) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) ShiftQueue(ctx context.Context, bookID, afterPosition int32) error {
	args := m.Called(ctx, bookID, afterPosition)
	return args.Error(0)
}
func (m *MockBorrowRepo) ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) ListDueBorrows(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}
func (m *MockBorrowRepo) ListOverdue(ctx context.Context) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}

// MockFineRepo
type MockFineRepo struct {
	mock.Mock
}

func (m *MockFineRepo) Create(ctx context.Context, fine *domain.Fine) error {
	args := m.Called(ctx, fine)
	return args.Error(0)
}
func (m *MockFineRepo) GetByID(ctx context.Context, id int32) (*domain.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fine), args.Error(1)
}
func (m *MockFineRepo) GetByIDs(ctx context.Context, ids []int32) ([]domain.Fine, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Fine), args.Error(1)
}
func (m *MockFineRepo) MarkPaid(ctx context.Context, ids []int32) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
func (m *MockFineRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Fine, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Fine), args.Get(1).(int32), args.Error(2)
}
func (m *MockFineRepo) ListAll(ctx context.Context, page, pageSize int32) ([]domain.Fine, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Fine), args.Get(1).(int32), args.Error(2)
}
func (m *MockFineRepo) CreatePayment(ctx context.Context, payment *domain.FinePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockFineRepo) GetPaymentByID(ctx context.Context, id int32) (*domain.FinePayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinePayment), args.Error(1)
}
func (m *MockFineRepo) UpdatePayment(ctx context.Context, payment *domain.FinePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockFineRepo) ListPaymentsByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.FinePayment), args.Get(1).(int32), args.Error(2)
}
func (m *MockFineRepo) ListAllPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.FinePayment), args.Get(1).(int32), args.Error(2)
}
func (m *MockFineRepo) HasPendingPaymentForFines(ctx context.Context, fineIDs []int32) (bool, error) {
	args := m.Called(ctx, fineIDs)
	return args.Bool(0), args.Error(1)
}
func (m *MockFineRepo) CreateMembershipPayment(ctx context.Context, payment *domain.MembershipPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockFineRepo) GetMembershipPaymentByID(ctx context.Context, id int32) (*domain.MembershipPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipPayment), args.Error(1)
}
func (m *MockFineRepo) UpdateMembershipPayment(ctx context.Context, payment *domain.MembershipPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockFineRepo) ListMembershipPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.MembershipPayment, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.MembershipPayment), args.Get(1).(int32), args.Error(2)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReservationReadyNotification(ctx context.Context, email, name, bookTitle string, expiresAt string) error {
	args := m.Called(ctx, email, name, bookTitle, expiresAt)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, bookTitle string, dueDate string) error {
	args := m.Called(ctx, email, name, bookTitle, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendFineIssuedNotification(ctx context.Context, email, name, bookTitle string, amountCents int32) error {
	args := m.Called(ctx, email, name, bookTitle, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendPasswordReset(ctx context.Context, email, name, token string) error {
	args := m.Called(ctx, email, name, token)
	return args.Error(0)
}

// testRepos bundles fresh mocks with the Repositories view the services take.
type testRepos struct {
	users   *MockUserRepo
	books   *MockBookRepo
	borrows *MockBorrowRepo
	fines   *MockFineRepo
	notes   *MockNotificationRepo
}

func newTestRepos() (*testRepos, repository.Repositories) {
	tr := &testRepos{
		users:   new(MockUserRepo),
		books:   new(MockBookRepo),
		borrows: new(MockBorrowRepo),
		fines:   new(MockFineRepo),
		notes:   new(MockNotificationRepo),
	}
	return tr, repository.Repositories{
		Users:         tr.users,
		Books:         tr.books,
		Borrows:       tr.borrows,
		Fines:         tr.fines,
		Notifications: tr.notes,
	}
}
