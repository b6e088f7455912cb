package service

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/config"
	"library-backend/internal/domain"
	"library-backend/internal/logger"
	"library-backend/internal/repository"
)

// borrowService is the single authority over book availability and per-user
// borrow state. Every mutation runs inside one transaction that locks the
// book row, so two concurrent requests can never over-allocate the last copy
// and a freed copy always goes to the queue head before any new request.
type borrowService struct {
	tx       repository.TxRunner
	repos    repository.Repositories
	emailSvc EmailService
	policy   config.PolicyConfig
}

func NewBorrowService(tx repository.TxRunner, repos repository.Repositories, emailSvc EmailService, policy config.PolicyConfig) BorrowService {
	return &borrowService{
		tx:       tx,
		repos:    repos,
		emailSvc: emailSvc,
		policy:   policy,
	}
}

func (s *borrowService) RequestBorrow(ctx context.Context, caller Caller, bookID int32) (*domain.BorrowRecord, error) {
	user, err := s.repos.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if user.MembershipStatus != domain.MembershipActive {
		return nil, domain.NewError(domain.ErrKindInvalidState, "membership is %s; an active membership is required to borrow", user.MembershipStatus)
	}

	var rec *domain.BorrowRecord
	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		book, err := r.Books.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		held, err := r.Borrows.CountHeldByUser(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if held >= s.policy.BorrowLimit {
			return domain.NewError(domain.ErrKindLimitExceeded, "user %d already holds %d of %d allowed books", caller.UserID, held, s.policy.BorrowLimit)
		}

		overdue, err := r.Borrows.HasOverdue(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if overdue {
			return domain.NewError(domain.ErrKindOverdueBlock, "user %d has an overdue book; return it before borrowing again", caller.UserID)
		}

		active, err := r.Borrows.HasActiveForBook(ctx, caller.UserID, bookID)
		if err != nil {
			return err
		}
		if active {
			return domain.NewError(domain.ErrKindAlreadyHeld, "user %d already holds or awaits book %d", caller.UserID, bookID)
		}

		rec = &domain.BorrowRecord{
			UserID: caller.UserID,
			BookID: bookID,
		}

		if book.AvailableCopies > 0 {
			expiry := time.Now().Add(time.Duration(s.policy.ReservationExpiryHours) * time.Hour)
			rec.Status = domain.BorrowStatusReserved
			rec.ReservationExpiry = &expiry

			book.AvailableCopies--
			if err := r.Books.Update(ctx, book); err != nil {
				return err
			}
		} else {
			pos, err := r.Borrows.NextQueuePosition(ctx, bookID)
			if err != nil {
				return err
			}
			rec.Status = domain.BorrowStatusQueued
			rec.QueuePosition = &pos
		}

		return r.Borrows.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *borrowService) ConfirmCollection(ctx context.Context, caller Caller, borrowID, loanDays int32) (*domain.BorrowRecord, error) {
	if !caller.IsAdmin() {
		return nil, domain.NewError(domain.ErrKindUnauthorized, "only admins may confirm collections")
	}
	if loanDays <= 0 {
		loanDays = s.policy.DefaultLoanDays
	}

	var rec *domain.BorrowRecord
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		rec, err = r.Borrows.GetByIDForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		if err := rec.Transition(domain.BorrowStatusBorrowed); err != nil {
			return err
		}

		now := time.Now()
		due := now.Add(time.Duration(loanDays) * 24 * time.Hour)
		rec.BorrowDate = &now
		rec.DueDate = &due
		rec.ReservationExpiry = nil
		rec.QueuePosition = nil

		return r.Borrows.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *borrowService) RequestReturn(ctx context.Context, caller Caller, borrowID int32) (*domain.BorrowRecord, error) {
	var rec *domain.BorrowRecord
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		rec, err = r.Borrows.GetByIDForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		if rec.UserID != caller.UserID && !caller.IsAdmin() {
			return domain.NewError(domain.ErrKindUnauthorized, "borrow record %d belongs to another user", borrowID)
		}
		if err := rec.Transition(domain.BorrowStatusReturnRequested); err != nil {
			return err
		}
		return r.Borrows.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *borrowService) ConfirmReturn(ctx context.Context, caller Caller, borrowID int32) (*domain.BorrowRecord, error) {
	if !caller.IsAdmin() {
		return nil, domain.NewError(domain.ErrKindUnauthorized, "only admins may confirm returns")
	}

	var rec *domain.BorrowRecord
	var fine *domain.Fine
	var promoted *domain.BorrowRecord
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		peek, err := r.Borrows.GetByID(ctx, borrowID)
		if err != nil {
			return err
		}

		// Lock order is always book first, then record, matching
		// RequestBorrow, so concurrent returns and requests cannot deadlock.
		book, err := r.Books.GetByIDForUpdate(ctx, peek.BookID)
		if err != nil {
			return err
		}
		rec, err = r.Borrows.GetByIDForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}

		if err := rec.Transition(domain.BorrowStatusReturned); err != nil {
			return err
		}
		now := time.Now()
		rec.ReturnDate = &now
		if err := r.Borrows.Update(ctx, rec); err != nil {
			return err
		}

		if rec.DueDate != nil && now.After(*rec.DueDate) {
			fine = assessOverdueFine(rec, now, s.policy.FineDailyRateCents)
			if err := r.Fines.Create(ctx, fine); err != nil {
				return err
			}
			note := &domain.Notification{
				UserID:  rec.UserID,
				Title:   "Overdue Fine Issued",
				Message: fmt.Sprintf("A fine of %d cents was issued for the late return of book %d", fine.AmountCents, rec.BookID),
				Attributes: map[string]string{
					"type":    "FINE_ISSUED",
					"fine_id": fmt.Sprintf("%d", fine.ID),
				},
			}
			_ = r.Notifications.Create(ctx, note)
		}

		book.AvailableCopies++
		promoted, err = s.promoteQueueHead(ctx, r, book)
		if err != nil {
			return err
		}
		return r.Books.Update(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAfterReturn(ctx, rec, fine, promoted)
	return rec, nil
}

// promoteQueueHead converts the lowest-positioned queued record for the book
// into a fresh reservation, consuming the just-freed copy. Runs inside the
// same transaction as the copy release. Returns nil when the queue is empty.
func (s *borrowService) promoteQueueHead(ctx context.Context, r repository.Repositories, book *domain.Book) (*domain.BorrowRecord, error) {
	if book.AvailableCopies <= 0 {
		return nil, nil
	}
	head, err := r.Borrows.QueueHead(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, nil
	}

	pos := *head.QueuePosition
	if err := head.Transition(domain.BorrowStatusReserved); err != nil {
		return nil, err
	}
	expiry := time.Now().Add(time.Duration(s.policy.ReservationExpiryHours) * time.Hour)
	head.ReservationExpiry = &expiry
	head.QueuePosition = nil
	if err := r.Borrows.Update(ctx, head); err != nil {
		return nil, err
	}
	if err := r.Borrows.ShiftQueue(ctx, book.ID, pos); err != nil {
		return nil, err
	}

	book.AvailableCopies--

	note := &domain.Notification{
		UserID:  head.UserID,
		Title:   "Reserved Book Ready",
		Message: fmt.Sprintf("Your copy of %s is ready for collection until %s", book.Title, expiry.Format("2006-01-02 15:04")),
		Attributes: map[string]string{
			"type":      "RESERVATION_READY",
			"borrow_id": fmt.Sprintf("%d", head.ID),
		},
	}
	_ = r.Notifications.Create(ctx, note)

	return head, nil
}

// notifyAfterReturn sends best-effort emails once the transaction committed.
func (s *borrowService) notifyAfterReturn(ctx context.Context, rec *domain.BorrowRecord, fine *domain.Fine, promoted *domain.BorrowRecord) {
	book, err := s.repos.Books.GetByID(ctx, rec.BookID)
	if err != nil {
		logger.Error("Failed to load book for return notifications", "book_id", rec.BookID, "error", err)
		return
	}
	if fine != nil {
		if user, err := s.repos.Users.GetByID(ctx, rec.UserID); err == nil {
			_ = s.emailSvc.SendFineIssuedNotification(ctx, user.Email, user.Name, book.Title, fine.AmountCents)
		}
	}
	if promoted != nil && promoted.ReservationExpiry != nil {
		if user, err := s.repos.Users.GetByID(ctx, promoted.UserID); err == nil {
			_ = s.emailSvc.SendReservationReadyNotification(ctx, user.Email, user.Name, book.Title, promoted.ReservationExpiry.Format("2006-01-02 15:04"))
		}
	}
}

func (s *borrowService) CancelReservation(ctx context.Context, caller Caller, borrowID int32) error {
	var promoted *domain.BorrowRecord
	var bookID int32
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		peek, err := r.Borrows.GetByID(ctx, borrowID)
		if err != nil {
			return err
		}
		if peek.UserID != caller.UserID && !caller.IsAdmin() {
			return domain.NewError(domain.ErrKindUnauthorized, "borrow record %d belongs to another user", borrowID)
		}

		promoted, err = s.cancelLocked(ctx, r, borrowID, domain.CancelReasonUser)
		bookID = peek.BookID
		return err
	})
	if err != nil {
		return err
	}

	if promoted != nil {
		s.notifyAfterReturn(ctx, &domain.BorrowRecord{BookID: bookID, UserID: promoted.UserID}, nil, promoted)
	}
	return nil
}

// cancelLocked cancels a reserved or queued record under the per-book lock,
// releasing the copy and promoting the queue head when a reservation is
// dropped. Shared by user cancellation and the expiry sweep.
func (s *borrowService) cancelLocked(ctx context.Context, r repository.Repositories, borrowID int32, reason domain.CancelReason) (*domain.BorrowRecord, error) {
	peek, err := r.Borrows.GetByID(ctx, borrowID)
	if err != nil {
		return nil, err
	}
	book, err := r.Books.GetByIDForUpdate(ctx, peek.BookID)
	if err != nil {
		return nil, err
	}
	rec, err := r.Borrows.GetByIDForUpdate(ctx, borrowID)
	if err != nil {
		return nil, err
	}

	wasReserved := rec.Status == domain.BorrowStatusReserved
	var queuePos int32
	if rec.Status == domain.BorrowStatusQueued && rec.QueuePosition != nil {
		queuePos = *rec.QueuePosition
	}

	if err := rec.Transition(domain.BorrowStatusCancelled); err != nil {
		return nil, err
	}
	rec.CancelledReason = reason
	rec.ReservationExpiry = nil
	rec.QueuePosition = nil
	if err := r.Borrows.Update(ctx, rec); err != nil {
		return nil, err
	}

	var promoted *domain.BorrowRecord
	if wasReserved {
		book.AvailableCopies++
		promoted, err = s.promoteQueueHead(ctx, r, book)
		if err != nil {
			return nil, err
		}
		if err := r.Books.Update(ctx, book); err != nil {
			return nil, err
		}
	} else if queuePos > 0 {
		if err := r.Borrows.ShiftQueue(ctx, book.ID, queuePos); err != nil {
			return nil, err
		}
	}
	return promoted, nil
}

func (s *borrowService) GetUserBorrowingStatus(ctx context.Context, caller Caller) (*domain.BorrowingStatus, error) {
	records, err := s.repos.Borrows.ListByUser(ctx, caller.UserID, []domain.BorrowStatus{
		domain.BorrowStatusQueued,
		domain.BorrowStatusReserved,
		domain.BorrowStatusBorrowed,
		domain.BorrowStatusReturnRequested,
		domain.BorrowStatusOverdue,
	})
	if err != nil {
		return nil, err
	}

	status := &domain.BorrowingStatus{
		Records:     records,
		BorrowLimit: s.policy.BorrowLimit,
	}
	for _, rec := range records {
		if rec.HoldsCopy() {
			status.HeldCount++
		}
		if rec.Status == domain.BorrowStatusOverdue {
			status.HasOverdue = true
		}
	}
	status.CanBorrow = status.HeldCount < status.BorrowLimit && !status.HasOverdue
	return status, nil
}

func (s *borrowService) ListAllBorrows(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.BorrowRecord, int32, error) {
	if !caller.IsAdmin() {
		return nil, 0, domain.NewError(domain.ErrKindUnauthorized, "only admins may list all borrows")
	}
	return s.repos.Borrows.ListAll(ctx, status, page, pageSize)
}

// CancelExpiredReservations cancels reservations past their expiry and
// promotes queue heads for the released copies. Each record is handled in
// its own transaction; one failure does not halt the batch.
func (s *borrowService) CancelExpiredReservations(ctx context.Context) (int32, error) {
	expired, err := s.repos.Borrows.ListExpiredReservations(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	var cancelled int32
	for _, rec := range expired {
		err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
			_, err := s.cancelLocked(ctx, r, rec.ID, domain.CancelReasonExpired)
			return err
		})
		if err != nil {
			// A record that raced into another state since the scan is
			// skipped, not fatal.
			logger.Error("Failed to cancel expired reservation", "borrow_id", rec.ID, "error", err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// MarkOverdue transitions borrowed records past their due date to overdue.
func (s *borrowService) MarkOverdue(ctx context.Context) (int32, error) {
	due, err := s.repos.Borrows.ListDueBorrows(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	var marked int32
	for _, candidate := range due {
		err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
			rec, err := r.Borrows.GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if rec.Status != domain.BorrowStatusBorrowed || rec.DueDate == nil || !time.Now().After(*rec.DueDate) {
				return nil // already moved on, sweep is idempotent
			}
			if err := rec.Transition(domain.BorrowStatusOverdue); err != nil {
				return err
			}
			if err := r.Borrows.Update(ctx, rec); err != nil {
				return err
			}

			note := &domain.Notification{
				UserID:  rec.UserID,
				Title:   "Book Overdue",
				Message: fmt.Sprintf("Book %d is past its due date; further borrowing is blocked until it is returned", rec.BookID),
				Attributes: map[string]string{
					"type":      "BORROW_OVERDUE",
					"borrow_id": fmt.Sprintf("%d", rec.ID),
				},
			}
			_ = r.Notifications.Create(ctx, note)
			marked++
			return nil
		})
		if err != nil {
			logger.Error("Failed to mark borrow overdue", "borrow_id", candidate.ID, "error", err)
		}
	}
	return marked, nil
}
