package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type fineService struct {
	tx    repository.TxRunner
	repos repository.Repositories
}

func NewFineService(tx repository.TxRunner, repos repository.Repositories) FineService {
	return &fineService{tx: tx, repos: repos}
}

// assessOverdueFine builds the fine for a late return: whole overdue days
// times the daily rate. The caller persists it inside the return transaction.
func assessOverdueFine(rec *domain.BorrowRecord, returnDate time.Time, dailyRateCents int32) *domain.Fine {
	return &domain.Fine{
		UserID:         rec.UserID,
		BookID:         rec.BookID,
		BorrowRecordID: rec.ID,
		AmountCents:    domain.OverdueFineCents(*rec.DueDate, returnDate, dailyRateCents),
		Reason:         "overdue return",
	}
}

func (s *fineService) CreateFine(ctx context.Context, caller Caller, borrowRecordID, amountCents int32, reason string) (*domain.Fine, error) {
	if !caller.IsAdmin() {
		return nil, domain.NewError(domain.ErrKindUnauthorized, "only admins may create fines")
	}
	rec, err := s.repos.Borrows.GetByID(ctx, borrowRecordID)
	if err != nil {
		return nil, err
	}

	fine := &domain.Fine{
		UserID:         rec.UserID,
		BookID:         rec.BookID,
		BorrowRecordID: rec.ID,
		AmountCents:    amountCents,
		Reason:         reason,
	}
	if err := s.repos.Fines.Create(ctx, fine); err != nil {
		return nil, err
	}

	note := &domain.Notification{
		UserID:  rec.UserID,
		Title:   "Fine Issued",
		Message: fmt.Sprintf("A fine of %d cents was issued: %s", amountCents, reason),
		Attributes: map[string]string{
			"type":    "FINE_ISSUED",
			"fine_id": fmt.Sprintf("%d", fine.ID),
		},
	}
	_ = s.repos.Notifications.Create(ctx, note)

	return fine, nil
}

func (s *fineService) ListMyFines(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Fine, int32, error) {
	return s.repos.Fines.ListByUser(ctx, caller.UserID, page, pageSize)
}

func (s *fineService) ListAllFines(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.Fine, int32, error) {
	if !caller.IsAdmin() {
		return nil, 0, domain.NewError(domain.ErrKindUnauthorized, "only admins may list all fines")
	}
	return s.repos.Fines.ListAll(ctx, page, pageSize)
}

func (s *fineService) SubmitPayment(ctx context.Context, caller Caller, fineIDs []int32, proof, copyNumber string) (*domain.FinePayment, error) {
	if len(fineIDs) == 0 {
		return nil, domain.NewError(domain.ErrKindEmptySelection, "at least one fine must be selected")
	}

	var payment *domain.FinePayment
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		fines, err := r.Fines.GetByIDs(ctx, fineIDs)
		if err != nil {
			return err
		}
		if len(fines) != len(fineIDs) {
			return domain.NewError(domain.ErrKindNotFound, "one or more selected fines do not exist")
		}

		var total int32
		for _, f := range fines {
			if f.UserID != caller.UserID {
				return domain.NewError(domain.ErrKindUnauthorized, "fine %d belongs to another user", f.ID)
			}
			if f.IsPaid {
				return domain.NewError(domain.ErrKindAlreadyPaid, "fine %d is already paid", f.ID)
			}
			total += f.AmountCents
		}

		pending, err := r.Fines.HasPendingPaymentForFines(ctx, fineIDs)
		if err != nil {
			return err
		}
		if pending {
			return domain.NewError(domain.ErrKindInvalidState, "a payment covering one of these fines is already waiting for approval")
		}

		payment = &domain.FinePayment{
			UserID:           caller.UserID,
			FineIDs:          fineIDs,
			TotalAmountCents: total,
			ReferenceCode:    uuid.NewString(),
			CopyNumber:       copyNumber,
			Proof:            proof,
			Status:           domain.PaymentStatusWaitingForApproval,
		}
		return r.Fines.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *fineService) ListMyPayments(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	return s.repos.Fines.ListPaymentsByUser(ctx, caller.UserID, page, pageSize)
}

func (s *fineService) ListAllPayments(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	if !caller.IsAdmin() {
		return nil, 0, domain.NewError(domain.ErrKindUnauthorized, "only admins may list all payments")
	}
	return s.repos.Fines.ListAllPayments(ctx, status, page, pageSize)
}

func (s *fineService) ApprovePayment(ctx context.Context, caller Caller, paymentID int32) (*domain.FinePayment, error) {
	if !caller.IsAdmin() {
		return nil, domain.NewError(domain.ErrKindUnauthorized, "only admins may approve payments")
	}

	var payment *domain.FinePayment
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		payment, err = r.Fines.GetPaymentByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusWaitingForApproval {
			return domain.NewError(domain.ErrKindInvalidState, "payment %d is %s, not waiting for approval", paymentID, payment.Status)
		}

		if err := r.Fines.MarkPaid(ctx, payment.FineIDs); err != nil {
			return err
		}

		now := time.Now()
		payment.Status = domain.PaymentStatusApproved
		payment.ResolvedOn = &now
		if err := r.Fines.UpdatePayment(ctx, payment); err != nil {
			return err
		}

		note := &domain.Notification{
			UserID:  payment.UserID,
			Title:   "Fine Payment Approved",
			Message: fmt.Sprintf("Your payment of %d cents covering %d fine(s) was approved", payment.TotalAmountCents, len(payment.FineIDs)),
			Attributes: map[string]string{
				"type":       "FINE_PAYMENT_APPROVED",
				"payment_id": fmt.Sprintf("%d", payment.ID),
			},
		}
		_ = r.Notifications.Create(ctx, note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *fineService) RejectPayment(ctx context.Context, caller Caller, paymentID int32, reason string) (*domain.FinePayment, error) {
	if !caller.IsAdmin() {
		return nil, domain.NewError(domain.ErrKindUnauthorized, "only admins may reject payments")
	}

	payment, err := s.repos.Fines.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusWaitingForApproval {
		return nil, domain.NewError(domain.ErrKindInvalidState, "payment %d is %s, not waiting for approval", paymentID, payment.Status)
	}

	now := time.Now()
	payment.Status = domain.PaymentStatusRejected
	payment.RejectedReason = reason
	payment.ResolvedOn = &now
	if err := s.repos.Fines.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}

	// Fines stay unpaid and can be included in a new submission.
	note := &domain.Notification{
		UserID:  payment.UserID,
		Title:   "Fine Payment Rejected",
		Message: fmt.Sprintf("Your payment covering %d fine(s) was rejected: %s", len(payment.FineIDs), reason),
		Attributes: map[string]string{
			"type":       "FINE_PAYMENT_REJECTED",
			"payment_id": fmt.Sprintf("%d", payment.ID),
		},
	}
	_ = s.repos.Notifications.Create(ctx, note)

	return payment, nil
}
