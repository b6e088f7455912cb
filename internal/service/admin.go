package service

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type adminService struct {
	userRepo   repository.UserRepository
	borrowRepo repository.BorrowRepository
	fineRepo   repository.FineRepository
	noteRepo   repository.NotificationRepository
}

func NewAdminService(userRepo repository.UserRepository, borrowRepo repository.BorrowRepository, fineRepo repository.FineRepository, noteRepo repository.NotificationRepository) AdminService {
	return &adminService{
		userRepo:   userRepo,
		borrowRepo: borrowRepo,
		fineRepo:   fineRepo,
		noteRepo:   noteRepo,
	}
}

func (s *adminService) requireAdmin(caller Caller, action string) error {
	if !caller.IsAdmin() {
		return domain.NewError(domain.ErrKindUnauthorized, "only admins may %s", action)
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, caller Caller, page, pageSize int32) ([]domain.User, int32, error) {
	if err := s.requireAdmin(caller, "list users"); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, page, pageSize)
}

func (s *adminService) setRole(ctx context.Context, caller Caller, userID int32, role domain.Role) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return nil, domain.NewError(domain.ErrKindInvalidState, "user %d is already a %s", userID, role)
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *adminService) PromoteUser(ctx context.Context, caller Caller, userID int32) (*domain.User, error) {
	if err := s.requireAdmin(caller, "promote users"); err != nil {
		return nil, err
	}
	return s.setRole(ctx, caller, userID, domain.RoleAdmin)
}

func (s *adminService) DemoteUser(ctx context.Context, caller Caller, userID int32) (*domain.User, error) {
	if err := s.requireAdmin(caller, "demote users"); err != nil {
		return nil, err
	}
	if userID == caller.UserID {
		return nil, domain.NewError(domain.ErrKindInvalidState, "admins cannot demote themselves")
	}
	return s.setRole(ctx, caller, userID, domain.RoleStudent)
}

func (s *adminService) DeleteUser(ctx context.Context, caller Caller, userID int32) error {
	if err := s.requireAdmin(caller, "delete users"); err != nil {
		return err
	}

	// An account cannot be deleted while any borrowed, reserved or queued
	// record is outstanding.
	active, err := s.borrowRepo.CountActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.NewError(domain.ErrKindDeletionBlocked, "user %d has %d outstanding borrow record(s)", userID, active)
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *adminService) ListMembershipPayments(ctx context.Context, caller Caller, status string, page, pageSize int32) ([]domain.MembershipPayment, int32, error) {
	if err := s.requireAdmin(caller, "list membership payments"); err != nil {
		return nil, 0, err
	}
	return s.fineRepo.ListMembershipPayments(ctx, status, page, pageSize)
}

func (s *adminService) ApproveMembershipPayment(ctx context.Context, caller Caller, paymentID int32) (*domain.MembershipPayment, error) {
	if err := s.requireAdmin(caller, "approve membership payments"); err != nil {
		return nil, err
	}

	payment, err := s.fineRepo.GetMembershipPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusWaitingForApproval {
		return nil, domain.NewError(domain.ErrKindInvalidState, "membership payment %d is %s, not waiting for approval", paymentID, payment.Status)
	}

	now := time.Now()
	payment.Status = domain.PaymentStatusApproved
	payment.ResolvedOn = &now
	if err := s.fineRepo.UpdateMembershipPayment(ctx, payment); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err != nil {
		return nil, err
	}
	user.MembershipStatus = domain.MembershipActive
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	note := &domain.Notification{
		UserID:  payment.UserID,
		Title:   "Membership Activated",
		Message: "Your membership payment was approved; you can now borrow books",
		Attributes: map[string]string{
			"type":       "MEMBERSHIP_APPROVED",
			"payment_id": fmt.Sprintf("%d", payment.ID),
		},
	}
	_ = s.noteRepo.Create(ctx, note)

	return payment, nil
}

func (s *adminService) RejectMembershipPayment(ctx context.Context, caller Caller, paymentID int32, reason string) (*domain.MembershipPayment, error) {
	if err := s.requireAdmin(caller, "reject membership payments"); err != nil {
		return nil, err
	}

	payment, err := s.fineRepo.GetMembershipPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusWaitingForApproval {
		return nil, domain.NewError(domain.ErrKindInvalidState, "membership payment %d is %s, not waiting for approval", paymentID, payment.Status)
	}

	now := time.Now()
	payment.Status = domain.PaymentStatusRejected
	payment.RejectedReason = reason
	payment.ResolvedOn = &now
	if err := s.fineRepo.UpdateMembershipPayment(ctx, payment); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, payment.UserID)
	if err == nil {
		user.MembershipStatus = domain.MembershipPending
		_ = s.userRepo.Update(ctx, user)
	}

	note := &domain.Notification{
		UserID:  payment.UserID,
		Title:   "Membership Payment Rejected",
		Message: fmt.Sprintf("Your membership payment was rejected: %s", reason),
		Attributes: map[string]string{
			"type":       "MEMBERSHIP_REJECTED",
			"payment_id": fmt.Sprintf("%d", payment.ID),
		},
	}
	_ = s.noteRepo.Create(ctx, note)

	return payment, nil
}
