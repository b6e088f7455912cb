package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/config"
	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type userService struct {
	userRepo   repository.UserRepository
	borrowRepo repository.BorrowRepository
	fineRepo   repository.FineRepository
	policy     config.PolicyConfig
}

func NewUserService(userRepo repository.UserRepository, borrowRepo repository.BorrowRepository, fineRepo repository.FineRepository, policy config.PolicyConfig) UserService {
	return &userService{
		userRepo:   userRepo,
		borrowRepo: borrowRepo,
		fineRepo:   fineRepo,
		policy:     policy,
	}
}

func (s *userService) GetProfile(ctx context.Context, caller Caller) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, caller.UserID)
}

func (s *userService) DeleteProfile(ctx context.Context, caller Caller) error {
	active, err := s.borrowRepo.CountActiveByUser(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.NewError(domain.ErrKindDeletionBlocked, "user %d has %d outstanding borrow record(s); return or cancel them first", caller.UserID, active)
	}
	return s.userRepo.Delete(ctx, caller.UserID)
}

func (s *userService) SubmitMembershipPayment(ctx context.Context, caller Caller, proof, copyNumber string) (*domain.MembershipPayment, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	switch user.MembershipStatus {
	case domain.MembershipActive:
		return nil, domain.NewError(domain.ErrKindInvalidState, "membership is already active")
	case domain.MembershipWaitingForApproval:
		return nil, domain.NewError(domain.ErrKindInvalidState, "a membership payment is already waiting for approval")
	}

	payment := &domain.MembershipPayment{
		UserID:        caller.UserID,
		AmountCents:   s.policy.MembershipFeeCents,
		ReferenceCode: uuid.NewString(),
		CopyNumber:    copyNumber,
		Proof:         proof,
		Status:        domain.PaymentStatusWaitingForApproval,
	}
	if err := s.fineRepo.CreateMembershipPayment(ctx, payment); err != nil {
		return nil, err
	}

	user.MembershipStatus = domain.MembershipWaitingForApproval
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return payment, nil
}
