package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"library-backend/internal/domain"
	"library-backend/internal/service"
)

func TestUserService_DeleteProfile(t *testing.T) {
	ctx := context.Background()
	caller := service.Caller{UserID: 1, Role: domain.RoleStudent}

	t.Run("Blocked With Outstanding Borrows", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewUserService(tr.users, tr.borrows, tr.fines, testPolicy())

		tr.borrows.On("CountActiveByUser", ctx, int32(1)).Return(int32(2), nil)

		err := svc.DeleteProfile(ctx, caller)
		assert.True(t, domain.IsKind(err, domain.ErrKindDeletionBlocked))
		tr.users.AssertNotCalled(t, "Delete", ctx, int32(1))
	})

	t.Run("Succeeds Once Records Are Settled", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewUserService(tr.users, tr.borrows, tr.fines, testPolicy())

		tr.borrows.On("CountActiveByUser", ctx, int32(1)).Return(int32(0), nil)
		tr.users.On("Delete", ctx, int32(1)).Return(nil)

		err := svc.DeleteProfile(ctx, caller)
		assert.NoError(t, err)
		tr.users.AssertExpectations(t)
	})
}

func TestUserService_SubmitMembershipPayment(t *testing.T) {
	ctx := context.Background()
	caller := service.Caller{UserID: 1, Role: domain.RoleStudent}

	t.Run("Success Moves Membership To Waiting", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewUserService(tr.users, tr.borrows, tr.fines, testPolicy())

		user := &domain.User{ID: 1, MembershipStatus: domain.MembershipPending}
		tr.users.On("GetByID", ctx, int32(1)).Return(user, nil)
		tr.fines.On("CreateMembershipPayment", ctx, mock.AnythingOfType("*domain.MembershipPayment")).Return(nil)
		tr.users.On("Update", ctx, user).Return(nil)

		payment, err := svc.SubmitMembershipPayment(ctx, caller, "receipt.jpg", "TXN-1")
		assert.NoError(t, err)
		assert.Equal(t, int32(10000), payment.AmountCents)
		assert.Equal(t, domain.PaymentStatusWaitingForApproval, payment.Status)
		assert.Equal(t, domain.MembershipWaitingForApproval, user.MembershipStatus)
	})

	t.Run("Rejects When Already Active", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewUserService(tr.users, tr.borrows, tr.fines, testPolicy())

		tr.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, MembershipStatus: domain.MembershipActive}, nil)

		payment, err := svc.SubmitMembershipPayment(ctx, caller, "", "")
		assert.Nil(t, payment)
		assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	})

	t.Run("Rejects Duplicate Submission", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewUserService(tr.users, tr.borrows, tr.fines, testPolicy())

		tr.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, MembershipStatus: domain.MembershipWaitingForApproval}, nil)

		payment, err := svc.SubmitMembershipPayment(ctx, caller, "", "")
		assert.Nil(t, payment)
		assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	})
}

func TestAdminService_Roles(t *testing.T) {
	ctx := context.Background()
	admin := service.Caller{UserID: 9, Role: domain.RoleAdmin}

	t.Run("Promote", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		user := &domain.User{ID: 1, Role: domain.RoleStudent}
		tr.users.On("GetByID", ctx, int32(1)).Return(user, nil)
		tr.users.On("Update", ctx, user).Return(nil)

		got, err := svc.PromoteUser(ctx, admin, 1)
		assert.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, got.Role)
	})

	t.Run("Promote Is Not Idempotent", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		tr.users.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Role: domain.RoleAdmin}, nil)

		got, err := svc.PromoteUser(ctx, admin, 1)
		assert.Nil(t, got)
		assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	})

	t.Run("Self-Demotion Blocked", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		got, err := svc.DemoteUser(ctx, admin, 9)
		assert.Nil(t, got)
		assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	})

	t.Run("Non-Admin Rejected", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		got, err := svc.PromoteUser(ctx, service.Caller{UserID: 1, Role: domain.RoleStudent}, 2)
		assert.Nil(t, got)
		assert.True(t, domain.IsKind(err, domain.ErrKindUnauthorized))
	})
}

func TestAdminService_MembershipPayments(t *testing.T) {
	ctx := context.Background()
	admin := service.Caller{UserID: 9, Role: domain.RoleAdmin}

	t.Run("Approval Activates Membership", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		payment := &domain.MembershipPayment{ID: 3, UserID: 1, AmountCents: 10000, Status: domain.PaymentStatusWaitingForApproval}
		user := &domain.User{ID: 1, MembershipStatus: domain.MembershipWaitingForApproval}
		tr.fines.On("GetMembershipPaymentByID", ctx, int32(3)).Return(payment, nil)
		tr.fines.On("UpdateMembershipPayment", ctx, payment).Return(nil)
		tr.users.On("GetByID", ctx, int32(1)).Return(user, nil)
		tr.users.On("Update", ctx, user).Return(nil)
		tr.notes.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		got, err := svc.ApproveMembershipPayment(ctx, admin, 3)
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusApproved, got.Status)
		assert.Equal(t, domain.MembershipActive, user.MembershipStatus)
	})

	t.Run("Rejection Resets Membership To Pending", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		payment := &domain.MembershipPayment{ID: 3, UserID: 1, Status: domain.PaymentStatusWaitingForApproval}
		user := &domain.User{ID: 1, MembershipStatus: domain.MembershipWaitingForApproval}
		tr.fines.On("GetMembershipPaymentByID", ctx, int32(3)).Return(payment, nil)
		tr.fines.On("UpdateMembershipPayment", ctx, payment).Return(nil)
		tr.users.On("GetByID", ctx, int32(1)).Return(user, nil)
		tr.users.On("Update", ctx, user).Return(nil)
		tr.notes.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		got, err := svc.RejectMembershipPayment(ctx, admin, 3, "wrong amount")
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRejected, got.Status)
		assert.Equal(t, "wrong amount", got.RejectedReason)
		assert.Equal(t, domain.MembershipPending, user.MembershipStatus)
	})

	t.Run("Double Approval Blocked", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		payment := &domain.MembershipPayment{ID: 3, Status: domain.PaymentStatusApproved}
		tr.fines.On("GetMembershipPaymentByID", ctx, int32(3)).Return(payment, nil)

		got, err := svc.ApproveMembershipPayment(ctx, admin, 3)
		assert.Nil(t, got)
		assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	admin := service.Caller{UserID: 9, Role: domain.RoleAdmin}

	t.Run("Blocked With Outstanding Borrows", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		tr.borrows.On("CountActiveByUser", ctx, int32(1)).Return(int32(1), nil)

		err := svc.DeleteUser(ctx, admin, 1)
		assert.True(t, domain.IsKind(err, domain.ErrKindDeletionBlocked))
	})

	t.Run("Success", func(t *testing.T) {
		tr, _ := newTestRepos()
		svc := service.NewAdminService(tr.users, tr.borrows, tr.fines, tr.notes)

		tr.borrows.On("CountActiveByUser", ctx, int32(1)).Return(int32(0), nil)
		tr.users.On("Delete", ctx, int32(1)).Return(nil)

		err := svc.DeleteUser(ctx, admin, 1)
		assert.NoError(t, err)
	})
}
