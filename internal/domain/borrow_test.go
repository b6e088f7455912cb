package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-backend/internal/domain"
)

func TestBorrowTransitions(t *testing.T) {
	allowed := []struct {
		from, to domain.BorrowStatus
	}{
		{domain.BorrowStatusQueued, domain.BorrowStatusReserved},
		{domain.BorrowStatusQueued, domain.BorrowStatusCancelled},
		{domain.BorrowStatusReserved, domain.BorrowStatusBorrowed},
		{domain.BorrowStatusReserved, domain.BorrowStatusCancelled},
		{domain.BorrowStatusBorrowed, domain.BorrowStatusReturnRequested},
		{domain.BorrowStatusBorrowed, domain.BorrowStatusOverdue},
		{domain.BorrowStatusOverdue, domain.BorrowStatusReturnRequested},
		{domain.BorrowStatusReturnRequested, domain.BorrowStatusReturned},
	}
	for _, tc := range allowed {
		assert.True(t, domain.CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	forbidden := []struct {
		from, to domain.BorrowStatus
	}{
		{domain.BorrowStatusQueued, domain.BorrowStatusBorrowed},
		{domain.BorrowStatusReserved, domain.BorrowStatusReturned},
		{domain.BorrowStatusBorrowed, domain.BorrowStatusReturned},
		{domain.BorrowStatusBorrowed, domain.BorrowStatusCancelled},
		{domain.BorrowStatusOverdue, domain.BorrowStatusCancelled},
		{domain.BorrowStatusReturned, domain.BorrowStatusBorrowed},
		{domain.BorrowStatusCancelled, domain.BorrowStatusQueued},
		{domain.BorrowStatusReturned, domain.BorrowStatusReturned},
	}
	for _, tc := range forbidden {
		assert.False(t, domain.CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestBorrowRecord_Transition(t *testing.T) {
	rec := &domain.BorrowRecord{ID: 1, Status: domain.BorrowStatusReserved}

	assert.NoError(t, rec.Transition(domain.BorrowStatusBorrowed))
	assert.Equal(t, domain.BorrowStatusBorrowed, rec.Status)

	err := rec.Transition(domain.BorrowStatusReserved)
	assert.True(t, domain.IsKind(err, domain.ErrKindInvalidState))
	assert.Equal(t, domain.BorrowStatusBorrowed, rec.Status)
}

func TestBorrowRecord_HoldsCopy(t *testing.T) {
	holding := []domain.BorrowStatus{
		domain.BorrowStatusReserved,
		domain.BorrowStatusBorrowed,
		domain.BorrowStatusReturnRequested,
		domain.BorrowStatusOverdue,
	}
	for _, status := range holding {
		rec := &domain.BorrowRecord{Status: status}
		assert.True(t, rec.HoldsCopy(), "%s should hold a copy", status)
		assert.True(t, rec.IsActive())
	}

	notHolding := []domain.BorrowStatus{
		domain.BorrowStatusQueued,
		domain.BorrowStatusReturned,
		domain.BorrowStatusCancelled,
	}
	for _, status := range notHolding {
		rec := &domain.BorrowRecord{Status: status}
		assert.False(t, rec.HoldsCopy(), "%s should not hold a copy", status)
	}

	assert.True(t, (&domain.BorrowRecord{Status: domain.BorrowStatusQueued}).IsActive())
	assert.False(t, (&domain.BorrowRecord{Status: domain.BorrowStatusReturned}).IsActive())
	assert.False(t, (&domain.BorrowRecord{Status: domain.BorrowStatusCancelled}).IsActive())
}
