package jobs

import (
	"context"

	"library-backend/internal/logger"
)

// CancelExpiredReservations cancels reservations past their expiry window
// and promotes the next queued user for each released copy.
func (jr *JobRunner) CancelExpiredReservations() {
	jr.runWithRecovery("CancelExpiredReservations", func() {
		ctx := context.Background()
		count, err := jr.services.Borrow.CancelExpiredReservations(ctx)
		if err != nil {
			logger.Error("Failed to cancel expired reservations", "error", err)
			return
		}
		logger.Info("Cancelled expired reservations", "count", count)
	})
}

// MarkOverdueBorrows marks borrow records as overdue once past their due date.
func (jr *JobRunner) MarkOverdueBorrows() {
	jr.runWithRecovery("MarkOverdueBorrows", func() {
		ctx := context.Background()
		count, err := jr.services.Borrow.MarkOverdue(ctx)
		if err != nil {
			logger.Error("Failed to mark overdue borrows", "error", err)
			return
		}
		logger.Info("Marked borrows as overdue", "count", count)
	})
}
