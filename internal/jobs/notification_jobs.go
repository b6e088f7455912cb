package jobs

import (
	"context"
	"time"

	"library-backend/internal/logger"
)

// SendOverdueReminders emails every user with a record still in overdue.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		overdue, err := jr.repos.Borrows.ListOverdue(ctx)
		if err != nil {
			logger.Error("Failed to list overdue borrows", "error", err)
			return
		}

		sent := 0
		for _, rec := range overdue {
			user, err := jr.repos.Users.GetByID(ctx, rec.UserID)
			if err != nil {
				logger.Error("Failed to load user for overdue reminder", "user_id", rec.UserID, "error", err)
				continue
			}
			book, err := jr.repos.Books.GetByID(ctx, rec.BookID)
			if err != nil {
				logger.Error("Failed to load book for overdue reminder", "book_id", rec.BookID, "error", err)
				continue
			}
			dueDate := ""
			if rec.DueDate != nil {
				dueDate = rec.DueDate.Format("2006-01-02")
			}
			if err := jr.services.Email.SendOverdueReminder(ctx, user.Email, user.Name, book.Title, dueDate); err != nil {
				logger.Error("Failed to send overdue reminder", "user_id", user.ID, "borrow_id", rec.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent overdue reminders", "count", sent)
	})
}

// SendReservationReminders emails users whose reservation expires within the
// next 24 hours so they collect before the sweep releases the copy.
func (jr *JobRunner) SendReservationReminders() {
	jr.runWithRecovery("SendReservationReminders", func() {
		ctx := context.Background()

		// Reservations already past expiry belong to the cancel sweep, not
		// this one; list those expiring a day out and filter.
		cutoff := time.Now().Add(24 * time.Hour)
		reservations, err := jr.repos.Borrows.ListExpiredReservations(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list expiring reservations", "error", err)
			return
		}

		sent := 0
		now := time.Now()
		for _, rec := range reservations {
			if rec.ReservationExpiry == nil || rec.ReservationExpiry.Before(now) {
				continue
			}
			user, err := jr.repos.Users.GetByID(ctx, rec.UserID)
			if err != nil {
				logger.Error("Failed to load user for reservation reminder", "user_id", rec.UserID, "error", err)
				continue
			}
			book, err := jr.repos.Books.GetByID(ctx, rec.BookID)
			if err != nil {
				logger.Error("Failed to load book for reservation reminder", "book_id", rec.BookID, "error", err)
				continue
			}
			expiry := rec.ReservationExpiry.Format("2006-01-02 15:04")
			if err := jr.services.Email.SendReservationReadyNotification(ctx, user.Email, user.Name, book.Title, expiry); err != nil {
				logger.Error("Failed to send reservation reminder", "user_id", user.ID, "borrow_id", rec.ID, "error", err)
				continue
			}
			sent++
		}
		logger.Info("Sent reservation reminders", "count", sent)
	})
}
