package domain

import "time"

// BorrowStatus values are lowercase on the wire; the frontend matches on
// these exact strings.
type BorrowStatus string

const (
	BorrowStatusQueued          BorrowStatus = "queued"
	BorrowStatusReserved        BorrowStatus = "reserved"
	BorrowStatusBorrowed        BorrowStatus = "borrowed"
	BorrowStatusReturnRequested BorrowStatus = "return_requested"
	BorrowStatusReturned        BorrowStatus = "returned"
	BorrowStatusOverdue         BorrowStatus = "overdue"
	BorrowStatusCancelled       BorrowStatus = "cancelled"
)

type CancelReason string

const (
	CancelReasonExpired CancelReason = "expired"
	CancelReasonUser    CancelReason = "user_cancelled"
)

type BorrowRecord struct {
	ID                int32        `json:"id"`
	UserID            int32        `json:"user_id"`
	BookID            int32        `json:"book_id"`
	Status            BorrowStatus `json:"status"`
	QueuePosition     *int32       `json:"queue_position,omitempty"`
	ReservationExpiry *time.Time   `json:"reservation_expiry,omitempty"`
	BorrowDate        *time.Time   `json:"borrow_date,omitempty"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	ReturnDate        *time.Time   `json:"return_date,omitempty"`
	CancelledReason   CancelReason `json:"cancelled_reason,omitempty"`
	CreatedOn         time.Time    `json:"created_on"`
	UpdatedOn         time.Time    `json:"updated_on"`
}

// transitions is the single authority on legal status changes; illegal
// attempts fail with INVALID_STATE rather than ad hoc string checks.
var transitions = map[BorrowStatus][]BorrowStatus{
	BorrowStatusQueued:          {BorrowStatusReserved, BorrowStatusCancelled},
	BorrowStatusReserved:        {BorrowStatusBorrowed, BorrowStatusCancelled},
	BorrowStatusBorrowed:        {BorrowStatusReturnRequested, BorrowStatusOverdue},
	BorrowStatusOverdue:         {BorrowStatusReturnRequested},
	BorrowStatusReturnRequested: {BorrowStatusReturned},
}

// CanTransition reports whether a record may move from one status to another.
func CanTransition(from, to BorrowStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition mutates the record's status after validating the move.
func (r *BorrowRecord) Transition(to BorrowStatus) error {
	if !CanTransition(r.Status, to) {
		return NewError(ErrKindInvalidState, "borrow record %d cannot move from %s to %s", r.ID, r.Status, to)
	}
	r.Status = to
	return nil
}

// BorrowingStatus summarizes a user's standing against the borrow policy.
type BorrowingStatus struct {
	Records     []BorrowRecord `json:"records"`
	HeldCount   int32          `json:"held_count"`
	BorrowLimit int32          `json:"borrow_limit"`
	HasOverdue  bool           `json:"has_overdue"`
	CanBorrow   bool           `json:"can_borrow"`
}

// IsActive reports whether the record still occupies or awaits a copy.
func (r *BorrowRecord) IsActive() bool {
	switch r.Status {
	case BorrowStatusReturned, BorrowStatusCancelled:
		return false
	}
	return true
}

// HoldsCopy reports whether the record currently consumes an available copy.
func (r *BorrowRecord) HoldsCopy() bool {
	switch r.Status {
	case BorrowStatusReserved, BorrowStatusBorrowed, BorrowStatusReturnRequested, BorrowStatusOverdue:
		return true
	}
	return false
}
