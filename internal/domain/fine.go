package domain

import "time"

type Fine struct {
	ID             int32     `json:"id"`
	UserID         int32     `json:"user_id"`
	BookID         int32     `json:"book_id"`
	BorrowRecordID int32     `json:"borrow_record_id"`
	AmountCents    int32     `json:"amount_cents"`
	Reason         string    `json:"reason"`
	IsPaid         bool      `json:"is_paid"`
	CreatedOn      time.Time `json:"created_on"`
}

// OverdueFineCents computes the penalty for a late return: whole days past
// the due date times the daily rate. Partial days round up.
func OverdueFineCents(dueDate, returnDate time.Time, dailyRateCents int32) int32 {
	if !returnDate.After(dueDate) {
		return 0
	}
	days := int32(returnDate.Sub(dueDate) / (24 * time.Hour))
	if returnDate.Sub(dueDate)%(24*time.Hour) > 0 {
		days++
	}
	return days * dailyRateCents
}

type PaymentStatus string

const (
	PaymentStatusWaitingForApproval PaymentStatus = "waiting_for_approval"
	PaymentStatusApproved           PaymentStatus = "approved"
	PaymentStatusRejected           PaymentStatus = "rejected"
)

// FinePayment is a batched proof-of-payment submission covering one or
// more fines. Terminal states: approved, rejected.
type FinePayment struct {
	ID               int32         `json:"id"`
	UserID           int32         `json:"user_id"`
	FineIDs          []int32       `json:"fine_ids"`
	TotalAmountCents int32         `json:"total_amount_cents"`
	ReferenceCode    string        `json:"reference_code"`
	CopyNumber       string        `json:"copy_number"`
	Proof            string        `json:"proof,omitempty"`
	Status           PaymentStatus `json:"status"`
	RejectedReason   string        `json:"rejected_reason,omitempty"`
	SubmittedOn      time.Time     `json:"submitted_on"`
	ResolvedOn       *time.Time    `json:"resolved_on,omitempty"`
}

type MembershipPayment struct {
	ID             int32         `json:"id"`
	UserID         int32         `json:"user_id"`
	AmountCents    int32         `json:"amount_cents"`
	ReferenceCode  string        `json:"reference_code"`
	CopyNumber     string        `json:"copy_number"`
	Proof          string        `json:"proof,omitempty"`
	Status         PaymentStatus `json:"status"`
	RejectedReason string        `json:"rejected_reason,omitempty"`
	SubmittedOn    time.Time     `json:"submitted_on"`
	ResolvedOn     *time.Time    `json:"resolved_on,omitempty"`
}
