package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type fineRepository struct {
	db dbtx
}

func NewFineRepository(db dbtx) repository.FineRepository {
	return &fineRepository{db: db}
}

const fineColumns = `id, user_id, book_id, borrow_record_id, amount_cents, reason, is_paid, created_on`

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	query := `INSERT INTO fines (user_id, book_id, borrow_record_id, amount_cents, reason, is_paid, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		f.UserID, f.BookID, f.BorrowRecordID, f.AmountCents, f.Reason, f.IsPaid, time.Now()).
		Scan(&f.ID, &f.CreatedOn)
}

func (r *fineRepository) GetByID(ctx context.Context, id int32) (*domain.Fine, error) {
	f := &domain.Fine{}
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.UserID, &f.BookID, &f.BorrowRecordID, &f.AmountCents, &f.Reason, &f.IsPaid, &f.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrKindNotFound, "fine %d not found", id)
		}
		return nil, err
	}
	return f, nil
}

func (r *fineRepository) GetByIDs(ctx context.Context, ids []int32) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(int32sToInt64s(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []domain.Fine
	for rows.Next() {
		var f domain.Fine
		if err := rows.Scan(&f.ID, &f.UserID, &f.BookID, &f.BorrowRecordID, &f.AmountCents, &f.Reason, &f.IsPaid, &f.CreatedOn); err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}

func (r *fineRepository) MarkPaid(ctx context.Context, ids []int32) error {
	query := `UPDATE fines SET is_paid = TRUE WHERE id = ANY($1)`
	_, err := r.db.ExecContext(ctx, query, pq.Array(int32sToInt64s(ids)))
	return err
}

func (r *fineRepository) listFines(ctx context.Context, where string, page, pageSize int32, args ...interface{}) ([]domain.Fine, int32, error) {
	offset := (page - 1) * pageSize
	base := `SELECT ` + fineColumns + ` FROM fines ` + where

	var count int32
	countSql := "SELECT count(*) FROM (" + base + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	base += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var fines []domain.Fine
	for rows.Next() {
		var f domain.Fine
		if err := rows.Scan(&f.ID, &f.UserID, &f.BookID, &f.BorrowRecordID, &f.AmountCents, &f.Reason, &f.IsPaid, &f.CreatedOn); err != nil {
			return nil, 0, err
		}
		fines = append(fines, f)
	}
	return fines, count, rows.Err()
}

func (r *fineRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Fine, int32, error) {
	return r.listFines(ctx, "WHERE user_id = $1", page, pageSize, userID)
}

func (r *fineRepository) ListAll(ctx context.Context, page, pageSize int32) ([]domain.Fine, int32, error) {
	return r.listFines(ctx, "WHERE 1=1", page, pageSize)
}

const paymentColumns = `id, user_id, fine_ids, total_amount_cents, reference_code, copy_number, proof, status, rejected_reason, submitted_on, resolved_on`

func (r *fineRepository) CreatePayment(ctx context.Context, p *domain.FinePayment) error {
	query := `INSERT INTO fine_payments (user_id, fine_ids, total_amount_cents, reference_code, copy_number, proof, status, rejected_reason, submitted_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, submitted_on`
	return r.db.QueryRowContext(ctx, query,
		p.UserID, pq.Array(int32sToInt64s(p.FineIDs)), p.TotalAmountCents, p.ReferenceCode,
		p.CopyNumber, p.Proof, p.Status, p.RejectedReason, time.Now()).
		Scan(&p.ID, &p.SubmittedOn)
}

func scanPayment(scan func(dest ...interface{}) error) (*domain.FinePayment, error) {
	p := &domain.FinePayment{}
	var ids pq.Int64Array
	err := scan(&p.ID, &p.UserID, &ids, &p.TotalAmountCents, &p.ReferenceCode,
		&p.CopyNumber, &p.Proof, &p.Status, &p.RejectedReason, &p.SubmittedOn, &p.ResolvedOn)
	if err != nil {
		return nil, err
	}
	p.FineIDs = int64sToInt32s(ids)
	return p, nil
}

func (r *fineRepository) GetPaymentByID(ctx context.Context, id int32) (*domain.FinePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM fine_payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrKindNotFound, "fine payment %d not found", id)
		}
		return nil, err
	}
	return p, nil
}

func (r *fineRepository) UpdatePayment(ctx context.Context, p *domain.FinePayment) error {
	query := `UPDATE fine_payments SET status=$1, rejected_reason=$2, resolved_on=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, p.Status, p.RejectedReason, p.ResolvedOn, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewError(domain.ErrKindNotFound, "fine payment %d not found", p.ID)
	}
	return nil
}

func (r *fineRepository) listPayments(ctx context.Context, where string, page, pageSize int32, args ...interface{}) ([]domain.FinePayment, int32, error) {
	offset := (page - 1) * pageSize
	base := `SELECT ` + paymentColumns + ` FROM fine_payments ` + where

	var count int32
	countSql := "SELECT count(*) FROM (" + base + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	base += fmt.Sprintf(" ORDER BY submitted_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.FinePayment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, count, rows.Err()
}

func (r *fineRepository) ListPaymentsByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	return r.listPayments(ctx, "WHERE user_id = $1", page, pageSize, userID)
}

func (r *fineRepository) ListAllPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.FinePayment, int32, error) {
	if status != "" {
		return r.listPayments(ctx, "WHERE status = $1", page, pageSize, status)
	}
	return r.listPayments(ctx, "WHERE 1=1", page, pageSize)
}

func (r *fineRepository) HasPendingPaymentForFines(ctx context.Context, fineIDs []int32) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM fine_payments WHERE status = 'waiting_for_approval' AND fine_ids && $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, pq.Array(int32sToInt64s(fineIDs))).Scan(&exists)
	return exists, err
}

const membershipPaymentColumns = `id, user_id, amount_cents, reference_code, copy_number, proof, status, rejected_reason, submitted_on, resolved_on`

func (r *fineRepository) CreateMembershipPayment(ctx context.Context, p *domain.MembershipPayment) error {
	query := `INSERT INTO membership_payments (user_id, amount_cents, reference_code, copy_number, proof, status, rejected_reason, submitted_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, submitted_on`
	return r.db.QueryRowContext(ctx, query,
		p.UserID, p.AmountCents, p.ReferenceCode, p.CopyNumber, p.Proof,
		p.Status, p.RejectedReason, time.Now()).
		Scan(&p.ID, &p.SubmittedOn)
}

func (r *fineRepository) GetMembershipPaymentByID(ctx context.Context, id int32) (*domain.MembershipPayment, error) {
	p := &domain.MembershipPayment{}
	query := `SELECT ` + membershipPaymentColumns + ` FROM membership_payments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.UserID, &p.AmountCents, &p.ReferenceCode, &p.CopyNumber, &p.Proof,
			&p.Status, &p.RejectedReason, &p.SubmittedOn, &p.ResolvedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrKindNotFound, "membership payment %d not found", id)
		}
		return nil, err
	}
	return p, nil
}

func (r *fineRepository) UpdateMembershipPayment(ctx context.Context, p *domain.MembershipPayment) error {
	query := `UPDATE membership_payments SET status=$1, rejected_reason=$2, resolved_on=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, p.Status, p.RejectedReason, p.ResolvedOn, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewError(domain.ErrKindNotFound, "membership payment %d not found", p.ID)
	}
	return nil
}

func (r *fineRepository) ListMembershipPayments(ctx context.Context, status string, page, pageSize int32) ([]domain.MembershipPayment, int32, error) {
	offset := (page - 1) * pageSize
	base := `SELECT ` + membershipPaymentColumns + ` FROM membership_payments WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + base + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	base += fmt.Sprintf(" ORDER BY submitted_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.MembershipPayment
	for rows.Next() {
		var p domain.MembershipPayment
		if err := rows.Scan(&p.ID, &p.UserID, &p.AmountCents, &p.ReferenceCode, &p.CopyNumber, &p.Proof,
			&p.Status, &p.RejectedReason, &p.SubmittedOn, &p.ResolvedOn); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, count, rows.Err()
}

func int32sToInt64s(in []int32) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func int64sToInt32s(in []int64) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
