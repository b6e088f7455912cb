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

type borrowRepository struct {
	db dbtx
}

func NewBorrowRepository(db dbtx) repository.BorrowRepository {
	return &borrowRepository{db: db}
}

const borrowColumns = `id, user_id, book_id, status, queue_position, reservation_expiry, borrow_date, due_date, return_date, cancelled_reason, created_on, updated_on`

func (r *borrowRepository) Create(ctx context.Context, rec *domain.BorrowRecord) error {
	query := `INSERT INTO borrow_records (user_id, book_id, status, queue_position, reservation_expiry, borrow_date, due_date, return_date, cancelled_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.BookID, rec.Status, rec.QueuePosition, rec.ReservationExpiry,
		rec.BorrowDate, rec.DueDate, rec.ReturnDate, nullableReason(rec.CancelledReason),
		time.Now(), time.Now()).
		Scan(&rec.ID, &rec.CreatedOn, &rec.UpdatedOn)
}

func nullableReason(reason domain.CancelReason) interface{} {
	if reason == "" {
		return nil
	}
	return string(reason)
}

func scanBorrow(scan func(dest ...interface{}) error) (*domain.BorrowRecord, error) {
	rec := &domain.BorrowRecord{}
	var reason sql.NullString
	err := scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.Status, &rec.QueuePosition,
		&rec.ReservationExpiry, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate,
		&reason, &rec.CreatedOn, &rec.UpdatedOn)
	if err != nil {
		return nil, err
	}
	rec.CancelledReason = domain.CancelReason(reason.String)
	return rec, nil
}

func (r *borrowRepository) getByID(ctx context.Context, id int32, forUpdate bool) (*domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rec, err := scanBorrow(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrKindNotFound, "borrow record %d not found", id)
		}
		return nil, err
	}
	return rec, nil
}

func (r *borrowRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRecord, error) {
	return r.getByID(ctx, id, false)
}

func (r *borrowRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.BorrowRecord, error) {
	return r.getByID(ctx, id, true)
}

func (r *borrowRepository) Update(ctx context.Context, rec *domain.BorrowRecord) error {
	query := `UPDATE borrow_records SET status=$1, queue_position=$2, reservation_expiry=$3, borrow_date=$4, due_date=$5, return_date=$6, cancelled_reason=$7, updated_on=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query,
		rec.Status, rec.QueuePosition, rec.ReservationExpiry, rec.BorrowDate,
		rec.DueDate, rec.ReturnDate, nullableReason(rec.CancelledReason), time.Now(), rec.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewError(domain.ErrKindNotFound, "borrow record %d not found", rec.ID)
	}
	return nil
}

func (r *borrowRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]domain.BorrowRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.BorrowRecord
	for rows.Next() {
		rec, err := scanBorrow(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE user_id = $1`
	args := []interface{}{userID}
	if len(statuses) > 0 {
		strs := make([]string, len(statuses))
		for i, s := range statuses {
			strs[i] = string(s)
		}
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(strs))
	}
	query += ` ORDER BY created_on DESC`
	return r.queryRecords(ctx, query, args...)
}

func (r *borrowRepository) ListAll(ctx context.Context, status string, page, pageSize int32) ([]domain.BorrowRecord, int32, error) {
	offset := (page - 1) * pageSize
	sqlStr := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if status != "" {
		sqlStr += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sqlStr + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sqlStr += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	records, err := r.queryRecords(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, count, nil
}

func (r *borrowRepository) CountHeldByUser(ctx context.Context, userID int32) (int32, error) {
	// Counts records holding or about to hold a copy: reserved and the
	// borrowed family. Queued records do not consume the limit.
	query := `SELECT count(*) FROM borrow_records WHERE user_id = $1 AND status IN ('reserved', 'borrowed', 'return_requested', 'overdue')`
	var count int32
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *borrowRepository) HasOverdue(ctx context.Context, userID int32) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM borrow_records WHERE user_id = $1 AND status = 'overdue')`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	return exists, err
}

func (r *borrowRepository) HasActiveForBook(ctx context.Context, userID, bookID int32) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM borrow_records WHERE user_id = $1 AND book_id = $2 AND status NOT IN ('returned', 'cancelled'))`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *borrowRepository) CountActiveByUser(ctx context.Context, userID int32) (int32, error) {
	query := `SELECT count(*) FROM borrow_records WHERE user_id = $1 AND status NOT IN ('returned', 'cancelled')`
	var count int32
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *borrowRepository) NextQueuePosition(ctx context.Context, bookID int32) (int32, error) {
	query := `SELECT COALESCE(MAX(queue_position), 0) + 1 FROM borrow_records WHERE book_id = $1 AND status = 'queued'`
	var pos int32
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(&pos)
	return pos, err
}

func (r *borrowRepository) QueueHead(ctx context.Context, bookID int32) (*domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE book_id = $1 AND status = 'queued' ORDER BY queue_position LIMIT 1 FOR UPDATE`
	rec, err := scanBorrow(r.db.QueryRowContext(ctx, query, bookID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // empty queue
		}
		return nil, err
	}
	return rec, nil
}

// ShiftQueue keeps positions dense after a queued record leaves the queue.
func (r *borrowRepository) ShiftQueue(ctx context.Context, bookID, afterPosition int32) error {
	query := `UPDATE borrow_records SET queue_position = queue_position - 1, updated_on = $1 WHERE book_id = $2 AND status = 'queued' AND queue_position > $3`
	_, err := r.db.ExecContext(ctx, query, time.Now(), bookID, afterPosition)
	return err
}

func (r *borrowRepository) ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE status = 'reserved' AND reservation_expiry < $1 ORDER BY id`
	return r.queryRecords(ctx, query, now)
}

func (r *borrowRepository) ListDueBorrows(ctx context.Context, now time.Time) ([]domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE status = 'borrowed' AND due_date < $1 ORDER BY id`
	return r.queryRecords(ctx, query, now)
}

func (r *borrowRepository) ListOverdue(ctx context.Context) ([]domain.BorrowRecord, error) {
	query := `SELECT ` + borrowColumns + ` FROM borrow_records WHERE status = 'overdue' ORDER BY id`
	return r.queryRecords(ctx, query)
}
