package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"library-backend/internal/domain"
	"library-backend/internal/repository/postgres"
)

func borrowRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "book_id", "status", "queue_position", "reservation_expiry", "borrow_date", "due_date", "return_date", "cancelled_reason", "created_on", "updated_on"})
}

func TestBorrowRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		expiry := time.Now().Add(48 * time.Hour)
		rec := &domain.BorrowRecord{
			UserID:            1,
			BookID:            5,
			Status:            domain.BorrowStatusReserved,
			ReservationExpiry: &expiry,
		}

		mock.ExpectQuery("INSERT INTO borrow_records").
			WithArgs(rec.UserID, rec.BookID, rec.Status, rec.QueuePosition, rec.ReservationExpiry,
				rec.BorrowDate, rec.DueDate, rec.ReturnDate, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).AddRow(7, time.Now(), time.Now()))

		err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), rec.ID)
	})
}

func TestBorrowRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := borrowRows().
			AddRow(7, 1, 5, "borrowed", nil, nil, time.Now(), time.Now().Add(7*24*time.Hour), nil, nil, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM borrow_records WHERE id = \\$1").
			WithArgs(int32(7)).
			WillReturnRows(rows)

		rec, err := repo.GetByID(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusBorrowed, rec.Status)
		assert.NotNil(t, rec.DueDate)
		assert.Nil(t, rec.QueuePosition)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM borrow_records WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(borrowRows())

		rec, err := repo.GetByID(ctx, 99)
		assert.Nil(t, rec)
		assert.True(t, domain.IsKind(err, domain.ErrKindNotFound))
	})
}

func TestBorrowRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		rec := &domain.BorrowRecord{ID: 99, Status: domain.BorrowStatusReturned}
		mock.ExpectExec("UPDATE borrow_records SET").
			WithArgs(rec.Status, nil, nil, nil, nil, nil, nil, sqlmock.AnyArg(), rec.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, rec)
		assert.True(t, domain.IsKind(err, domain.ErrKindNotFound))
	})
}

func TestBorrowRepository_Queue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("NextQueuePosition Starts At One", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE\\(MAX\\(queue_position\\), 0\\) \\+ 1 FROM borrow_records").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))

		pos, err := repo.NextQueuePosition(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), pos)
	})

	t.Run("QueueHead Returns Nil On Empty Queue", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM borrow_records WHERE book_id = \\$1 AND status = 'queued'").
			WithArgs(int32(5)).
			WillReturnRows(borrowRows())

		head, err := repo.QueueHead(ctx, 5)
		assert.NoError(t, err)
		assert.Nil(t, head)
	})

	t.Run("QueueHead Returns Lowest Position", func(t *testing.T) {
		rows := borrowRows().
			AddRow(8, 2, 5, "queued", 1, nil, nil, nil, nil, nil, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM borrow_records WHERE book_id = \\$1 AND status = 'queued'").
			WithArgs(int32(5)).
			WillReturnRows(rows)

		head, err := repo.QueueHead(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, int32(8), head.ID)
		assert.Equal(t, int32(1), *head.QueuePosition)
	})

	t.Run("ShiftQueue", func(t *testing.T) {
		mock.ExpectExec("UPDATE borrow_records SET queue_position = queue_position - 1").
			WithArgs(sqlmock.AnyArg(), int32(5), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		err := repo.ShiftQueue(ctx, 5, 2)
		assert.NoError(t, err)
	})
}

func TestBorrowRepository_Counters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("CountHeldByUser Ignores Queued", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM borrow_records WHERE user_id = \\$1 AND status IN").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.CountHeldByUser(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), count)
	})

	t.Run("HasOverdue", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		overdue, err := repo.HasOverdue(ctx, 1)
		assert.NoError(t, err)
		assert.True(t, overdue)
	})
}

func TestBorrowRepository_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBorrowRepository(db)
	ctx := context.Background()

	t.Run("Filters By Status", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM").
			WithArgs("overdue").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := borrowRows().
			AddRow(7, 1, 5, "overdue", nil, nil, time.Now(), time.Now().Add(-24*time.Hour), nil, nil, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM borrow_records WHERE 1=1 AND status = \\$1").
			WithArgs("overdue", int32(20), int32(0)).
			WillReturnRows(rows)

		records, total, err := repo.ListAll(ctx, "overdue", 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Len(t, records, 1)
		assert.Equal(t, domain.BorrowStatusOverdue, records[0].Status)
	})
}
