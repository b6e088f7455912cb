package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-backend/internal/repository"

	_ "github.com/lib/pq"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, letting
// every repository run against either the pool or a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookRepository
	repository.BorrowRepository
	repository.FineRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		BookRepository:         NewBookRepository(db),
		BorrowRepository:       NewBorrowRepository(db),
		FineRepository:         NewFineRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// Repositories returns the pool-bound repository bundle.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:         s.UserRepository,
		Books:         s.BookRepository,
		Borrows:       s.BorrowRepository,
		Fines:         s.FineRepository,
		Notifications: s.NotificationRepository,
	}
}

// WithinTx runs fn with repositories bound to a single transaction,
// committing on success and rolling back on error or panic.
func (s *Store) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	repos := repository.Repositories{
		Users:         NewUserRepository(tx),
		Books:         NewBookRepository(tx),
		Borrows:       NewBorrowRepository(tx),
		Fines:         NewFineRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
