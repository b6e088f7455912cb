package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type bookRepository struct {
	db dbtx
}

func NewBookRepository(db dbtx) repository.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, author, isbn, category, description, cover_url, total_copies, available_copies, created_on, updated_on`

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (title, author, isbn, category, description, cover_url, total_copies, available_copies, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		b.Title, b.Author, b.ISBN, b.Category, b.Description, b.CoverURL,
		b.TotalCopies, b.AvailableCopies, time.Now(), time.Now()).Scan(&b.ID)
}

func (r *bookRepository) scanBook(row *sql.Row) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Description, &b.CoverURL,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.ErrKindNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return r.scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	return r.scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books SET title=$1, author=$2, isbn=$3, category=$4, description=$5, cover_url=$6, total_copies=$7, available_copies=$8, updated_on=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query,
		b.Title, b.Author, b.ISBN, b.Category, b.Description, b.CoverURL,
		b.TotalCopies, b.AvailableCopies, time.Now(), b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewError(domain.ErrKindNotFound, "book %d not found", b.ID)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewError(domain.ErrKindNotFound, "book %d not found", id)
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, query, category string, page, pageSize int32) ([]domain.Book, int32, error) {
	offset := (page - 1) * pageSize
	sqlStr := `SELECT ` + bookColumns + ` FROM books WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if query != "" {
		sqlStr += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+query+"%")
		argIdx++
	}
	if category != "" {
		sqlStr += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}

	var count int32
	countSql := "SELECT count(*) FROM (" + sqlStr + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sqlStr += fmt.Sprintf(" ORDER BY title LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.Description, &b.CoverURL,
			&b.TotalCopies, &b.AvailableCopies, &b.CreatedOn, &b.UpdatedOn); err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	return books, count, rows.Err()
}
