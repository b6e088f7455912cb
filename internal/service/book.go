package service

import (
	"context"

	"library-backend/internal/domain"
	"library-backend/internal/repository"
)

type bookService struct {
	bookRepo   repository.BookRepository
	borrowRepo repository.BorrowRepository
}

func NewBookService(bookRepo repository.BookRepository, borrowRepo repository.BorrowRepository) BookService {
	return &bookService{bookRepo: bookRepo, borrowRepo: borrowRepo}
}

func (s *bookService) AddBook(ctx context.Context, caller Caller, book *domain.Book) error {
	if !caller.IsAdmin() {
		return domain.NewError(domain.ErrKindUnauthorized, "only admins may add books")
	}
	if book.TotalCopies < 0 {
		return domain.NewError(domain.ErrKindInvalidState, "total copies cannot be negative")
	}
	book.AvailableCopies = book.TotalCopies
	return s.bookRepo.Create(ctx, book)
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

func (s *bookService) UpdateBook(ctx context.Context, caller Caller, book *domain.Book) error {
	if !caller.IsAdmin() {
		return domain.NewError(domain.ErrKindUnauthorized, "only admins may update books")
	}

	existing, err := s.bookRepo.GetByID(ctx, book.ID)
	if err != nil {
		return err
	}

	// Copy-count edits preserve the derived invariant
	// available = total - active borrows.
	activeHolds := existing.TotalCopies - existing.AvailableCopies
	if book.TotalCopies < activeHolds {
		return domain.NewError(domain.ErrKindInvalidState, "book %d has %d copies out; total copies cannot drop below that", book.ID, activeHolds)
	}
	book.AvailableCopies = book.TotalCopies - activeHolds

	return s.bookRepo.Update(ctx, book)
}

func (s *bookService) DeleteBook(ctx context.Context, caller Caller, id int32) error {
	if !caller.IsAdmin() {
		return domain.NewError(domain.ErrKindUnauthorized, "only admins may delete books")
	}

	existing, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AvailableCopies < existing.TotalCopies {
		return domain.NewError(domain.ErrKindInvalidState, "book %d has outstanding borrows and cannot be deleted", id)
	}
	return s.bookRepo.Delete(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, query, category string, page, pageSize int32) ([]domain.Book, int32, error) {
	return s.bookRepo.List(ctx, query, category, page, pageSize)
}
