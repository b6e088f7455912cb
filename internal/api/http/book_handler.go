package http

import (
	"net/http"

	"library-backend/internal/domain"
	"library-backend/internal/service"
)

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

type bookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	TotalCopies int32  `json:"total_copies"`
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	books, total, err := h.bookService.ListBooks(r.Context(), query, category, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaged(w, books, total, page, pageSize)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid book id"})
		return
	}

	book, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || req.TotalCopies <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title and a positive total_copies are required"})
		return
	}

	book := &domain.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		TotalCopies: req.TotalCopies,
	}
	if err := h.bookService.AddBook(r.Context(), caller, book); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid book id"})
		return
	}
	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	book := &domain.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		TotalCopies: req.TotalCopies,
	}
	if err := h.bookService.UpdateBook(r.Context(), caller, book); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid book id"})
		return
	}

	if err := h.bookService.DeleteBook(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
