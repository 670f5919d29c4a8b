package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-bookstore/internal/auth"
	"github.com/ariefcatur/go-bookstore/internal/catalog"
)

type BooksHandler struct {
	Catalog Catalog
}

func (h *BooksHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/bestsellers", h.bestsellers)
		r.Get("/genre/{genreID}", h.listByGenre)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(authn, auth.RequireAdmin)
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *BooksHandler) list(w http.ResponseWriter, r *http.Request) {
	p, err := catalog.ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.Catalog.ListBooks(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BooksHandler) listByGenre(w http.ResponseWriter, r *http.Request) {
	genreID, ok := urlID(r, "genreID")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid genre id")
		return
	}
	p, err := catalog.ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.Catalog.ListByGenre(r.Context(), genreID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BooksHandler) bestsellers(w http.ResponseWriter, r *http.Request) {
	limit := catalog.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > catalog.MaxLimit {
			writeMsg(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	books, err := h.Catalog.Bestsellers(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BooksHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid book id")
		return
	}
	b, err := h.Catalog.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.NewBook
	if err := decode(r, &in); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.Catalog.CreateBook(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BooksHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid book id")
		return
	}
	var p catalog.BookPatch
	if err := decode(r, &p); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.Catalog.UpdateBook(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid book id")
		return
	}
	if err := h.Catalog.DeleteBook(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
