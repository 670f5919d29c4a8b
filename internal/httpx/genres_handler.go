package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-bookstore/internal/auth"
)

type GenresHandler struct {
	Catalog Catalog
}

type genreReq struct {
	Name string `json:"name"`
}

func (h *GenresHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/genre", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(authn, auth.RequireAdmin)
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *GenresHandler) list(w http.ResponseWriter, r *http.Request) {
	gs, err := h.Catalog.ListGenres(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (h *GenresHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid genre id")
		return
	}
	g, err := h.Catalog.GetGenre(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GenresHandler) create(w http.ResponseWriter, r *http.Request) {
	var req genreReq
	if err := decode(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	g, err := h.Catalog.CreateGenre(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GenresHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid genre id")
		return
	}
	var req genreReq
	if err := decode(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	g, err := h.Catalog.UpdateGenre(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GenresHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid genre id")
		return
	}
	if err := h.Catalog.DeleteGenre(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
