package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-bookstore/internal/auth"
	"github.com/ariefcatur/go-bookstore/internal/catalog"
	"github.com/ariefcatur/go-bookstore/internal/orders"
)

// retryAfter is sent with 503 responses for transient storage failures.
const retryAfter = "1"

type errorBody struct {
	Error     string `json:"error"`
	ItemID    int64  `json:"item_id,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// writeError maps domain failures to status codes. Anything unrecognised is logged and
// reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		insufficient *orders.InsufficientStockError
		notFound     *orders.ItemNotFoundError
	)
	switch {
	case errors.As(err, &insufficient):
		available := insufficient.Available
		writeJSON(w, http.StatusConflict, errorBody{
			Error:     "insufficient stock",
			ItemID:    insufficient.ItemID,
			Available: &available,
			Requested: insufficient.Requested,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "book not found", ItemID: notFound.ItemID})
	case errors.Is(err, orders.ErrInvalidRequest),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidInput):
		writeMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		writeMsg(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUserNotFound):
		writeMsg(w, http.StatusNotFound, "user not found")
	case errors.Is(err, catalog.ErrConflict):
		writeMsg(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeMsg(w, http.StatusConflict, "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMsg(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, orders.ErrStorage):
		log.WithError(err).WithField("path", r.URL.Path).Warn("transient storage failure")
		w.Header().Set("Retry-After", retryAfter)
		writeMsg(w, http.StatusServiceUnavailable, "temporarily unavailable, retry later")
	default:
		log.WithError(err).WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		writeMsg(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}
