package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-bookstore/internal/auth"
	"github.com/ariefcatur/go-bookstore/internal/orders"
)

const headerIdempotencyKey = "Idempotency-Key"

type TransactionsHandler struct {
	Orders OrderPlacer
	Reader OrderReader
	Stats  StatsReader
}

type PlaceOrderReq struct {
	Items []orders.RequestedItem `json:"items"`
}

func (h *TransactionsHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/transactions", func(r chi.Router) {
		r.Use(authn)
		r.Post("/", h.placeOrder)
		r.Get("/", h.listOrders)
		r.Get("/statistics", h.statistics)
		r.Get("/{id}", h.getOrder)
	})
}

func (h *TransactionsHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())

	var req PlaceOrderReq
	if err := decode(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
	order, replayed, err := h.Orders.PlaceOrderOnce(r.Context(), u.ID, key, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
		writeJSON(w, http.StatusOK, order)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *TransactionsHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	list, err := h.Reader.ListOrders(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TransactionsHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	id, ok := urlID(r, "id")
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	o, err := h.Reader.GetOrder(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *TransactionsHandler) statistics(w http.ResponseWriter, r *http.Request) {
	st, err := h.Stats.Statistics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
