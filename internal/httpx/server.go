package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-bookstore/internal/auth"
	"github.com/ariefcatur/go-bookstore/internal/catalog"
	"github.com/ariefcatur/go-bookstore/internal/metrics"
	"github.com/ariefcatur/go-bookstore/internal/orders"
)

type OrderPlacer interface {
	PlaceOrderOnce(ctx context.Context, userID int64, key string, items []orders.RequestedItem) (*orders.Order, bool, error)
}

type OrderReader interface {
	ListOrders(ctx context.Context, userID int64) ([]orders.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*orders.Order, error)
}

type StatsReader interface {
	Statistics(ctx context.Context) (orders.Statistics, error)
}

type Catalog interface {
	CreateBook(ctx context.Context, in catalog.NewBook) (*catalog.Book, error)
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
	ListBooks(ctx context.Context, p catalog.ListParams) (*catalog.Page, error)
	ListByGenre(ctx context.Context, genreID int64, p catalog.ListParams) (*catalog.Page, error)
	UpdateBook(ctx context.Context, id int64, p catalog.BookPatch) (*catalog.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	Bestsellers(ctx context.Context, limit int) ([]catalog.Book, error)

	CreateGenre(ctx context.Context, name string) (*catalog.Genre, error)
	ListGenres(ctx context.Context) ([]catalog.Genre, error)
	GetGenre(ctx context.Context, id int64) (*catalog.Genre, error)
	UpdateGenre(ctx context.Context, id int64, name string) (*catalog.Genre, error)
	DeleteGenre(ctx context.Context, id int64) error
}

// Deps wires the handlers. Every field is required.
type Deps struct {
	ServiceName string
	Auth        *auth.Service
	Users       auth.UserStore
	Catalog     Catalog
	Orders      OrderPlacer
	OrderReader OrderReader
	Stats       StatsReader
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(metrics.Middleware(d.ServiceName))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authn := auth.Authenticate(d.Auth.Tokens, d.Users)

	(&AuthHandler{Auth: d.Auth}).Register(r, authn)
	(&BooksHandler{Catalog: d.Catalog}).Register(r, authn)
	(&GenresHandler{Catalog: d.Catalog}).Register(r, authn)
	(&TransactionsHandler{Orders: d.Orders, Reader: d.OrderReader, Stats: d.Stats}).Register(r, authn)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := log.WithFields(log.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      r.RemoteAddr,
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	})
}
