package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	kafkax "github.com/ariefcatur/go-bookstore/internal/kafka"
	"github.com/ariefcatur/go-bookstore/internal/metrics"
)

const (
	maxLineItems      = 100
	maxIdempotencyKey = 255
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service places orders. Store is required; the other collaborators are optional.
type Service struct {
	Store       Store
	Reader      Reader
	Idem        IdempotencyCache
	Producer    Publisher
	ServiceName string
	Timeout     time.Duration
	MaxAttempts int
}

// PlaceOrder validates availability of every requested book, decrements stock and records
// the order with its line items as one atomic unit. Repeated book ids stay separate line
// items and their quantities are summed against the same stock check.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, items []RequestedItem) (*Order, error) {
	return s.place(ctx, userID, "", items)
}

// PlaceOrderOnce is PlaceOrder guarded by a client supplied idempotency key. A key that was
// already used by the same user returns the original order with replayed=true.
func (s *Service) PlaceOrderOnce(ctx context.Context, userID int64, key string, items []RequestedItem) (order *Order, replayed bool, err error) {
	if key == "" {
		order, err = s.PlaceOrder(ctx, userID, items)
		return order, false, err
	}
	if len(key) > maxIdempotencyKey {
		return nil, false, s.fail(&InvalidRequestError{Reason: "idempotency key too long"})
	}

	if prev, err := s.previous(ctx, userID, key); err != nil || prev != nil {
		return prev, prev != nil, err
	}

	order, err = s.place(ctx, userID, key, items)
	if errors.Is(err, ErrDuplicateOrder) {
		// lost the race against a concurrent request with the same key
		prev, perr := s.previous(ctx, userID, key)
		if perr != nil {
			return nil, false, perr
		}
		if prev != nil {
			return prev, true, nil
		}
		return nil, false, s.fail(&StorageError{Op: "place order", Err: err})
	}
	if err != nil {
		return nil, false, err
	}

	if s.Idem != nil {
		if err := s.Idem.Remember(ctx, userID, key, order.ID); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("idempotency cache write failed")
		}
	}
	return order, false, nil
}

func (s *Service) previous(ctx context.Context, userID int64, key string) (*Order, error) {
	if s.Reader == nil {
		return nil, nil
	}
	if s.Idem != nil {
		id, ok, err := s.Idem.Lookup(ctx, userID, key)
		if err != nil {
			log.WithError(err).Warn("idempotency cache read failed")
		}
		if ok {
			o, err := s.Reader.GetOrder(ctx, userID, id)
			if err == nil {
				return o, nil
			}
			if !errors.Is(err, ErrOrderNotFound) {
				return nil, s.fail(&StorageError{Op: "load order", Err: err})
			}
		}
	}
	o, err := s.Reader.FindByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(&StorageError{Op: "load order", Err: err})
	}
	return o, nil
}

func (s *Service) place(ctx context.Context, userID int64, key string, items []RequestedItem) (*Order, error) {
	totals, err := validate(userID, items)
	if err != nil {
		return nil, s.fail(err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var order Order
	for attempt := 1; ; attempt++ {
		order, err = s.attempt(ctx, userID, key, items, totals)
		if err == nil || !errors.Is(err, ErrTxConflict) || attempt >= attempts || ctx.Err() != nil {
			break
		}
		metrics.OrderRetries.Inc()
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "attempt": attempt}).Info("order placement conflict, retrying")
	}
	if err != nil {
		return nil, s.fail(classify(err))
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderLines.Observe(float64(len(order.Items)))
	log.WithFields(log.Fields{"order_id": order.ID, "user_id": userID, "lines": len(order.Items), "total": order.Total.String()}).Info("order placed")

	s.publishPlaced(ctx, &order)
	return &order, nil
}

// attempt runs one atomic unit. Stock is decremented in ascending book id order so
// overlapping orders always lock rows in the same order.
func (s *Service) attempt(ctx context.Context, userID int64, key string, items []RequestedItem, totals map[int64]int) (Order, error) {
	var out Order
	err := s.Store.InTx(ctx, func(tx Tx) error {
		found := make(map[int64]Item, len(totals))
		for _, it := range items {
			if _, ok := found[it.BookID]; ok {
				continue
			}
			item, err := tx.FindActiveItem(ctx, it.BookID)
			if err != nil {
				return err
			}
			found[it.BookID] = item
		}

		// fail fast in request order on what this transaction observed
		for _, it := range items {
			if item := found[it.BookID]; item.Stock < totals[it.BookID] {
				return &InsufficientStockError{ItemID: it.BookID, Available: item.Stock, Requested: totals[it.BookID]}
			}
		}

		ids := make([]int64, 0, len(totals))
		for id := range totals {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			res, available, err := tx.TryDecrementStock(ctx, id, totals[id])
			if err != nil {
				return err
			}
			switch res {
			case DecrementApplied:
			case DecrementInsufficient:
				return &InsufficientStockError{ItemID: id, Available: available, Requested: totals[id]}
			case DecrementAbsent:
				return &ItemNotFoundError{ItemID: id}
			default:
				return fmt.Errorf("decrement book %d: unexpected result %d", id, res)
			}
		}

		lines := make([]LineItem, len(items))
		for i, it := range items {
			lines[i] = LineItem{
				BookID:    it.BookID,
				Position:  i + 1,
				Quantity:  it.Quantity,
				UnitPrice: found[it.BookID].Price,
			}
		}
		o, err := tx.CreateOrder(ctx, NewOrder{UserID: userID, IdempotencyKey: key, Lines: lines})
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func validate(userID int64, items []RequestedItem) (map[int64]int, error) {
	if userID <= 0 {
		return nil, &InvalidRequestError{Reason: "user id must be positive"}
	}
	if len(items) == 0 {
		return nil, &InvalidRequestError{Reason: "items are required"}
	}
	if len(items) > maxLineItems {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("at most %d items per order", maxLineItems)}
	}
	totals := make(map[int64]int, len(items))
	for i, it := range items {
		if it.BookID <= 0 {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("items[%d]: book_id must be positive", i)}
		}
		if it.Quantity < 1 {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("items[%d]: quantity must be at least 1", i)}
		}
		totals[it.BookID] += it.Quantity
		if totals[it.BookID] > math.MaxInt32 {
			return nil, &InvalidRequestError{Reason: fmt.Sprintf("items[%d]: quantity too large", i)}
		}
	}
	return totals, nil
}

// classify keeps the caller-facing failures and turns everything else into a StorageError.
func classify(err error) error {
	var (
		inv  *InvalidRequestError
		nf   *ItemNotFoundError
		is   *InsufficientStockError
		stor *StorageError
	)
	switch {
	case errors.As(err, &inv), errors.As(err, &nf), errors.As(err, &is), errors.As(err, &stor):
		return err
	case errors.Is(err, ErrDuplicateOrder):
		return err
	}
	return &StorageError{Op: "place order", Err: err}
}

func (s *Service) fail(err error) error {
	metrics.OrderFailures.WithLabelValues(FailureReason(err)).Inc()
	return err
}

// FailureReason maps a placement error to its failure class.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrDuplicateOrder):
		return "duplicate"
	default:
		return "storage"
	}
}

func (s *Service) publishPlaced(ctx context.Context, o *Order) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: fmt.Sprint(o.ID),
		Payload:       kafkax.MustMarshal(placedPayload(o)),
	}
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
