package orders

import "context"

type DecrementResult int

const (
	DecrementApplied DecrementResult = iota
	DecrementInsufficient
	DecrementAbsent
)

// Store runs fn as one atomic unit: either every write made through Tx commits or none does.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	// FindActiveItem returns *ItemNotFoundError for missing or soft-deleted books.
	FindActiveItem(ctx context.Context, id int64) (Item, error)
	// TryDecrementStock subtracts amount only if the book has at least amount on hand.
	// available is reported when the result is DecrementInsufficient.
	TryDecrementStock(ctx context.Context, id int64, amount int) (res DecrementResult, available int, err error)
	CreateOrder(ctx context.Context, o NewOrder) (Order, error)
}

// Reader serves persisted orders.
type Reader interface {
	GetOrder(ctx context.Context, userID, orderID int64) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*Order, error)
}
