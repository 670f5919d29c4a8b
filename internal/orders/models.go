package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the placement service's view of a catalog book.
type Item struct {
	ID    int64
	Title string
	Price decimal.Decimal
	Stock int
}

type RequestedItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Total     decimal.Decimal `json:"total"`
	Items     []LineItem      `json:"order_items"`
}

// LineItem keeps the price paid at checkout so historical totals do not drift.
type LineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	BookID    int64           `json:"book_id"`
	Position  int             `json:"position"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Book      *BookSummary    `json:"book,omitempty"`
}

type BookSummary struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Writer string          `json:"writer"`
	Price  decimal.Decimal `json:"price"`
}

// NewOrder is what the store persists for a validated checkout.
type NewOrder struct {
	UserID         int64
	IdempotencyKey string
	Lines          []LineItem
}

func orderTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
