package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedLine struct {
	BookID    int64           `json:"book_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlacedPayload struct {
	OrderID  int64           `json:"order_id"`
	UserID   int64           `json:"user_id"`
	Items    []PlacedLine    `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

func placedPayload(o *Order) OrderPlacedPayload {
	lines := make([]PlacedLine, 0, len(o.Items))
	for _, l := range o.Items {
		lines = append(lines, PlacedLine{BookID: l.BookID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return OrderPlacedPayload{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Items:    lines,
		Total:    o.Total,
		PlacedAt: o.CreatedAt,
	}
}
