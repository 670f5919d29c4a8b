package stats

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	kafkax "github.com/ariefcatur/go-bookstore/internal/kafka"
	"github.com/ariefcatur/go-bookstore/internal/metrics"
	"github.com/ariefcatur/go-bookstore/internal/orders"
)

// Projection is the read model fed by OrderPlaced events.
type Projection interface {
	// MarkSeen reports first=false when the event was already projected.
	MarkSeen(ctx context.Context, service, eventID string) (first bool, err error)
	Forget(ctx context.Context, service, eventID string) error
	Apply(ctx context.Context, p orders.OrderPlacedPayload) error
}

type Service struct {
	Projection  Projection
	ServiceName string
}

// HandleOrderPlaced is installed as the consumer handler. A nil return commits the offset.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message, retrying will not help
		log.WithError(err).WithField("offset", m.Offset).Error("undecodable envelope, skipping")
		metrics.EventsProcessed.WithLabelValues("unknown", "malformed").Inc()
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		metrics.EventsProcessed.WithLabelValues(env.EventType, "ignored").Inc()
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		log.WithError(err).WithField("event_id", env.EventID).Error("undecodable payload, skipping")
		metrics.EventsProcessed.WithLabelValues(env.EventType, "malformed").Inc()
		return nil
	}

	first, err := s.Projection.MarkSeen(ctx, s.ServiceName, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		metrics.EventsProcessed.WithLabelValues(env.EventType, "duplicate").Inc()
		return nil
	}

	if err := s.Projection.Apply(ctx, p); err != nil {
		// forget it so the consumer's retry projects it
		if ferr := s.Projection.Forget(ctx, s.ServiceName, env.EventID); ferr != nil {
			log.WithError(ferr).WithField("event_id", env.EventID).Warn("dedup rollback failed")
		}
		metrics.EventsProcessed.WithLabelValues(env.EventType, "failed").Inc()
		return fmt.Errorf("project order %d: %w", p.OrderID, err)
	}

	metrics.EventsProcessed.WithLabelValues(env.EventType, "applied").Inc()
	log.WithFields(log.Fields{
		"order_id": p.OrderID,
		"event_id": env.EventID,
		"trace_id": env.TraceID,
		"lines":    len(p.Items),
	}).Info("order projected")
	return nil
}
