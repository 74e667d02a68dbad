package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
// Each API replica needs every event, so durable consumer names carry the
// replica's instance id.
type Subscriber struct {
	conn     *nats.Conn
	js       nats.JetStreamContext
	instance string
	subs     []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url, instance string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, instance: Token(instance)}, nil
}

func (s *Subscriber) SubscribeReviewPosted(ctx context.Context, handler func(ctx context.Context, event *domain.ReviewPostedEvent) error) error {
	return subscribe(ctx, s, SubjectReviewPosted+".>", "place-cache-invalidator", handler)
}

func (s *Subscriber) SubscribeViewportExpanded(ctx context.Context, handler func(ctx context.Context, event *domain.ViewportExpandedEvent) error) error {
	return subscribe(ctx, s, SubjectViewportExpanded+".>", "map-session-sync", handler)
}

func subscribe[T any](ctx context.Context, s *Subscriber, subject, durable string, handler func(ctx context.Context, event *T) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var event T
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("dropping malformed event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable+"-"+s.instance),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
