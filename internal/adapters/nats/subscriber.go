package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRenderJobs consumes queued jobs. Malformed payloads are
// terminated; handler errors are redelivered up to MaxDeliver.
func (s *Subscriber) SubscribeRenderJobs(ctx context.Context, handler func(ctx context.Context, job *domain.RenderJob) error) error {
	sub, err := s.js.Subscribe(JobsSubject, func(msg *nats.Msg) {
		var job domain.RenderJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			metrics.JobsConsumed.WithLabelValues("malformed").Inc()
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &job); err != nil {
			metrics.JobsConsumed.WithLabelValues("nak").Inc()
			_ = msg.Nak()
			return
		}
		metrics.JobsConsumed.WithLabelValues("ack").Inc()
		_ = msg.Ack()
	},
		nats.Durable("render-worker"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeRenderEvents follows lifecycle events from now on.
func (s *Subscriber) SubscribeRenderEvents(ctx context.Context, handler func(ctx context.Context, event *domain.RenderEvent) error) error {
	sub, err := s.js.Subscribe(EventsSubject, func(msg *nats.Msg) {
		var event domain.RenderEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
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
