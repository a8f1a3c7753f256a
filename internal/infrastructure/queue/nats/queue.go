package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/infrastructure/resilience"
)

const defaultQueueGroup = "deck-archivers"

type Queue struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
	executor   *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ClientName           string
	QueueGroup           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	clientName := options.ClientName
	if clientName == "" {
		clientName = "rfp-slide-generator"
	}
	queueGroup := options.QueueGroup
	if queueGroup == "" {
		queueGroup = defaultQueueGroup
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:       conn,
		subject:    subject,
		queueGroup: queueGroup,
		executor:   options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishSlidesGenerated sends the event with the generation id as the
// message id, so a JetStream-backed subject drops duplicates.
func (q *Queue) PublishSlidesGenerated(ctx context.Context, event domain.SlidesGeneratedEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(q.subject)
	msg.Header.Set(nats.MsgIdHdr, event.GenerationID)
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = payload

	err = q.executor.Execute(ctx, "nats.publish", func(context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}, classifyPublishError)
	return publishError(err)
}

func (q *Queue) SubscribeSlidesGenerated(
	ctx context.Context,
	handler func(context.Context, domain.SlidesGeneratedEvent) error,
) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		event, err := decodeEvent(msg.Data)
		if err != nil {
			slog.Error("slides_event_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("slides_event_handler_failed", "generation_id", event.GenerationID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeEvent(event domain.SlidesGeneratedEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal slides event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (domain.SlidesGeneratedEvent, error) {
	var event domain.SlidesGeneratedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.SlidesGeneratedEvent{}, fmt.Errorf("unmarshal slides event: %w", err)
	}
	if event.GenerationID == "" {
		return domain.SlidesGeneratedEvent{}, errors.New("slides event has no generation id")
	}
	return event, nil
}
