package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"daily-report/internal/domain"
	"daily-report/internal/observability"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ReportExchange receives report lifecycle events, routed by event type.
const ReportExchange = "reports.events"

var ErrPublisherClosed = errors.New("rabbitmq connection is closed")

type RabbitMQ struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// ReportEvent is the message body published for every created or updated report
type ReportEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ReportID     int64     `json:"report_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	ReportDate   string    `json:"report_date"`
	Title        string    `json:"title"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewReportEvent builds the event for a persisted report
func NewReportEvent(eventType string, report *domain.Report, now time.Time) ReportEvent {
	return ReportEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		ReportID:     report.ID,
		EmployeeID:   report.EmployeeID,
		EmployeeName: report.EmployeeName,
		ReportDate:   report.FormattedDate(),
		Title:        report.Title,
		OccurredAt:   now.UTC(),
	}
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		channel: ch,
	}

	if err := rmq.Setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

// NewRabbitMQWithRetry keeps dialing until the broker accepts the
// connection, the attempts run out or ctx is done.
func NewRabbitMQWithRetry(ctx context.Context, url string, attempts int, delay time.Duration) (*RabbitMQ, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		rmq, err := NewRabbitMQ(url)
		if err == nil {
			return rmq, nil
		}
		lastErr = err

		slog.Warn("rabbitmq not reachable, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("error", err.Error()))

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (r *RabbitMQ) Setup() error {
	if err := r.channel.ExchangeDeclare(
		ReportExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare report events exchange: %w", err)
	}

	slog.Info("rabbitmq setup completed successfully")
	return nil
}

// PublishReportEvent publishes a report event with the event type as routing key
func (r *RabbitMQ) PublishReportEvent(ctx context.Context, eventType string, report *domain.Report) error {
	event := NewReportEvent(eventType, report, time.Now())

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}

	err = r.publish(ctx, eventType, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         eventType,
		Timestamp:    event.OccurredAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		observability.ReportEventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("failed to publish report event: %w", err)
	}
	observability.ReportEventsPublished.WithLabelValues(eventType, "ok").Inc()

	observability.FromContext(ctx).Debug("published report event",
		slog.String("type", eventType),
		slog.String("event_id", event.ID),
		slog.Int64("report_id", report.ID))
	return nil
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil || r.channel.IsClosed() {
		return ErrPublisherClosed
	}
	return r.channel.PublishWithContext(ctx, ReportExchange, routingKey, false, false, msg)
}

func (r *RabbitMQ) IsClosed() bool {
	return r == nil || r.conn == nil || r.conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
