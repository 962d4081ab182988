// Package queue provides the ordered, at-least-once job channel between
// payment/refund initiators and their background processors. Three
// independent lanes carry payment, refund and webhook-delivery jobs; a
// slow job in one lane never stalls the others.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"payment-gateway/internal/models"
)

// Lane identifies one of the independent job lanes
type Lane string

const (
	LanePayments Lane = "payments"
	LaneRefunds  Lane = "refunds"
	LaneWebhooks Lane = "webhooks"
)

// Job is the unit of work carried on a lane. Payloads are minimal; handlers
// re-fetch fresh entity state, tolerating arbitrary delay between enqueue and
// execution.
type Job struct {
	ID         string          `json:"id"`
	Lane       Lane            `json:"lane"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// PaymentJob is the payment-lane payload
type PaymentJob struct {
	PaymentID string               `json:"payment_id"`
	Method    models.PaymentMethod `json:"method"`
}

// RefundJob is the refund-lane payload
type RefundJob struct {
	RefundID string `json:"refund_id"`
}

// WebhookJob is the webhook-lane payload
type WebhookJob struct {
	WebhookLogID uuid.UUID `json:"webhook_log_id"`
}

// Client is the queue transport. Implementations provide at-least-once
// delivery within a lane; jobs enqueued with a delay become visible no
// earlier than that delay.
type Client interface {
	// Enqueue marshals payload and appends it to the lane, optionally delayed.
	Enqueue(ctx context.Context, lane Lane, payload interface{}, delay time.Duration) error

	// Dequeue blocks briefly waiting for a due job and returns nil when none
	// arrived, letting the caller re-check its context.
	Dequeue(ctx context.Context, lane Lane) (*Job, error)

	// Done records the outcome of a dequeued job for lane statistics.
	Done(ctx context.Context, lane Lane, success bool)

	// Stats reports the lane's job counts.
	Stats(ctx context.Context, lane Lane) (*models.QueueStats, error)

	// Close releases the transport.
	Close() error
}

// newJob wraps a payload into a Job with a fresh ID
func newJob(lane Lane, payload interface{}) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:         uuid.NewString(),
		Lane:       lane,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}, nil
}
