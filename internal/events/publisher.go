// Package events publishes gateway lifecycle events to NATS for other
// platform services. Publishing is best effort; a down broker never blocks
// or fails payment processing.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/models"
)

// Subjects for gateway lifecycle events
const (
	SubjectPaymentProcessed = "payment.processed"
	SubjectPaymentFailed    = "payment.failed"
	SubjectRefundProcessed  = "refund.processed"
	SubjectRefundFailed     = "refund.failed"
)

// PaymentEvent is the platform-facing payment event payload
type PaymentEvent struct {
	PaymentID  string    `json:"payment_id"`
	OrderID    string    `json:"order_id"`
	MerchantID string    `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RefundEvent is the platform-facing refund event payload
type RefundEvent struct {
	RefundID   string    `json:"refund_id"`
	PaymentID  string    `json:"payment_id"`
	MerchantID string    `json:"merchant_id"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes gateway events to NATS. A nil Publisher is valid and
// publishes nothing, so deployments without a broker run unchanged.
type Publisher struct {
	nc  *nats.Conn
	log *logrus.Entry
}

// NewPublisher connects to NATS at natsURL. An empty URL disables publishing.
func NewPublisher(natsURL string) (*Publisher, error) {
	if natsURL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(natsURL,
		nats.Name("payment-gateway"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:  nc,
		log: logrus.WithField("component", "events.publisher"),
	}, nil
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// PaymentProcessed announces a payment reaching a terminal state
func (p *Publisher) PaymentProcessed(payment *models.Payment) {
	subject := SubjectPaymentProcessed
	if payment.Status == models.PaymentFailed {
		subject = SubjectPaymentFailed
	}
	p.publish(subject, PaymentEvent{
		PaymentID:  payment.ID,
		OrderID:    payment.OrderID,
		MerchantID: payment.MerchantID.String(),
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Method:     string(payment.Method),
		Status:     string(payment.Status),
		ErrorCode:  payment.ErrorCode,
		Timestamp:  time.Now().UTC(),
	})
}

// RefundProcessed announces a refund reaching a terminal state
func (p *Publisher) RefundProcessed(refund *models.Refund) {
	subject := SubjectRefundProcessed
	if refund.Status == models.RefundFailed {
		subject = SubjectRefundFailed
	}
	p.publish(subject, RefundEvent{
		RefundID:   refund.ID,
		PaymentID:  refund.PaymentID,
		MerchantID: refund.MerchantID.String(),
		Amount:     refund.Amount,
		Status:     string(refund.Status),
		Timestamp:  time.Now().UTC(),
	})
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
