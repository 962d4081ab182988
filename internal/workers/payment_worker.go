package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"payment-gateway/internal/events"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
)

// Failure details written when the simulated processor declines a payment
const (
	paymentDeclinedCode = "PAYMENT_DECLINED"
	paymentDeclinedDesc = "Payment declined by processor"
)

// PaymentWorker drives pending payments to success or failed. Jobs may be
// redelivered; the terminal transition is a guarded update, so a payment
// already settled is left untouched.
type PaymentWorker struct {
	payments  repository.PaymentRepositoryInterface
	webhooks  *services.WebhookService
	sim       Simulator
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPaymentWorker creates a payment job handler
func NewPaymentWorker(payments repository.PaymentRepositoryInterface, webhooks *services.WebhookService, sim Simulator, publisher *events.Publisher) *PaymentWorker {
	return &PaymentWorker{
		payments:  payments,
		webhooks:  webhooks,
		sim:       sim,
		publisher: publisher,
		logger:    logrus.WithField("component", "payment_worker"),
	}
}

// Handle processes one payment job
func (w *PaymentWorker) Handle(ctx context.Context, job *queue.Job) error {
	var payload queue.PaymentJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode payment job: %w", err)
	}

	log := w.logger.WithField("payment_id", payload.PaymentID)
	log.Info("Processing payment")

	payment, err := w.payments.Get(ctx, payload.PaymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Warn("Payment not found, dropping job")
		return nil
	}
	if payment.Status != models.PaymentPending {
		log.WithField("status", payment.Status).Info("Payment already terminal, dropping job")
		return nil
	}

	select {
	case <-time.After(w.sim.PaymentDelay()):
	case <-ctx.Done():
		return ctx.Err()
	}

	var updated *models.Payment
	var transitioned bool
	if w.sim.PaymentOutcome(payment.Method) {
		updated, transitioned, err = w.payments.MarkTerminal(ctx, payload.PaymentID, models.PaymentSuccess, "", "")
	} else {
		updated, transitioned, err = w.payments.MarkTerminal(ctx, payload.PaymentID, models.PaymentFailed, paymentDeclinedCode, paymentDeclinedDesc)
	}
	if err != nil {
		return err
	}
	if !transitioned {
		log.Info("Payment settled concurrently, dropping job")
		return nil
	}

	log.WithField("status", updated.Status).Info("Payment processed")
	w.publisher.PaymentProcessed(updated)

	event := services.EventPaymentSuccess
	if updated.Status == models.PaymentFailed {
		event = services.EventPaymentFailed
	}
	return w.webhooks.Dispatch(ctx, updated.MerchantID, event, "payment", updated)
}
