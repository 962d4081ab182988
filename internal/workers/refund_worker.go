package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/events"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
)

// RefundWorker drives pending refunds to processed. The terminal transition
// re-validates the payment state and refund balance inside a transaction, so
// a refund that would oversubscribe the payment fails the job instead of
// settling.
type RefundWorker struct {
	refunds   repository.RefundRepositoryInterface
	webhooks  *services.WebhookService
	sim       Simulator
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewRefundWorker creates a refund job handler
func NewRefundWorker(refunds repository.RefundRepositoryInterface, webhooks *services.WebhookService, sim Simulator, publisher *events.Publisher) *RefundWorker {
	return &RefundWorker{
		refunds:   refunds,
		webhooks:  webhooks,
		sim:       sim,
		publisher: publisher,
		logger:    logrus.WithField("component", "refund_worker"),
	}
}

// Handle processes one refund job
func (w *RefundWorker) Handle(ctx context.Context, job *queue.Job) error {
	var payload queue.RefundJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode refund job: %w", err)
	}

	log := w.logger.WithField("refund_id", payload.RefundID)
	log.Info("Processing refund")

	refund, err := w.refunds.Get(ctx, payload.RefundID)
	if err != nil {
		return err
	}
	if refund == nil {
		log.Warn("Refund not found, dropping job")
		return nil
	}
	if refund.Status != models.RefundPending {
		log.WithField("status", refund.Status).Info("Refund already terminal, dropping job")
		return nil
	}

	select {
	case <-time.After(w.sim.RefundDelay()):
	case <-ctx.Done():
		return ctx.Err()
	}

	updated, transitioned, err := w.refunds.MarkProcessed(ctx, payload.RefundID)
	if errors.Is(err, repository.ErrAmountExceedsBalance) || errors.Is(err, repository.ErrPaymentNotRefundable) {
		return apperr.RaceErr("refund no longer payable", err)
	}
	if err != nil {
		return err
	}
	if !transitioned {
		log.Info("Refund settled concurrently, dropping job")
		return nil
	}

	log.Info("Refund processed")
	w.publisher.RefundProcessed(updated)

	return w.webhooks.Dispatch(ctx, updated.MerchantID, services.EventRefundProcessed, "refund", updated)
}
