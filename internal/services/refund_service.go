package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
)

// RefundService creates refunds against successful payments and hands them
// to the refund lane for asynchronous processing.
type RefundService struct {
	refunds  repository.RefundRepositoryInterface
	payments repository.PaymentRepositoryInterface
	jobs     queue.Client
	logger   *logrus.Entry
}

// NewRefundService creates a new refund service
func NewRefundService(refunds repository.RefundRepositoryInterface, payments repository.PaymentRepositoryInterface, jobs queue.Client) *RefundService {
	return &RefundService{
		refunds:  refunds,
		payments: payments,
		jobs:     jobs,
		logger:   logrus.WithField("component", "refund_service"),
	}
}

// uniqueRefundID generates a refund ID, regenerating on the unlikely collision
func (s *RefundService) uniqueRefundID(ctx context.Context) (string, error) {
	for {
		id := GenerateID(RefundIDPrefix)
		exists, err := s.refunds.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}

// Create validates the refund against the payment's remaining refundable
// balance, persists it pending and enqueues processing. The balance check
// counts both pending and processed refunds so concurrent requests cannot
// oversubscribe the payment.
func (s *RefundService) Create(ctx context.Context, merchantID uuid.UUID, paymentID string, req *models.CreateRefundRequest) (*models.Refund, error) {
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetForMerchant(ctx, paymentID, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if payment == nil {
		return nil, apperr.NotFoundErr("Payment not found")
	}

	id, err := s.uniqueRefundID(ctx)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	refund := &models.Refund{
		ID:         id,
		PaymentID:  paymentID,
		MerchantID: merchantID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Status:     models.RefundPending,
	}
	if err := s.refunds.CreateWithBalanceCheck(ctx, refund); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotRefundable):
			return nil, apperr.StateConflictErr("Payment not in refundable state")
		case errors.Is(err, repository.ErrAmountExceedsBalance):
			return nil, apperr.StateConflictErr("Refund amount exceeds available amount")
		default:
			return nil, apperr.Wrap(err)
		}
	}

	if err := s.jobs.Enqueue(ctx, queue.LaneRefunds, queue.RefundJob{RefundID: refund.ID}, 0); err != nil {
		return nil, apperr.Wrap(err)
	}

	s.logger.WithFields(logrus.Fields{
		"refund_id":  refund.ID,
		"payment_id": paymentID,
		"amount":     req.Amount,
	}).Info("Refund created")
	return refund, nil
}

// Get fetches a merchant's refund by ID
func (s *RefundService) Get(ctx context.Context, merchantID uuid.UUID, refundID string) (*models.Refund, error) {
	refund, err := s.refunds.GetForMerchant(ctx, refundID, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if refund == nil {
		return nil, apperr.NotFoundErr("Refund not found")
	}
	return refund, nil
}
