package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
)

// idempotencyTTL is how long a stored payment-creation response replays
const idempotencyTTL = 24 * time.Hour

// PaymentService creates payments and hands them to the payment lane for
// asynchronous processing.
type PaymentService struct {
	payments repository.PaymentRepositoryInterface
	orders   repository.OrderRepositoryInterface
	jobs     queue.Client
	logger   *logrus.Entry
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments repository.PaymentRepositoryInterface, orders repository.OrderRepositoryInterface, jobs queue.Client) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		jobs:     jobs,
		logger:   logrus.WithField("component", "payment_service"),
	}
}

// Replay returns the stored response for an idempotency key, or nil when the
// key is unseen or expired. Replayed bodies are byte-identical to the first
// response.
func (s *PaymentService) Replay(ctx context.Context, merchantID uuid.UUID, idempotencyKey string) (models.JSONB, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	stored, err := s.payments.GetIdempotentResponse(ctx, idempotencyKey, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return stored, nil
}

// Create validates the request, persists a pending payment and enqueues it
// for processing. When idempotencyKey is non-empty the response body is
// stored so later retransmissions replay it.
func (s *PaymentService) Create(ctx context.Context, merchantID uuid.UUID, idempotencyKey string, req *models.CreatePaymentRequest) (*models.PaymentResponse, error) {
	order, err := s.orders.GetForMerchant(ctx, req.OrderID, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if order == nil {
		return nil, apperr.NotFoundErr("Order not found")
	}

	resp, err := s.create(ctx, merchantID, order, req, order.Amount, true)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if err := s.storeIdempotent(ctx, merchantID, idempotencyKey, resp); err != nil {
			s.logger.WithError(err).WithField("payment_id", resp.ID).Error("Failed to store idempotent response")
		}
	}
	return resp, nil
}

// CreatePublic creates a payment from the hosted checkout page. The caller
// is unauthenticated; the merchant comes from the order, card validation is
// relaxed, and a positive request amount overrides the order amount.
func (s *PaymentService) CreatePublic(ctx context.Context, req *models.CreatePaymentRequest) (*models.PaymentResponse, error) {
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if order == nil {
		return nil, apperr.NotFoundErr("Order not found")
	}

	amount := order.Amount
	if req.Amount > 0 {
		amount = req.Amount
	}
	return s.create(ctx, order.MerchantID, order, req, amount, false)
}

func (s *PaymentService) create(ctx context.Context, merchantID uuid.UUID, order *models.Order, req *models.CreatePaymentRequest, amount int64, strict bool) (*models.PaymentResponse, error) {
	network, last4, err := ValidateMethodDetails(req.Method, req.VPA, req.Card, strict)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:          GenerateID(PaymentIDPrefix),
		OrderID:     order.ID,
		MerchantID:  merchantID,
		Amount:      amount,
		Currency:    order.Currency,
		Method:      req.Method,
		Status:      models.PaymentPending,
		CardNetwork: network,
		CardLast4:   last4,
	}
	if req.Method == models.MethodUPI {
		payment.VPA = req.VPA
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperr.Wrap(err)
	}

	job := queue.PaymentJob{PaymentID: payment.ID, Method: payment.Method}
	if err := s.jobs.Enqueue(ctx, queue.LanePayments, job, 0); err != nil {
		return nil, apperr.Wrap(err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"order_id":   order.ID,
		"method":     payment.Method,
		"amount":     amount,
	}).Info("Payment created")

	return &models.PaymentResponse{
		ID:        payment.ID,
		OrderID:   payment.OrderID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Method:    payment.Method,
		Status:    payment.Status,
		CreatedAt: payment.CreatedAt,
	}, nil
}

func (s *PaymentService) storeIdempotent(ctx context.Context, merchantID uuid.UUID, key string, resp *models.PaymentResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	var body models.JSONB
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	return s.payments.PutIdempotentResponse(ctx, key, merchantID, body, idempotencyTTL)
}

// Get fetches a merchant's payment by ID
func (s *PaymentService) Get(ctx context.Context, merchantID uuid.UUID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.GetForMerchant(ctx, paymentID, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if payment == nil {
		return nil, apperr.NotFoundErr("Payment not found")
	}
	return payment, nil
}

// GetPublic fetches a payment for the hosted checkout status poll
func (s *PaymentService) GetPublic(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if payment == nil {
		return nil, apperr.NotFoundErr("Payment not found")
	}
	return payment, nil
}

// Capture marks a successful payment as captured. Only full-amount capture
// is supported; a non-zero request amount must equal the payment amount.
func (s *PaymentService) Capture(ctx context.Context, merchantID uuid.UUID, paymentID string, amount int64) (*models.Payment, error) {
	payment, err := s.Get(ctx, merchantID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentSuccess {
		return nil, apperr.StateConflictErr("Payment not in capturable state")
	}
	if amount != 0 && amount != payment.Amount {
		return nil, apperr.StateConflictErr("Partial capture not supported")
	}

	captured, err := s.payments.MarkCaptured(ctx, paymentID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	s.logger.WithField("payment_id", paymentID).Info("Payment captured")
	return captured, nil
}

// List returns all of a merchant's payments, newest first
func (s *PaymentService) List(ctx context.Context, merchantID uuid.UUID) ([]models.Payment, error) {
	payments, err := s.payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return payments, nil
}

// Stats aggregates the merchant's payment activity for the dashboard
func (s *PaymentService) Stats(ctx context.Context, merchantID uuid.UUID) (*models.MerchantStats, error) {
	stats, err := s.payments.StatsByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return stats, nil
}
