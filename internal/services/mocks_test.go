package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"payment-gateway/internal/models"
	"payment-gateway/internal/repository"
)

// MockOrderRepository is a mock implementation of OrderRepositoryInterface
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepositoryInterface = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetForMerchant(ctx context.Context, orderID string, merchantID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepositoryInterface
type MockPaymentRepository struct {
	mock.Mock
}

var _ repository.PaymentRepositoryInterface = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Get(ctx context.Context, paymentID string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetForMerchant(ctx context.Context, paymentID string, merchantID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus, errorCode, errorDescription string) (*models.Payment, bool, error) {
	args := m.Called(ctx, paymentID, status, errorCode, errorDescription)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Payment), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepository) MarkCaptured(ctx context.Context, paymentID string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) StatsByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantStats, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MerchantStats), args.Error(1)
}

func (m *MockPaymentRepository) GetIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID) (models.JSONB, error) {
	args := m.Called(ctx, key, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.JSONB), args.Error(1)
}

func (m *MockPaymentRepository) PutIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID, response models.JSONB, ttl time.Duration) error {
	args := m.Called(ctx, key, merchantID, response, ttl)
	return args.Error(0)
}

// MockRefundRepository is a mock implementation of RefundRepositoryInterface
type MockRefundRepository struct {
	mock.Mock
}

var _ repository.RefundRepositoryInterface = (*MockRefundRepository)(nil)

func (m *MockRefundRepository) CreateWithBalanceCheck(ctx context.Context, refund *models.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) Get(ctx context.Context, refundID string) (*models.Refund, error) {
	args := m.Called(ctx, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *MockRefundRepository) GetForMerchant(ctx context.Context, refundID string, merchantID uuid.UUID) (*models.Refund, error) {
	args := m.Called(ctx, refundID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *MockRefundRepository) Exists(ctx context.Context, refundID string) (bool, error) {
	args := m.Called(ctx, refundID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefundRepository) MarkProcessed(ctx context.Context, refundID string) (*models.Refund, bool, error) {
	args := m.Called(ctx, refundID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Refund), args.Bool(1), args.Error(2)
}

// MockMerchantRepository is a mock implementation of MerchantRepositoryInterface
type MockMerchantRepository struct {
	mock.Mock
}

var _ repository.MerchantRepositoryInterface = (*MockMerchantRepository)(nil)

func (m *MockMerchantRepository) GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*models.Merchant, error) {
	args := m.Called(ctx, apiKey, apiSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, merchantID uuid.UUID) (*models.Merchant, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) UpdateWebhookConfig(ctx context.Context, merchantID uuid.UUID, webhookURL, webhookSecret string) error {
	args := m.Called(ctx, merchantID, webhookURL, webhookSecret)
	return args.Error(0)
}

// MockWebhookRepository is a mock implementation of WebhookRepositoryInterface
type MockWebhookRepository struct {
	mock.Mock
}

var _ repository.WebhookRepositoryInterface = (*MockWebhookRepository)(nil)

func (m *MockWebhookRepository) Create(ctx context.Context, log *models.WebhookLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockWebhookRepository) Get(ctx context.Context, logID uuid.UUID) (*models.WebhookLog, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookLog), args.Error(1)
}

func (m *MockWebhookRepository) GetForMerchant(ctx context.Context, logID, merchantID uuid.UUID) (*models.WebhookLog, error) {
	args := m.Called(ctx, logID, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookLog), args.Error(1)
}

func (m *MockWebhookRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]models.WebhookLog, int64, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	return args.Get(0).([]models.WebhookLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockWebhookRepository) RecordSuccess(ctx context.Context, logID uuid.UUID, responseCode int, responseBody string) error {
	args := m.Called(ctx, logID, responseCode, responseBody)
	return args.Error(0)
}

func (m *MockWebhookRepository) ScheduleRetry(ctx context.Context, logID uuid.UUID, attempts int, nextRetryAt time.Time) error {
	args := m.Called(ctx, logID, attempts, nextRetryAt)
	return args.Error(0)
}

func (m *MockWebhookRepository) RecordPermanentFailure(ctx context.Context, logID uuid.UUID, attempts int) error {
	args := m.Called(ctx, logID, attempts)
	return args.Error(0)
}

func (m *MockWebhookRepository) ResetForRetry(ctx context.Context, logID uuid.UUID) error {
	args := m.Called(ctx, logID)
	return args.Error(0)
}
