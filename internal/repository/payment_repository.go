package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payment-gateway/internal/models"
)

// PaymentRepositoryInterface defines payment and idempotency data operations
type PaymentRepositoryInterface interface {
	Create(ctx context.Context, payment *models.Payment) error
	Get(ctx context.Context, paymentID string) (*models.Payment, error)
	GetForMerchant(ctx context.Context, paymentID string, merchantID uuid.UUID) (*models.Payment, error)
	MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus, errorCode, errorDescription string) (*models.Payment, bool, error)
	MarkCaptured(ctx context.Context, paymentID string) (*models.Payment, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Payment, error)
	StatsByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantStats, error)

	GetIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID) (models.JSONB, error)
	PutIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID, response models.JSONB, ttl time.Duration) error
}

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db *gorm.DB
}

var _ PaymentRepositoryInterface = (*PaymentRepository)(nil)

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Get gets a payment by ID, returning nil when it does not exist
func (r *PaymentRepository) Get(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetForMerchant gets a payment scoped to its owning merchant
func (r *PaymentRepository) GetForMerchant(ctx context.Context, paymentID string, merchantID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", paymentID, merchantID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkTerminal transitions a pending payment to a terminal status. The update
// is guarded on the current status so redelivered jobs cannot re-transition an
// already-terminal payment; the returned bool reports whether this call
// performed the transition.
func (r *PaymentRepository) MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus, errorCode, errorDescription string) (*models.Payment, bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":            status,
			"error_code":        errorCode,
			"error_description": errorDescription,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}

	payment, err := r.Get(ctx, paymentID)
	if err != nil {
		return nil, false, err
	}
	return payment, res.RowsAffected > 0, nil
}

// MarkCaptured sets the captured flag on a payment. Capturing is idempotent;
// the status check belongs to the caller.
func (r *PaymentRepository) MarkCaptured(ctx context.Context, paymentID string) (*models.Payment, error) {
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"captured":   true,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, paymentID)
}

// ListByMerchant lists all payments for a merchant, newest first
func (r *PaymentRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// StatsByMerchant aggregates payment counts and success volume for a merchant
func (r *PaymentRepository) StatsByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantStats, error) {
	var stats models.MerchantStats

	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("merchant_id = ?", merchantID).
		Count(&stats.TotalPayments).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("merchant_id = ? AND status = ?", merchantID, models.PaymentSuccess).
		Count(&stats.SuccessPayments).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("merchant_id = ? AND status = ?", merchantID, models.PaymentSuccess).
		Scan(&stats.SuccessVolume).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetIdempotentResponse returns the cached response for a non-expired
// (key, merchant) pair, or nil when no live entry exists
func (r *PaymentRepository) GetIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID) (models.JSONB, error) {
	var row models.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND merchant_id = ? AND expires_at > ?", key, merchantID, time.Now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Response, nil
}

// PutIdempotentResponse stores a response under (key, merchant). First writer
// wins: a racing duplicate insert is silently ignored, never overwritten.
func (r *PaymentRepository) PutIdempotentResponse(ctx context.Context, key string, merchantID uuid.UUID, response models.JSONB, ttl time.Duration) error {
	row := models.IdempotencyKey{
		Key:        key,
		MerchantID: merchantID,
		Response:   response,
		ExpiresAt:  time.Now().Add(ttl),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}
