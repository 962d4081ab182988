package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-gateway/internal/models"
)

// WebhookRepositoryInterface defines webhook log data operations
type WebhookRepositoryInterface interface {
	Create(ctx context.Context, log *models.WebhookLog) error
	Get(ctx context.Context, logID uuid.UUID) (*models.WebhookLog, error)
	GetForMerchant(ctx context.Context, logID, merchantID uuid.UUID) (*models.WebhookLog, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]models.WebhookLog, int64, error)
	RecordSuccess(ctx context.Context, logID uuid.UUID, responseCode int, responseBody string) error
	ScheduleRetry(ctx context.Context, logID uuid.UUID, attempts int, nextRetryAt time.Time) error
	RecordPermanentFailure(ctx context.Context, logID uuid.UUID, attempts int) error
	ResetForRetry(ctx context.Context, logID uuid.UUID) error
}

// WebhookRepository handles webhook log data operations
type WebhookRepository struct {
	db *gorm.DB
}

var _ WebhookRepositoryInterface = (*WebhookRepository)(nil)

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// Create creates a new webhook log
func (r *WebhookRepository) Create(ctx context.Context, log *models.WebhookLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Get gets a webhook log by ID, returning nil when it does not exist
func (r *WebhookRepository) Get(ctx context.Context, logID uuid.UUID) (*models.WebhookLog, error) {
	var log models.WebhookLog
	err := r.db.WithContext(ctx).First(&log, "id = ?", logID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetForMerchant gets a webhook log scoped to its owning merchant
func (r *WebhookRepository) GetForMerchant(ctx context.Context, logID, merchantID uuid.UUID) (*models.WebhookLog, error) {
	var log models.WebhookLog
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", logID, merchantID).
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByMerchant lists webhook logs for a merchant, newest first, with the
// total count for pagination
func (r *WebhookRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]models.WebhookLog, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var logs []models.WebhookLog
	err = r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// RecordSuccess marks a delivery attempt as succeeded with the endpoint's response
func (r *WebhookRepository) RecordSuccess(ctx context.Context, logID uuid.UUID, responseCode int, responseBody string) error {
	return r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":          models.WebhookSuccess,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": time.Now(),
			"response_code":   responseCode,
			"response_body":   responseBody,
		}).Error
}

// ScheduleRetry records a failed attempt and the time of the next one,
// keeping the log pending
func (r *WebhookRepository) ScheduleRetry(ctx context.Context, logID uuid.UUID, attempts int, nextRetryAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":          models.WebhookPending,
			"attempts":        attempts,
			"last_attempt_at": time.Now(),
			"next_retry_at":   nextRetryAt,
		}).Error
}

// RecordPermanentFailure marks a log failed after its final attempt
func (r *WebhookRepository) RecordPermanentFailure(ctx context.Context, logID uuid.UUID, attempts int) error {
	return r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":          models.WebhookFailed,
			"attempts":        attempts,
			"last_attempt_at": time.Now(),
		}).Error
}

// ResetForRetry rewinds a log for a manual retry: attempts back to zero,
// status pending, no scheduled retry time
func (r *WebhookRepository) ResetForRetry(ctx context.Context, logID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":        models.WebhookPending,
			"attempts":      0,
			"next_retry_at": nil,
		}).Error
}
