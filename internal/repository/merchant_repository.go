package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-gateway/internal/models"
)

// MerchantRepositoryInterface defines merchant data operations
type MerchantRepositoryInterface interface {
	GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*models.Merchant, error)
	GetByID(ctx context.Context, merchantID uuid.UUID) (*models.Merchant, error)
	GetByEmail(ctx context.Context, email string) (*models.Merchant, error)
	UpdateWebhookConfig(ctx context.Context, merchantID uuid.UUID, webhookURL, webhookSecret string) error
}

// MerchantRepository handles merchant data operations
type MerchantRepository struct {
	db *gorm.DB
}

var _ MerchantRepositoryInterface = (*MerchantRepository)(nil)

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// GetByCredentials looks up an active merchant by API key and secret.
// Returns nil without error when no merchant matches.
func (r *MerchantRepository) GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).
		Where("api_key = ? AND api_secret = ? AND is_active = true", apiKey, apiSecret).
		First(&merchant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GetByID gets a merchant by ID
func (r *MerchantRepository) GetByID(ctx context.Context, merchantID uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).First(&merchant, "id = ?", merchantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GetByEmail gets a merchant by email
func (r *MerchantRepository) GetByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).First(&merchant, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// UpdateWebhookConfig updates a merchant's webhook URL and secret
func (r *MerchantRepository) UpdateWebhookConfig(ctx context.Context, merchantID uuid.UUID, webhookURL, webhookSecret string) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("id = ?", merchantID).
		Updates(map[string]interface{}{
			"webhook_url":    webhookURL,
			"webhook_secret": webhookSecret,
			"updated_at":     time.Now(),
		}).Error
}
