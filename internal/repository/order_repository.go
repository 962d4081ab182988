package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-gateway/internal/models"
)

// OrderRepositoryInterface defines order data operations
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetForMerchant(ctx context.Context, orderID string, merchantID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, orderID string) (*models.Order, error)
}

// OrderRepository handles order data operations
type OrderRepository struct {
	db *gorm.DB
}

var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetForMerchant gets an order scoped to its owning merchant
func (r *OrderRepository) GetForMerchant(ctx context.Context, orderID string, merchantID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", orderID, merchantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Get gets an order by ID regardless of merchant. Used by the public
// checkout flow, which is not authenticated.
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
