package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/repository"
)

// OrderService creates and reads merchant orders
type OrderService struct {
	orders repository.OrderRepositoryInterface
	logger *logrus.Entry
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepositoryInterface) *OrderService {
	return &OrderService{
		orders: orders,
		logger: logrus.WithField("component", "order_service"),
	}
}

// Create validates the request and persists a new order in created state
func (s *OrderService) Create(ctx context.Context, merchantID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.Amount < 100 {
		return nil, apperr.ValidationErr(apperr.CodeBadRequest, "amount must be at least 100")
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}

	notes := models.JSONB{}
	for k, v := range req.Notes {
		notes[k] = v
	}

	order := &models.Order{
		ID:         GenerateID(OrderIDPrefix),
		MerchantID: merchantID,
		Amount:     req.Amount,
		Currency:   currency,
		Receipt:    req.Receipt,
		Notes:      notes,
		Status:     models.OrderCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Wrap(err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"merchant_id": merchantID,
		"amount":      order.Amount,
	}).Info("Order created")
	return order, nil
}

// Get fetches a merchant's order by ID
func (s *OrderService) Get(ctx context.Context, merchantID uuid.UUID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetForMerchant(ctx, orderID, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if order == nil {
		return nil, apperr.NotFoundErr("Order not found")
	}
	return order, nil
}

// GetPublic fetches an order for the hosted checkout page without
// merchant credentials.
func (s *OrderService) GetPublic(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if order == nil {
		return nil, apperr.NotFoundErr("Order not found")
	}
	return order, nil
}
