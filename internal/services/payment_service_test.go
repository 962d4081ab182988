package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
)

func testOrder(merchantID uuid.UUID) *models.Order {
	return &models.Order{
		ID:         "order_abc123def456gh78",
		MerchantID: merchantID,
		Amount:     50000,
		Currency:   "INR",
		Status:     models.OrderCreated,
	}
}

func TestCreatePayment_UPI(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	order := testOrder(merchantID)
	orders.On("GetForMerchant", ctx, order.ID, merchantID).Return(order, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	service := NewPaymentService(payments, orders, jobs)
	resp, err := service.Create(ctx, merchantID, "", &models.CreatePaymentRequest{
		OrderID: order.ID,
		Method:  models.MethodUPI,
		VPA:     "alice@okhdfc",
	})

	assert.NoError(t, err)
	assert.Contains(t, resp.ID, "pay_")
	assert.Equal(t, order.ID, resp.OrderID)
	assert.Equal(t, int64(50000), resp.Amount)
	assert.Equal(t, models.PaymentPending, resp.Status)

	// The payment job is on the lane
	job, err := jobs.Dequeue(ctx, queue.LanePayments)
	assert.NoError(t, err)
	assert.NotNil(t, job)
	var pj queue.PaymentJob
	assert.NoError(t, json.Unmarshal(job.Payload, &pj))
	assert.Equal(t, resp.ID, pj.PaymentID)
	assert.Equal(t, models.MethodUPI, pj.Method)

	payments.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestCreatePayment_InvalidVPA(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	order := testOrder(merchantID)
	orders.On("GetForMerchant", ctx, order.ID, merchantID).Return(order, nil)

	service := NewPaymentService(payments, orders, jobs)
	_, err := service.Create(ctx, merchantID, "", &models.CreatePaymentRequest{
		OrderID: order.ID,
		Method:  models.MethodUPI,
		VPA:     "not a vpa",
	})

	assert.Error(t, err)
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidVPA, ae.Code)

	// Nothing was persisted or enqueued
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	job, _ := jobs.Dequeue(ctx, queue.LanePayments)
	assert.Nil(t, job)
}

func TestCreatePayment_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	orders.On("GetForMerchant", ctx, "order_missing00000000", merchantID).Return(nil, nil)

	service := NewPaymentService(payments, orders, jobs)
	_, err := service.Create(ctx, merchantID, "", &models.CreatePaymentRequest{
		OrderID: "order_missing00000000",
		Method:  models.MethodUPI,
		VPA:     "alice@okhdfc",
	})

	assert.Error(t, err)
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestCreatePayment_IdempotentStoreAndReplay(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	key := "idem-key-1"

	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	order := testOrder(merchantID)
	orders.On("GetForMerchant", ctx, order.ID, merchantID).Return(order, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	var storedBody models.JSONB
	payments.On("PutIdempotentResponse", ctx, key, merchantID, mock.AnythingOfType("models.JSONB"), 24*time.Hour).
		Run(func(args mock.Arguments) {
			storedBody = args.Get(3).(models.JSONB)
		}).
		Return(nil)

	service := NewPaymentService(payments, orders, jobs)
	resp, err := service.Create(ctx, merchantID, key, &models.CreatePaymentRequest{
		OrderID: order.ID,
		Method:  models.MethodUPI,
		VPA:     "alice@okhdfc",
	})
	assert.NoError(t, err)
	assert.Equal(t, resp.ID, storedBody["id"])

	// A retransmission replays the stored body without touching the order
	payments.On("GetIdempotentResponse", ctx, key, merchantID).Return(storedBody, nil)
	replayed, err := service.Replay(ctx, merchantID, key)
	assert.NoError(t, err)
	assert.Equal(t, storedBody, replayed)

	payments.AssertExpectations(t)
}

func TestReplay_NoKey(t *testing.T) {
	ctx := context.Background()

	payments := new(MockPaymentRepository)
	service := NewPaymentService(payments, new(MockOrderRepository), queue.NewMemoryClient())

	replayed, err := service.Replay(ctx, uuid.New(), "")
	assert.NoError(t, err)
	assert.Nil(t, replayed)
	payments.AssertNotCalled(t, "GetIdempotentResponse", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePaymentPublic_AmountOverride(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	order := testOrder(merchantID)
	orders.On("Get", ctx, order.ID).Return(order, nil)

	var created *models.Payment
	payments.On("Create", ctx, mock.AnythingOfType("*models.Payment")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Payment)
		}).
		Return(nil)

	service := NewPaymentService(payments, orders, jobs)
	resp, err := service.CreatePublic(ctx, &models.CreatePaymentRequest{
		OrderID: order.ID,
		Method:  models.MethodUPI,
		VPA:     "alice@okhdfc",
		Amount:  30000,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(30000), resp.Amount)
	assert.Equal(t, merchantID, created.MerchantID)
}

func TestCapturePayment(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	payments := new(MockPaymentRepository)
	service := NewPaymentService(payments, new(MockOrderRepository), queue.NewMemoryClient())

	success := &models.Payment{
		ID:         "pay_success123456789a",
		MerchantID: merchantID,
		Amount:     50000,
		Status:     models.PaymentSuccess,
	}
	captured := *success
	captured.Captured = true

	payments.On("GetForMerchant", ctx, success.ID, merchantID).Return(success, nil)
	payments.On("MarkCaptured", ctx, success.ID).Return(&captured, nil)

	got, err := service.Capture(ctx, merchantID, success.ID, 50000)
	assert.NoError(t, err)
	assert.True(t, got.Captured)

	// Partial capture is rejected
	_, err = service.Capture(ctx, merchantID, success.ID, 20000)
	assert.Error(t, err)

	// Pending payments are not capturable
	pending := &models.Payment{
		ID:         "pay_pending123456789a",
		MerchantID: merchantID,
		Amount:     50000,
		Status:     models.PaymentPending,
	}
	payments.On("GetForMerchant", ctx, pending.ID, merchantID).Return(pending, nil)
	_, err = service.Capture(ctx, merchantID, pending.ID, 0)
	assert.Error(t, err)
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
}
