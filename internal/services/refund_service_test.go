package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
)

func TestCreateRefund(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	paymentID := "pay_refundable1234567a"

	refunds := new(MockRefundRepository)
	payments := new(MockPaymentRepository)
	jobs := queue.NewMemoryClient()
	defer jobs.Close()

	payment := &models.Payment{
		ID:         paymentID,
		MerchantID: merchantID,
		Amount:     50000,
		Status:     models.PaymentSuccess,
	}
	payments.On("GetForMerchant", ctx, paymentID, merchantID).Return(payment, nil)
	refunds.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil)
	refunds.On("CreateWithBalanceCheck", ctx, mock.AnythingOfType("*models.Refund")).Return(nil)

	service := NewRefundService(refunds, payments, jobs)
	refund, err := service.Create(ctx, merchantID, paymentID, &models.CreateRefundRequest{
		Amount: 20000,
		Reason: "customer request",
	})

	assert.NoError(t, err)
	assert.Contains(t, refund.ID, "rfnd_")
	assert.Equal(t, models.RefundPending, refund.Status)
	assert.Equal(t, int64(20000), refund.Amount)

	job, err := jobs.Dequeue(ctx, queue.LaneRefunds)
	assert.NoError(t, err)
	assert.NotNil(t, job)
	var rj queue.RefundJob
	assert.NoError(t, json.Unmarshal(job.Payload, &rj))
	assert.Equal(t, refund.ID, rj.RefundID)

	refunds.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestCreateRefund_BalanceErrors(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	paymentID := "pay_refundable1234567a"

	payment := &models.Payment{
		ID:         paymentID,
		MerchantID: merchantID,
		Amount:     50000,
		Status:     models.PaymentSuccess,
	}

	cases := []struct {
		name     string
		storeErr error
		wantDesc string
	}{
		{"not refundable", repository.ErrPaymentNotRefundable, "Payment not in refundable state"},
		{"exceeds balance", repository.ErrAmountExceedsBalance, "Refund amount exceeds available amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refunds := new(MockRefundRepository)
			payments := new(MockPaymentRepository)
			jobs := queue.NewMemoryClient()
			defer jobs.Close()

			payments.On("GetForMerchant", ctx, paymentID, merchantID).Return(payment, nil)
			refunds.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil)
			refunds.On("CreateWithBalanceCheck", ctx, mock.AnythingOfType("*models.Refund")).Return(tc.storeErr)

			service := NewRefundService(refunds, payments, jobs)
			_, err := service.Create(ctx, merchantID, paymentID, &models.CreateRefundRequest{Amount: 60000})

			assert.Error(t, err)
			ae, ok := apperr.As(err)
			assert.True(t, ok)
			assert.Equal(t, apperr.StateConflict, ae.Kind)
			assert.Equal(t, tc.wantDesc, ae.Description)

			// Nothing reaches the refund lane on rejection
			job, _ := jobs.Dequeue(ctx, queue.LaneRefunds)
			assert.Nil(t, job)
		})
	}
}

func TestCreateRefund_PaymentNotFound(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	refunds := new(MockRefundRepository)
	payments := new(MockPaymentRepository)
	payments.On("GetForMerchant", ctx, "pay_missing000000000a", merchantID).Return(nil, nil)

	service := NewRefundService(refunds, payments, queue.NewMemoryClient())
	_, err := service.Create(ctx, merchantID, "pay_missing000000000a", &models.CreateRefundRequest{Amount: 100})

	assert.Error(t, err)
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestCreateRefund_InvalidAmount(t *testing.T) {
	ctx := context.Background()

	payments := new(MockPaymentRepository)
	service := NewRefundService(new(MockRefundRepository), payments, queue.NewMemoryClient())

	_, err := service.Create(ctx, uuid.New(), "pay_whatever00000000a", &models.CreateRefundRequest{Amount: 0})

	assert.Error(t, err)
	ae, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.Validation, ae.Kind)
	payments.AssertNotCalled(t, "GetForMerchant", mock.Anything, mock.Anything, mock.Anything)
}

func TestUniqueRefundID_RegeneratesOnCollision(t *testing.T) {
	ctx := context.Background()

	refunds := new(MockRefundRepository)
	refunds.On("Exists", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	refunds.On("Exists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()

	service := NewRefundService(refunds, new(MockPaymentRepository), queue.NewMemoryClient())
	id, err := service.uniqueRefundID(ctx)

	assert.NoError(t, err)
	assert.Contains(t, id, "rfnd_")
	refunds.AssertExpectations(t)
}
