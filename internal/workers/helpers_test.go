package workers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"payment-gateway/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Merchant{},
		&models.Order{},
		&models.Payment{},
		&models.Refund{},
		&models.WebhookLog{},
		&models.IdempotencyKey{},
	))
	return db
}

func seedMerchant(t *testing.T, db *gorm.DB, webhookURL string) *models.Merchant {
	t.Helper()
	merchant := &models.Merchant{
		ID:            uuid.New(),
		Name:          "Test Shop",
		Email:         uuid.NewString() + "@example.com",
		APIKey:        "key_" + uuid.NewString(),
		APISecret:     "secret_" + uuid.NewString(),
		WebhookURL:    webhookURL,
		WebhookSecret: "whsec_testsecret",
		IsActive:      true,
	}
	require.NoError(t, db.Create(merchant).Error)
	return merchant
}

func seedPayment(t *testing.T, db *gorm.DB, merchantID uuid.UUID, status models.PaymentStatus, amount int64) *models.Payment {
	t.Helper()
	order := &models.Order{
		ID:         "order_" + uuid.NewString()[:16],
		MerchantID: merchantID,
		Amount:     amount,
		Currency:   "INR",
		Status:     models.OrderCreated,
	}
	require.NoError(t, db.Create(order).Error)

	payment := &models.Payment{
		ID:         "pay_" + uuid.NewString()[:16],
		OrderID:    order.ID,
		MerchantID: merchantID,
		Amount:     amount,
		Currency:   "INR",
		Method:     models.MethodUPI,
		VPA:        "buyer@okhdfc",
		Status:     status,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func seedRefund(t *testing.T, db *gorm.DB, payment *models.Payment, status models.RefundStatus, amount int64) *models.Refund {
	t.Helper()
	refund := &models.Refund{
		ID:         "rfnd_" + uuid.NewString()[:16],
		PaymentID:  payment.ID,
		MerchantID: payment.MerchantID,
		Amount:     amount,
		Status:     status,
	}
	require.NoError(t, db.Create(refund).Error)
	return refund
}

func seedWebhookLog(t *testing.T, db *gorm.DB, merchantID uuid.UUID, attempts int, status models.WebhookStatus) *models.WebhookLog {
	t.Helper()
	log := &models.WebhookLog{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Event:      "payment.success",
		Payload:    models.JSONB{"event": "payment.success", "timestamp": time.Now().Unix()},
		Status:     status,
		Attempts:   attempts,
	}
	require.NoError(t, db.Create(log).Error)
	return log
}
