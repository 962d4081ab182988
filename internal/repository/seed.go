package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-gateway/internal/models"
)

// testMerchantID is fixed so checkout and API examples stay stable across restarts
var testMerchantID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

// SeedTestMerchant creates the development test merchant if it does not exist.
// Idempotent - safe to run multiple times.
func SeedTestMerchant(db *gorm.DB) error {
	var existing models.Merchant
	err := db.Where("email = ?", "test@example.com").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	merchant := models.Merchant{
		ID:        testMerchantID,
		Name:      "Test Merchant",
		Email:     "test@example.com",
		APIKey:    "key_test_abc123",
		APISecret: "secret_test_xyz789",
		IsActive:  true,
	}
	return db.Create(&merchant).Error
}
