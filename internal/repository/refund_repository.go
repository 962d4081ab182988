package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-gateway/internal/models"
)

// Refund balance errors. Callers map these onto the error taxonomy.
var (
	ErrPaymentNotRefundable = errors.New("payment not in refundable state")
	ErrAmountExceedsBalance = errors.New("refund amount exceeds available amount")
)

// RefundRepositoryInterface defines refund data operations
type RefundRepositoryInterface interface {
	CreateWithBalanceCheck(ctx context.Context, refund *models.Refund) error
	Get(ctx context.Context, refundID string) (*models.Refund, error)
	GetForMerchant(ctx context.Context, refundID string, merchantID uuid.UUID) (*models.Refund, error)
	Exists(ctx context.Context, refundID string) (bool, error)
	MarkProcessed(ctx context.Context, refundID string) (*models.Refund, bool, error)
}

// RefundRepository handles refund data operations
type RefundRepository struct {
	db *gorm.DB
}

var _ RefundRepositoryInterface = (*RefundRepository)(nil)

// NewRefundRepository creates a new refund repository
func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// reservedTotal sums the refund amounts that count against a payment's
// balance: pending and processed refunds. Failed refunds release their
// reservation. Shared by creation and processing so both enforce the same
// invariant.
func reservedTotal(tx *gorm.DB, paymentID string) (int64, error) {
	var total int64
	err := tx.Model(&models.Refund{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payment_id = ? AND status IN ?", paymentID,
			[]models.RefundStatus{models.RefundPending, models.RefundProcessed}).
		Scan(&total).Error
	return total, err
}

// CreateWithBalanceCheck inserts a refund only if the payment is successful
// and the refund amount fits the remaining balance. Check and insert run in
// one transaction so two concurrent refund requests cannot jointly overshoot
// the payment amount.
func (r *RefundRepository) CreateWithBalanceCheck(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "id = ?", refund.PaymentID).Error; err != nil {
			return err
		}
		if payment.Status != models.PaymentSuccess {
			return ErrPaymentNotRefundable
		}

		total, err := reservedTotal(tx, refund.PaymentID)
		if err != nil {
			return err
		}
		if refund.Amount > payment.Amount-total {
			return ErrAmountExceedsBalance
		}

		return tx.Create(refund).Error
	})
}

// Get gets a refund by ID, returning nil when it does not exist
func (r *RefundRepository) Get(ctx context.Context, refundID string) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).First(&refund, "id = ?", refundID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// GetForMerchant gets a refund scoped to its owning merchant
func (r *RefundRepository) GetForMerchant(ctx context.Context, refundID string, merchantID uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", refundID, merchantID).
		First(&refund).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// Exists reports whether a refund ID is already taken
func (r *RefundRepository) Exists(ctx context.Context, refundID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("id = ?", refundID).
		Count(&count).Error
	return count > 0, err
}

// MarkProcessed transitions a pending refund to processed after re-validating
// the balance invariant at execution time. Re-validation and update run in one
// transaction: a refund admitted at creation can still lose the race against a
// sibling refund processed since, in which case the job must fail rather than
// finalize. Returns the refund and whether this call performed the transition;
// an already-terminal refund is a safe no-op.
func (r *RefundRepository) MarkProcessed(ctx context.Context, refundID string) (*models.Refund, bool, error) {
	var refund models.Refund
	transitioned := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&refund, "id = ?", refundID).Error; err != nil {
			return err
		}
		if refund.Status != models.RefundPending {
			return nil
		}

		var payment models.Payment
		if err := tx.First(&payment, "id = ?", refund.PaymentID).Error; err != nil {
			return err
		}
		if payment.Status != models.PaymentSuccess {
			return ErrPaymentNotRefundable
		}

		total, err := reservedTotal(tx, refund.PaymentID)
		if err != nil {
			return err
		}
		if total > payment.Amount {
			return ErrAmountExceedsBalance
		}

		now := time.Now()
		res := tx.Model(&models.Refund{}).
			Where("id = ? AND status = ?", refundID, models.RefundPending).
			Updates(map[string]interface{}{
				"status":       models.RefundProcessed,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			transitioned = true
			refund.Status = models.RefundProcessed
			refund.ProcessedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &refund, transitioned, nil
}
