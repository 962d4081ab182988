package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents the payment instrument used for a payment
type PaymentMethod string

const (
	MethodUPI  PaymentMethod = "upi"
	MethodCard PaymentMethod = "card"
)

// PaymentStatus represents the payment lifecycle status
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// RefundStatus represents the refund lifecycle status
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

// WebhookStatus represents the delivery status of a webhook log
type WebhookStatus string

const (
	WebhookPending WebhookStatus = "pending"
	WebhookSuccess WebhookStatus = "success"
	WebhookFailed  WebhookStatus = "failed"
)

// OrderCreated is the only order status exercised by the gateway core.
const OrderCreated = "created"

// JSONB custom type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(j))
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*j = JSONB(m)
	return nil
}

// Merchant represents an onboarded merchant account
type Merchant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Email         string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	APIKey        string    `gorm:"type:varchar(64);unique;not null" json:"-"`
	APISecret     string    `gorm:"type:varchar(64);not null" json:"-"`
	WebhookURL    string    `gorm:"type:text" json:"webhookUrl,omitempty"`
	WebhookSecret string    `gorm:"type:text" json:"-"`
	IsActive      bool      `gorm:"default:true" json:"isActive"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for Merchant
func (Merchant) TableName() string {
	return "merchants"
}

// Order represents a merchant order against which payments are attempted
type Order struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;index:idx_orders_merchant" json:"merchant_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Currency   string    `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Receipt    string    `gorm:"type:varchar(255)" json:"receipt,omitempty"`
	Notes      JSONB     `gorm:"type:jsonb" json:"notes,omitempty"`
	Status     string    `gorm:"type:varchar(20);default:'created'" json:"status"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Payment represents a payment attempt against an order.
// Amount and currency are copied from the order at creation and never mutated.
// Card fields hold only the network and last four digits, never the full PAN.
type Payment struct {
	ID               string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	OrderID          string        `gorm:"type:varchar(64);not null;index:idx_payments_order" json:"order_id"`
	MerchantID       uuid.UUID     `gorm:"type:uuid;not null;index:idx_payments_merchant" json:"merchant_id"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	Method           PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status           PaymentStatus `gorm:"type:varchar(20);default:'pending';index:idx_payments_status" json:"status"`
	Captured         bool          `gorm:"default:false" json:"captured"`
	VPA              string        `gorm:"type:varchar(255)" json:"vpa,omitempty"`
	CardNetwork      string        `gorm:"type:varchar(20)" json:"card_network,omitempty"`
	CardLast4        string        `gorm:"type:varchar(4)" json:"card_last4,omitempty"`
	ErrorCode        string        `gorm:"type:varchar(50)" json:"error_code,omitempty"`
	ErrorDescription string        `gorm:"type:text" json:"error_description,omitempty"`
	CreatedAt        time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Refund represents a refund against a successful payment.
// The sum of pending and processed refund amounts for a payment never
// exceeds the payment amount; both creation and processing enforce this
// inside a transaction.
type Refund struct {
	ID          string       `gorm:"type:varchar(64);primaryKey" json:"id"`
	PaymentID   string       `gorm:"type:varchar(64);not null;index:idx_refunds_payment" json:"payment_id"`
	MerchantID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_refunds_merchant" json:"merchant_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Reason      string       `gorm:"type:varchar(255)" json:"reason,omitempty"`
	Status      RefundStatus `gorm:"type:varchar(20);default:'pending';index:idx_refunds_status" json:"status"`
	CreatedAt   time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}

// TableName specifies the table name for Refund
func (Refund) TableName() string {
	return "refunds"
}

// WebhookLog represents one merchant-facing webhook event and its delivery state
type WebhookLog struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_webhook_logs_merchant" json:"merchant_id"`
	Event         string        `gorm:"type:varchar(100);not null" json:"event"`
	Payload       JSONB         `gorm:"type:jsonb;not null" json:"payload"`
	Status        WebhookStatus `gorm:"type:varchar(20);default:'pending';index:idx_webhook_logs_status" json:"status"`
	Attempts      int           `gorm:"default:0" json:"attempts"`
	LastAttemptAt *time.Time    `json:"last_attempt_at,omitempty"`
	NextRetryAt   *time.Time    `json:"next_retry_at,omitempty"`
	ResponseCode  *int          `json:"response_code,omitempty"`
	ResponseBody  string        `gorm:"type:text" json:"response_body,omitempty"`
	CreatedAt     time.Time     `gorm:"default:CURRENT_TIMESTAMP;index:idx_webhook_logs_created" json:"created_at"`
}

// TableName specifies the table name for WebhookLog
func (WebhookLog) TableName() string {
	return "webhook_logs"
}

// IdempotencyKey caches the response body for a payment-creation request so
// retransmissions within the validity window replay the exact same bytes.
// Rows are written at most once per (key, merchant) pair and never mutated.
type IdempotencyKey struct {
	Key        string    `gorm:"type:varchar(255);primaryKey" json:"key"`
	MerchantID uuid.UUID `gorm:"type:uuid;primaryKey" json:"merchantId"`
	Response   JSONB     `gorm:"type:jsonb;not null" json:"response"`
	ExpiresAt  time.Time `gorm:"not null;index:idx_idempotency_expires" json:"expiresAt"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}
