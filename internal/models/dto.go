package models

import "time"

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Amount   int64             `json:"amount" binding:"required"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CardDetails carries raw card input on payment creation. The full number
// and CVV are validated and discarded; they are never persisted.
type CardDetails struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"holder_name"`
}

// CreatePaymentRequest represents a request to create a payment
type CreatePaymentRequest struct {
	OrderID string        `json:"order_id" binding:"required"`
	Method  PaymentMethod `json:"method" binding:"required"`
	VPA     string        `json:"vpa"`
	Card    *CardDetails  `json:"card"`

	// Amount is honored only on the public checkout path as an explicit
	// override; authenticated creation always copies the order amount.
	Amount int64 `json:"amount"`
}

// PaymentResponse is the creation-time view of a payment. Stored verbatim
// under the idempotency key so replays are byte-identical.
type PaymentResponse struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// CapturePaymentRequest represents a request to capture a successful payment
type CapturePaymentRequest struct {
	Amount int64 `json:"amount"`
}

// CreateRefundRequest represents a request to refund part of a payment
type CreateRefundRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// RefundResponse is the API view of a refund
type RefundResponse struct {
	ID          string       `json:"id"`
	PaymentID   string       `json:"payment_id"`
	Amount      int64        `json:"amount"`
	Reason      string       `json:"reason,omitempty"`
	Status      RefundStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}

// WebhookLogSummary is the list view of a webhook log
type WebhookLogSummary struct {
	ID            string        `json:"id"`
	Event         string        `json:"event"`
	Status        WebhookStatus `json:"status"`
	Attempts      int           `json:"attempts"`
	CreatedAt     time.Time     `json:"created_at"`
	LastAttemptAt *time.Time    `json:"last_attempt_at,omitempty"`
	ResponseCode  *int          `json:"response_code,omitempty"`
}

// WebhookLogList is a paginated page of webhook logs
type WebhookLogList struct {
	Data   []WebhookLogSummary `json:"data"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// WebhookConfigRequest updates a merchant's webhook endpoint
type WebhookConfigRequest struct {
	URL    string `json:"url" binding:"required"`
	Secret string `json:"secret"`
}

// WebhookConfigResponse is the merchant's current webhook configuration
type WebhookConfigResponse struct {
	URL    string `json:"url"`
	Secret string `json:"secret"`
}

// MerchantStats aggregates a merchant's payment activity for the dashboard
type MerchantStats struct {
	TotalPayments   int64 `json:"total_payments"`
	SuccessPayments int64 `json:"success_payments"`
	SuccessVolume   int64 `json:"success_volume"`
}

// DashboardStats is the dashboard view of MerchantStats. SuccessRate is a
// whole percentage.
type DashboardStats struct {
	TotalTransactions int64 `json:"totalTransactions"`
	TotalAmount       int64 `json:"totalAmount"`
	SuccessRate       int   `json:"successRate"`
}

// QueueStats mirrors the job counts of a single queue lane
type QueueStats struct {
	Pending      int64  `json:"pending"`
	Processing   int64  `json:"processing"`
	Completed    int64  `json:"completed"`
	Failed       int64  `json:"failed"`
	WorkerStatus string `json:"worker_status"`
}

// ErrorBody is the structured error payload returned by every endpoint
type ErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ErrorResponse wraps ErrorBody in the response envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
