package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
)

// Webhook event names delivered to merchants
const (
	EventPaymentSuccess  = "payment.success"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
	EventPaymentTest     = "payment.test"
)

// WebhookService creates webhook delivery records, signs payloads and
// manages merchant webhook configuration. Actual delivery happens on the
// webhook lane.
type WebhookService struct {
	webhooks  repository.WebhookRepositoryInterface
	merchants repository.MerchantRepositoryInterface
	jobs      queue.Client
	logger    *logrus.Entry
}

// NewWebhookService creates a new webhook service
func NewWebhookService(webhooks repository.WebhookRepositoryInterface, merchants repository.MerchantRepositoryInterface, jobs queue.Client) *WebhookService {
	return &WebhookService{
		webhooks:  webhooks,
		merchants: merchants,
		jobs:      jobs,
		logger:    logrus.WithField("component", "webhook_service"),
	}
}

// envelope builds the signed payload delivered to merchants. The entity key
// is "payment" or "refund" and the record is serialized under it.
func envelope(event, entityKey string, record interface{}) (models.JSONB, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var entity map[string]interface{}
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, err
	}
	return models.JSONB{
		"event":     event,
		"timestamp": time.Now().Unix(),
		"data": map[string]interface{}{
			entityKey: entity,
		},
	}, nil
}

// Dispatch records a webhook event for the merchant and enqueues its first
// delivery attempt. Dispatch is called from background workers; failures are
// returned so the job retries.
func (s *WebhookService) Dispatch(ctx context.Context, merchantID uuid.UUID, event, entityKey string, record interface{}) error {
	payload, err := envelope(event, entityKey, record)
	if err != nil {
		return err
	}

	log := &models.WebhookLog{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Event:      event,
		Payload:    payload,
		Status:     models.WebhookPending,
		Attempts:   0,
	}
	if err := s.webhooks.Create(ctx, log); err != nil {
		return err
	}

	if err := s.jobs.Enqueue(ctx, queue.LaneWebhooks, queue.WebhookJob{WebhookLogID: log.ID}, 0); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"webhook_log_id": log.ID,
		"event":          event,
		"merchant_id":    merchantID,
	}).Info("Webhook dispatched")
	return nil
}

// Sign computes the hex HMAC-SHA256 of payload under the merchant secret
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload in constant time
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// List returns a page of the merchant's webhook logs, newest first
func (s *WebhookService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) (*models.WebhookLogList, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	logs, total, err := s.webhooks.ListByMerchant(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	out := make([]models.WebhookLogSummary, 0, len(logs))
	for _, l := range logs {
		out = append(out, models.WebhookLogSummary{
			ID:            l.ID.String(),
			Event:         l.Event,
			Status:        l.Status,
			Attempts:      l.Attempts,
			CreatedAt:     l.CreatedAt,
			LastAttemptAt: l.LastAttemptAt,
			ResponseCode:  l.ResponseCode,
		})
	}
	return &models.WebhookLogList{Data: out, Total: total, Limit: limit, Offset: offset}, nil
}

// Retry resets a webhook's delivery state and enqueues an immediate attempt
func (s *WebhookService) Retry(ctx context.Context, merchantID, logID uuid.UUID) error {
	log, err := s.webhooks.GetForMerchant(ctx, logID, merchantID)
	if err != nil {
		return apperr.Wrap(err)
	}
	if log == nil {
		return apperr.NotFoundErr("Webhook not found")
	}

	if err := s.webhooks.ResetForRetry(ctx, logID); err != nil {
		return apperr.Wrap(err)
	}
	if err := s.jobs.Enqueue(ctx, queue.LaneWebhooks, queue.WebhookJob{WebhookLogID: logID}, 0); err != nil {
		return apperr.Wrap(err)
	}

	s.logger.WithField("webhook_log_id", logID).Info("Webhook retry requested")
	return nil
}

// TestFire records an already-delivered test webhook log for the merchant
func (s *WebhookService) TestFire(ctx context.Context, merchantID uuid.UUID, event string) (*models.WebhookLog, error) {
	if event == "" {
		event = EventPaymentTest
	}
	code := 200
	now := time.Now()
	log := &models.WebhookLog{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		Event:         event,
		Payload:       models.JSONB{"test": true},
		Status:        models.WebhookSuccess,
		Attempts:      1,
		LastAttemptAt: &now,
		ResponseCode:  &code,
	}
	if err := s.webhooks.Create(ctx, log); err != nil {
		return nil, apperr.Wrap(err)
	}
	return log, nil
}

// GetConfig returns the merchant's webhook endpoint and signing secret
func (s *WebhookService) GetConfig(ctx context.Context, merchantID uuid.UUID) (*models.WebhookConfigResponse, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if merchant == nil {
		return nil, apperr.NotFoundErr("Merchant not found")
	}
	return &models.WebhookConfigResponse{
		URL:    merchant.WebhookURL,
		Secret: merchant.WebhookSecret,
	}, nil
}

// UpdateConfig sets the merchant's webhook URL. An empty secret generates a
// fresh one.
func (s *WebhookService) UpdateConfig(ctx context.Context, merchantID uuid.UUID, req *models.WebhookConfigRequest) (*models.WebhookConfigResponse, error) {
	secret := req.Secret
	if secret == "" {
		secret = GenerateWebhookSecret()
	}
	if err := s.merchants.UpdateWebhookConfig(ctx, merchantID, req.URL, secret); err != nil {
		return nil, apperr.Wrap(err)
	}

	s.logger.WithField("merchant_id", merchantID).Info("Webhook config updated")
	return &models.WebhookConfigResponse{URL: req.URL, Secret: secret}, nil
}

// RegenerateSecret rotates the merchant's webhook signing secret
func (s *WebhookService) RegenerateSecret(ctx context.Context, merchantID uuid.UUID) (*models.WebhookConfigResponse, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	if merchant == nil {
		return nil, apperr.NotFoundErr("Merchant not found")
	}

	secret := GenerateWebhookSecret()
	if err := s.merchants.UpdateWebhookConfig(ctx, merchantID, merchant.WebhookURL, secret); err != nil {
		return nil, apperr.Wrap(err)
	}
	return &models.WebhookConfigResponse{URL: merchant.WebhookURL, Secret: secret}, nil
}
