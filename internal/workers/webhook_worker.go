package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
)

// maxDeliveryAttempts bounds webhook retries before permanent failure
const maxDeliveryAttempts = 5

// Delay before each attempt number, indexed by attempt. Production spaces
// retries out to two hours; the test schedule compresses the same shape
// into seconds.
var (
	prodRetryDelays = []time.Duration{0, time.Minute, 5 * time.Minute, 30 * time.Minute, 2 * time.Hour}
	testRetryDelays = []time.Duration{0, 5 * time.Second, 10 * time.Second, 15 * time.Second, 20 * time.Second}
)

// WebhookWorker delivers webhook payloads to merchant endpoints, retrying
// failures on a bounded backoff schedule. Each job performs at most one
// HTTP attempt; retries are fresh delayed jobs.
type WebhookWorker struct {
	webhooks    repository.WebhookRepositoryInterface
	merchants   repository.MerchantRepositoryInterface
	jobs        queue.Client
	httpClient  *http.Client
	retryDelays []time.Duration
	logger      *logrus.Entry
}

// NewWebhookWorker creates a webhook delivery handler. testSchedule selects
// the compressed retry delays.
func NewWebhookWorker(webhooks repository.WebhookRepositoryInterface, merchants repository.MerchantRepositoryInterface, jobs queue.Client, timeout time.Duration, testSchedule bool) *WebhookWorker {
	delays := prodRetryDelays
	if testSchedule {
		delays = testRetryDelays
	}
	return &WebhookWorker{
		webhooks:    webhooks,
		merchants:   merchants,
		jobs:        jobs,
		httpClient:  &http.Client{Timeout: timeout},
		retryDelays: delays,
		logger:      logrus.WithField("component", "webhook_worker"),
	}
}

// Handle processes one delivery job
func (w *WebhookWorker) Handle(ctx context.Context, job *queue.Job) error {
	var payload queue.WebhookJob
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode webhook job: %w", err)
	}

	log := w.logger.WithField("webhook_log_id", payload.WebhookLogID)

	webhook, err := w.webhooks.Get(ctx, payload.WebhookLogID)
	if err != nil {
		return err
	}
	if webhook == nil {
		log.Warn("Webhook log not found, dropping job")
		return nil
	}

	if webhook.Attempts >= maxDeliveryAttempts {
		log.Warn("Webhook exceeded max attempts, marking failed")
		return w.webhooks.RecordPermanentFailure(ctx, webhook.ID, webhook.Attempts)
	}

	merchant, err := w.merchants.GetByID(ctx, webhook.MerchantID)
	if err != nil {
		return err
	}
	if merchant == nil || merchant.WebhookURL == "" {
		log.Info("Merchant webhook URL not configured, dropping delivery")
		return nil
	}

	body, err := json.Marshal(webhook.Payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	signature := services.Sign(body, merchant.WebhookSecret)

	attempt := webhook.Attempts + 1
	log.WithField("attempt", attempt).Info("Delivering webhook")

	code, respBody, deliveryErr := w.attempt(ctx, merchant.WebhookURL, body, signature)
	if deliveryErr == nil {
		if err := w.webhooks.RecordSuccess(ctx, webhook.ID, code, respBody); err != nil {
			return err
		}
		log.WithField("response_code", code).Info("Webhook delivered")
		return nil
	}

	log.WithError(deliveryErr).Warn("Webhook delivery failed")
	return w.scheduleRetry(ctx, webhook, attempt)
}

// attempt posts the payload once, returning the response code and body on
// success and an error for transport failures or non-2xx responses.
func (w *WebhookWorker) attempt(ctx context.Context, url string, body []byte, signature string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(respBody), nil
}

func (w *WebhookWorker) scheduleRetry(ctx context.Context, webhook *models.WebhookLog, attempt int) error {
	if attempt >= maxDeliveryAttempts {
		w.logger.WithField("webhook_log_id", webhook.ID).Warn("Webhook failed permanently")
		return w.webhooks.RecordPermanentFailure(ctx, webhook.ID, attempt)
	}

	delay := w.retryDelays[attempt]
	nextRetryAt := time.Now().Add(delay)
	if err := w.webhooks.ScheduleRetry(ctx, webhook.ID, attempt, nextRetryAt); err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"webhook_log_id": webhook.ID,
		"attempt":        attempt,
		"retry_in":       delay,
	}).Info("Webhook retry scheduled")
	return w.jobs.Enqueue(ctx, queue.LaneWebhooks, queue.WebhookJob{WebhookLogID: webhook.ID}, delay)
}
