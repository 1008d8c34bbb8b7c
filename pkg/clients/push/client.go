package push

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akhilrajps/sahara-mess/internal/config"
)

// Event names carried in notification payloads.
const (
	EventMessCutApplied  = "mess_cut_applied"
	EventBillGenerated   = "bill_generated"
	EventBillPublished   = "bill_published"
	EventPaymentApproved = "payment_approved"
	EventPaymentRejected = "payment_rejected"
)

// Notification is one fire-and-forget message addressed to a student's device
// topic by mess number.
type Notification struct {
	MessNo string
	Event  string
	Title  string
	Body   string
}

// Client exposes the push-gateway operations used by the application.
type Client interface {
	Notify(ctx context.Context, n Notification) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a push-gateway client using the provided configuration values.
func NewClient(cfg config.PushConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("key=%s", cfg.ServerKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Notify delivers the notification to the student's topic. Callers treat errors
// as log-and-continue; delivery must never roll back the operation that fired it.
func (c *APIClient) Notify(ctx context.Context, n Notification) error {
	payload := map[string]any{
		"to": fmt.Sprintf("/topics/mess-%s", n.MessNo),
		"data": map[string]any{
			"event": n.Event,
		},
		"notification": map[string]any{
			"title": n.Title,
			"body":  n.Body,
		},
	}

	result := new(sendResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		Post("/fcm/send")
	if err != nil {
		return fmt.Errorf("send push notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode())
	}
	if result.Failure > 0 && result.Success == 0 {
		return fmt.Errorf("push gateway rejected notification for %s", n.MessNo)
	}

	return nil
}
