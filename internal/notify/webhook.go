package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"
	"updatescan/internal/providers"

	json "github.com/goccy/go-json"
)

const (
	EventChanges    = "pages.changed"
	SignatureHeader = "X-Updatescan-Signature"
)

// Event is the payload posted to the webhook endpoint.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Count     int    `json:"count"`
}

type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
	logger providers.Logger
	delays []time.Duration
	now    func() time.Time

	pending sync.WaitGroup
}

func NewWebhookNotifier(url, secret string, logger providers.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		delays: []time.Duration{0, 1 * time.Second, 5 * time.Second},
		now:    time.Now,
	}
}

// ShowNotification delivers in the background and retries on failure.
func (w *WebhookNotifier) ShowNotification(ctx context.Context, count int) {
	event := &Event{Type: EventChanges, Timestamp: w.now().UnixMilli(), Count: count}
	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		w.deliverWithRetry(context.WithoutCancel(ctx), event)
	}()
}

// Wait blocks until all in-flight deliveries finish or ctx is done.
func (w *WebhookNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("webhook: waiting for deliveries to %s: %w", w.url, ctx.Err())
	}
}

func (w *WebhookNotifier) deliverWithRetry(ctx context.Context, event *Event) {
	for attempt, delay := range w.delays {
		if delay > 0 {
			time.Sleep(delay)
		}
		err := w.Deliver(ctx, event)
		if err == nil {
			w.logger.Debugf(providers.TypeApp, "Webhook delivered to %s on attempt %d", w.url, attempt+1)
			return
		}
		w.logger.Warnf(providers.TypeApp, "Webhook delivery to %s failed on attempt %d: %s", w.url, attempt+1, err)
	}
	w.logger.Errorf(providers.TypeApp, "Webhook delivery to %s exhausted all retries", w.url)
}

// Deliver posts one event synchronously. The body is signed with
// HMAC-SHA256 when a secret is configured.
func (w *WebhookNotifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "UpdateScanner-Webhook/1.0")
	if w.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(w.secret, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
