package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	webpush "github.com/SherClockHolmes/webpush-go"
)

// Config holds the VAPID credentials used to sign push requests.
type Config struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
	HTTPClient *http.Client
}

// WebPushSender implements Sender over the Web Push protocol.
type WebPushSender struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

var _ Sender = (*WebPushSender)(nil)

// NewWebPushSender returns a sender signing with cfg. TTL defaults to one day.
func NewWebPushSender(cfg Config, logger *slog.Logger) *WebPushSender {
	if cfg.TTL <= 0 {
		cfg.TTL = 86400
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebPushSender{cfg: cfg, logger: logger, now: time.Now}
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (s *WebPushSender) PublicKey() string {
	return s.cfg.PublicKey
}

// Send encrypts n for target and posts it to the target's push service.
func (s *WebPushSender) Send(ctx context.Context, target notificationdb.PushTarget, n Notification) error {
	if target.IsEmpty() {
		return fmt.Errorf("push.Send: %w", ErrTargetGone)
	}
	if s.cfg.PrivateKey == "" || s.cfg.PublicKey == "" {
		return errors.New("push.Send: VAPID keys not configured")
	}

	body, err := json.Marshal(BuildPayload(n, s.now()))
	if err != nil {
		return fmt.Errorf("push.Send: marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: target.Endpoint,
		Keys: webpush.Keys{
			Auth:   target.Keys.Auth,
			P256dh: target.Keys.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      s.cfg.HTTPClient,
		Subscriber:      s.cfg.Subject,
		TTL:             s.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
	})
	if err != nil {
		return fmt.Errorf("push.Send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		s.logger.InfoContext(ctx, "Push subscription expired",
			attr.String("endpoint", target.Endpoint),
			attr.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("push.Send: status %d: %w", resp.StatusCode, ErrTargetGone)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// StatusError reports a push service response outside 2xx that is not a gone target.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push.Send: unexpected status %d", e.StatusCode)
}
