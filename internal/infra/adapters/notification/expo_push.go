// File: internal/infra/adapters/notification/expo_push.go
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ai-home-decorator/internal/domain"
	"ai-home-decorator/internal/domain/ports/adapter"
)

var _ adapter.NotificationDispatcher = (*ExpoPushDispatcher)(nil)

// ExpoPushDispatcher delivers device notifications through the Expo
// push service. Best-effort by contract: callers treat errors as
// log-and-continue.
type ExpoPushDispatcher struct {
	endpoint string
	client   *http.Client
}

func NewExpoPushDispatcher(endpoint string) *ExpoPushDispatcher {
	if endpoint == "" {
		endpoint = "https://exp.host/--/api/v2/push/send"
	}
	return &ExpoPushDispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *ExpoPushDispatcher) Send(ctx context.Context, pushToken string, note adapter.PushNote) error {
	if pushToken == "" {
		return domain.ErrInvalidArgument
	}
	payload := map[string]any{
		"to":    pushToken,
		"title": note.Title,
		"body":  note.Body,
	}
	if note.Screen != "" {
		payload["data"] = map[string]string{"screen": note.Screen}
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("expo push http %d", resp.StatusCode)
	}
	return nil
}
