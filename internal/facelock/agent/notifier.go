package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alejandrodlv/facelock/internal/facelock/service"
	"github.com/alejandrodlv/facelock/internal/facelock/types"
)

// notifyTimeout bounds the whole notify call.  The coordinator is on the
// same edge node; anything slower than this is effectively down, and the
// recognition loop must not stall on it.
const notifyTimeout = 2 * time.Second

// Notifier delivers decisions to the coordinator's notify-access endpoint.
// It fails fast and never retries — a dropped notification is logged by the
// caller and the next frame proceeds.
type Notifier struct {
	url    string
	client *http.Client
}

func NewNotifier(baseURL string) *Notifier {
	return &Notifier{
		url:    baseURL + "/api/notify-access",
		client: &http.Client{Timeout: notifyTimeout},
	}
}

// Notify implements service.DecisionSink.
func (n *Notifier) Notify(ctx context.Context, d service.Decision) error {
	body, err := json.Marshal(types.NotifyRequest{
		UserName:   d.UserName,
		Method:     d.Method,
		Success:    d.Success,
		Confidence: d.Confidence,
	})
	if err != nil {
		return fmt.Errorf("encode notify: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify coordinator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify coordinator: status %d", resp.StatusCode)
	}
	return nil
}
