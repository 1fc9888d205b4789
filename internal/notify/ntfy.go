package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"notifeed/internal/domain"
)

// Ntfy publishes to an ntfy topic URL. ntfy carries the message in the
// request body and metadata in headers rather than a JSON payload.
type Ntfy struct {
	endpoint string
	token    *string
	client   *http.Client
}

func NewNtfy(channel domain.Channel, client *http.Client) (Sender, error) {
	return &Ntfy{endpoint: channel.Endpoint, token: channel.AuthToken, client: client}, nil
}

func (n *Ntfy) Send(ctx context.Context, feedName string, entry domain.Entry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(entry.Summary))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Title", fmt.Sprintf("%s - %s", feedName, entry.Title))
	req.Header.Set("Click", entry.Link)
	req.Header.Set("Actions", strings.Join([]string{"view", "Go to post", entry.Link}, ", "))
	if n.token != nil && *n.token != "" {
		req.Header.Set("Authorization", "Bearer "+*n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
