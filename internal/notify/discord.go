package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"notifeed/internal/domain"
)

// Discord posts embed messages to a Discord webhook URL.
type Discord struct {
	endpoint string
	token    *string
	client   *http.Client
}

func NewDiscord(channel domain.Channel, client *http.Client) (Sender, error) {
	return &Discord{endpoint: channel.Endpoint, token: channel.AuthToken, client: client}, nil
}

func (d *Discord) Send(ctx context.Context, feedName string, entry domain.Entry) error {
	return postJSON(ctx, d.client, d.endpoint, d.token, discordPayload(feedName, entry))
}

func discordPayload(feedName string, entry domain.Entry) map[string]any {
	embed := map[string]any{
		"title":       entry.Title,
		"url":         entry.Link,
		"description": entry.Summary,
	}
	if entry.ImageURL != "" {
		embed["thumbnail"] = map[string]any{"url": entry.ImageURL}
	}
	if entry.Author != "" {
		embed["author"] = map[string]any{"name": entry.Author}
	}
	if !entry.PublishedAt.IsZero() {
		embed["timestamp"] = entry.PublishedAt.Format(time.RFC3339)
	}

	return map[string]any{
		"content": fmt.Sprintf("New post from %s!", feedName),
		"embeds":  []any{embed},
	}
}
