package notify

import (
	"context"
	"fmt"
	"net/http"

	"notifeed/internal/domain"
)

// Slack posts Block Kit messages to an incoming-webhook URL.
type Slack struct {
	endpoint string
	token    *string
	client   *http.Client
}

func NewSlack(channel domain.Channel, client *http.Client) (Sender, error) {
	return &Slack{endpoint: channel.Endpoint, token: channel.AuthToken, client: client}, nil
}

func (s *Slack) Send(ctx context.Context, feedName string, entry domain.Entry) error {
	return postJSON(ctx, s.client, s.endpoint, s.token, slackPayload(feedName, entry))
}

func slackPayload(feedName string, entry domain.Entry) map[string]any {
	body := map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*<%s|%s>*\n%s", entry.Link, entry.Title, entry.Summary),
		},
	}
	if entry.ImageURL != "" {
		body["accessory"] = map[string]any{
			"type":      "image",
			"image_url": entry.ImageURL,
			"alt_text":  entry.Title,
		}
	}

	blocks := []any{
		map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("New post from %s!", feedName),
			},
		},
		map[string]any{"type": "divider"},
		body,
	}

	if !entry.PublishedAt.IsZero() {
		pubdate := entry.PublishedAt.Format("January 02 2006")
		text := pubdate
		if entry.Author != "" {
			text = fmt.Sprintf("By %s — %s", entry.Author, pubdate)
		}
		blocks = append(blocks, map[string]any{
			"type": "context",
			"elements": []any{
				map[string]any{"type": "mrkdwn", "text": text},
			},
		})
	}

	return map[string]any{
		"text":   fmt.Sprintf("New post from %s: %s", feedName, entry.Title),
		"blocks": blocks,
	}
}
