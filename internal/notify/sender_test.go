package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifeed/internal/domain"
)

type capturedRequest struct {
	body    []byte
	headers http.Header
}

// captureServer records every request and answers with the given status.
func captureServer(t *testing.T, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.body = body
		captured.headers = r.Header.Clone()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func sampleEntry() domain.Entry {
	return domain.Entry{
		ID:          "entry-1",
		Title:       "Big news",
		Link:        "https://blog.example.com/big-news",
		Summary:     "Something happened",
		Author:      "Alice",
		ImageURL:    "https://blog.example.com/big-news.png",
		PublishedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestSlack_PayloadShape(t *testing.T) {
	server, captured := captureServer(t, http.StatusOK)
	sender, err := NewSlack(domain.Channel{Endpoint: server.URL}, server.Client())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "blog", sampleEntry()))

	var payload struct {
		Text   string           `json:"text"`
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, "application/json", captured.headers.Get("Content-Type"))
	assert.Equal(t, "New post from blog: Big news", payload.Text)
	require.Len(t, payload.Blocks, 4)

	assert.Equal(t, "divider", payload.Blocks[1]["type"])

	body := payload.Blocks[2]
	text := body["text"].(map[string]any)["text"].(string)
	assert.Contains(t, text, "<https://blog.example.com/big-news|Big news>")
	assert.Contains(t, text, "Something happened")

	accessory := body["accessory"].(map[string]any)
	assert.Equal(t, "image", accessory["type"])
	assert.Equal(t, "https://blog.example.com/big-news.png", accessory["image_url"])

	footer := payload.Blocks[3]
	assert.Equal(t, "context", footer["type"])
	element := footer["elements"].([]any)[0].(map[string]any)
	assert.Contains(t, element["text"], "Alice")
	assert.Contains(t, element["text"], "January 02 2024")
}

func TestSlack_OmitsOptionalBlocks(t *testing.T) {
	server, captured := captureServer(t, http.StatusOK)
	sender, err := NewSlack(domain.Channel{Endpoint: server.URL}, server.Client())
	require.NoError(t, err)

	entry := domain.Entry{ID: "e", Title: "Bare", Link: "https://x.example.com", Summary: "s"}
	require.NoError(t, sender.Send(context.Background(), "blog", entry))

	var payload struct {
		Blocks []map[string]any `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	// No publication date means no trailing context block.
	require.Len(t, payload.Blocks, 3)
	assert.NotContains(t, payload.Blocks[2], "accessory")
}

func TestDiscord_PayloadShape(t *testing.T) {
	server, captured := captureServer(t, http.StatusOK)
	sender, err := NewDiscord(domain.Channel{Endpoint: server.URL}, server.Client())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "blog", sampleEntry()))

	var payload struct {
		Content string           `json:"content"`
		Embeds  []map[string]any `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, "New post from blog!", payload.Content)
	require.Len(t, payload.Embeds, 1)

	embed := payload.Embeds[0]
	assert.Equal(t, "Big news", embed["title"])
	assert.Equal(t, "https://blog.example.com/big-news", embed["url"])
	assert.Equal(t, "Something happened", embed["description"])
	assert.Equal(t, "2024-01-02T10:00:00Z", embed["timestamp"])
	assert.Equal(t, "Alice", embed["author"].(map[string]any)["name"])
	assert.Equal(t, "https://blog.example.com/big-news.png", embed["thumbnail"].(map[string]any)["url"])
}

func TestNtfy_HeadersAndBody(t *testing.T) {
	server, captured := captureServer(t, http.StatusOK)
	token := "secret"
	sender, err := NewNtfy(domain.Channel{Endpoint: server.URL, AuthToken: &token}, server.Client())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "blog", sampleEntry()))

	assert.Equal(t, "Something happened", string(captured.body))
	assert.Equal(t, "blog - Big news", captured.headers.Get("Title"))
	assert.Equal(t, "https://blog.example.com/big-news", captured.headers.Get("Click"))
	assert.Equal(t, "view, Go to post, https://blog.example.com/big-news", captured.headers.Get("Actions"))
	assert.Equal(t, "Bearer secret", captured.headers.Get("Authorization"))
}

func TestPostJSON_BearerToken(t *testing.T) {
	server, captured := captureServer(t, http.StatusOK)
	token := "secret"
	sender, err := NewSlack(domain.Channel{Endpoint: server.URL, AuthToken: &token}, server.Client())
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "blog", sampleEntry()))

	assert.Equal(t, "Bearer secret", captured.headers.Get("Authorization"))
}

func TestPostJSON_NonSuccessStatusIsError(t *testing.T) {
	server, _ := captureServer(t, http.StatusForbidden)
	sender, err := NewSlack(domain.Channel{Endpoint: server.URL}, server.Client())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "blog", sampleEntry())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRegistry_CreateByType(t *testing.T) {
	registry := NewRegistry(5 * time.Second)

	for _, typ := range []string{"slack", "discord", "ntfy", "amqp"} {
		sender, err := registry.Create(domain.Channel{Type: typ, Endpoint: "https://example.com"})
		assert.NoError(t, err, typ)
		assert.NotNil(t, sender, typ)
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	registry := NewRegistry(5 * time.Second)

	_, err := registry.Create(domain.Channel{Type: "carrier-pigeon"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel type")
}

func TestRegistry_TypesSorted(t *testing.T) {
	registry := NewRegistry(5 * time.Second)
	assert.Equal(t, []string{"amqp", "discord", "ntfy", "slack"}, registry.Types())
}
