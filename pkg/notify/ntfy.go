package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NtfyNotifier publishes messages to an ntfy topic.
type NtfyNotifier struct {
	server string
	topic  string
	token  string
	client *http.Client
}

// NewNtfyNotifier creates an ntfy notifier. Server is the base URL
// (e.g. https://ntfy.sh); token is optional bearer auth.
func NewNtfyNotifier(server, topic, token string) *NtfyNotifier {
	return &NtfyNotifier{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		token:  token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *NtfyNotifier) Name() string { return "ntfy" }

func (n *NtfyNotifier) Send(ctx context.Context, msg Message) error {
	url := n.server + "/" + n.topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("create ntfy request: %w", err)
	}

	req.Header.Set("Title", msg.Title)
	req.Header.Set("Priority", string(msg.Priority))
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	} else {
		req.Header.Set("Tags", "warning,dollar")
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}
