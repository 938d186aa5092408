package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediasyncdel/internal/config"
)

const userAgent = "mediasyncdel/0.1.0"

// Service defines the notification surface used by the pipeline and daemon.
type Service interface {
	// Notify announces a synced deletion identified by descriptor.
	Notify(ctx context.Context, descriptor string) error
	// NotifySyncDisabled alerts the operator that sync switched itself off.
	NotifySyncDisabled(ctx context.Context, mediaName string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Notify(ctx context.Context, descriptor string) error {
	data := payload{
		title:   "Media Sync Delete",
		message: fmt.Sprintf("Synced deletion: %s", strings.TrimSpace(descriptor)),
		tags:    []string{"mediasyncdel", "delete"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySyncDisabled(ctx context.Context, mediaName string) error {
	message := "Sync disabled: webhook did not include item_isvirtual"
	if mediaName = strings.TrimSpace(mediaName); mediaName != "" {
		message = fmt.Sprintf("%s (while deleting %s)", message, mediaName)
	}
	data := payload{
		title:    "Media Sync Delete - Disabled",
		message:  message,
		tags:     []string{"mediasyncdel", "warning", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Media Sync Delete - Test",
		message:  "Notification system test",
		tags:     []string{"mediasyncdel", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Notify(context.Context, string) error             { return nil }
func (noopService) NotifySyncDisabled(context.Context, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
