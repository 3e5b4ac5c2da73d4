// Package telex is the REST client for the Telex.im messaging platform.
package telex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"orunmila/internal/domain"
	"orunmila/internal/metrics"
)

const (
	defaultAPIURL     = "https://api.telex.im/v1"
	defaultParseMode  = "Markdown"
	sendTimeout       = 10 * time.Second
	typingTimeout     = 5 * time.Second
	maxResponseLength = 1 << 20
)

// Client issues authenticated REST calls to the platform.
type Client struct {
	apiURL string
	apiKey string
	botID  string
	client *http.Client
	logger *slog.Logger
}

type Config struct {
	APIURL string
	APIKey string
	BotID  string
	Logger *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return &Client{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		botID:  cfg.BotID,
		client: &http.Client{Timeout: sendTimeout},
		logger: cfg.Logger,
	}
}

// sendRequest is the reply plus the bot identity the platform attributes
// the message to.
type sendRequest struct {
	domain.Reply
	BotID string `json:"bot_id,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

// Send performs one authenticated POST to deliver a reply. Platform errors
// come back as wrapped errors; the caller decides whether they are terminal.
func (c *Client) Send(ctx context.Context, reply domain.Reply) (*domain.DeliveryResult, error) {
	if reply.ChatID == "" {
		return nil, fmt.Errorf("telex: empty chat id")
	}
	if reply.ParseMode == "" {
		reply.ParseMode = defaultParseMode
	}

	body, err := c.post(ctx, "/messages", sendRequest{Reply: reply, BotID: c.botID})
	if err != nil {
		metrics.Collector.Counter("orunmila_messages_failed_total", "Outbound deliveries that failed", "").Inc()
		return nil, err
	}

	var sr sendResponse
	// The platform response shape is not under our control; a missing or
	// unparseable message_id is not a delivery failure.
	_ = json.Unmarshal(body, &sr)

	metrics.Collector.Counter("orunmila_messages_sent_total", "Outbound deliveries accepted by the platform", "").Inc()
	c.logger.Debug("message delivered", "chat_id", reply.ChatID, "message_id", sr.MessageID)

	return &domain.DeliveryResult{
		ChatID:    reply.ChatID,
		MessageID: sr.MessageID,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Broadcast sends text to every target sequentially. A failure on one recipient
// never aborts delivery to the rest; each outcome is captured per target
// and the aggregate always completes.
func (c *Client) Broadcast(ctx context.Context, chatIDs []string, text string) domain.BroadcastResult {
	targets := make([]domain.TargetResult, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		_, err := c.Send(ctx, domain.Reply{ChatID: chatID, Text: text})
		tr := domain.TargetResult{ChatID: chatID, OK: err == nil}
		if err != nil {
			tr.Error = err.Error()
			c.logger.Warn("broadcast delivery failed", "chat_id", chatID, "error", err)
		}
		targets = append(targets, tr)
	}

	succeeded := lo.CountBy(targets, func(t domain.TargetResult) bool { return t.OK })
	return domain.BroadcastResult{
		Total:     len(chatIDs),
		Succeeded: succeeded,
		Failed:    len(chatIDs) - succeeded,
		Targets:   targets,
	}
}

// SendTyping shows a typing indicator while an answer is being generated.
// Best effort: failures are logged at debug and never propagated.
func (c *Client) SendTyping(ctx context.Context, chatID string) {
	ctx, cancel := context.WithTimeout(ctx, typingTimeout)
	defer cancel()

	payload := map[string]string{"chat_id": chatID, "action": "typing"}
	if c.botID != "" {
		payload["bot_id"] = c.botID
	}
	if _, err := c.post(ctx, "/actions", payload); err != nil {
		c.logger.Debug("typing indicator failed", "chat_id", chatID, "error", err)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telex request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telex %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
