package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://open.feishu.cn"
	defaultTimeout = 10 * time.Second
)

// Config carries the bot identity. WebhookURL is required. Secret enables
// request signing on webhook posts. AppID and AppSecret enable elevated
// operations (image upload) and must be set together.
type Config struct {
	WebhookURL string
	Secret     string
	AppID      string
	AppSecret  string
}

// Bot is a client for one configured custom bot. It holds no mutable state
// across calls; concurrent use is safe.
type Bot struct {
	webhookURL string
	secret     string
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// New creates a Bot for the given identity.
func New(cfg Config) (*Bot, error) {
	return NewWithClient(cfg, &http.Client{Timeout: defaultTimeout})
}

// NewWithClient creates a Bot that sends through the given HTTP client.
func NewWithClient(cfg Config, client *http.Client) (*Bot, error) {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if (cfg.AppID == "") != (cfg.AppSecret == "") {
		return nil, fmt.Errorf("app_id and app_secret must be set together")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Bot{
		webhookURL: cfg.WebhookURL,
		secret:     cfg.Secret,
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		baseURL:    defaultBaseURL,
		httpClient: client,
		now:        time.Now,
	}, nil
}

// Post sends a composed message to the webhook endpoint. When a signing
// secret is configured the payload is stamped with the current Unix timestamp
// and its signature first. The decoded response body is returned as-is even
// when the service reports a failure inside it; the remote status fields are
// the caller's to inspect. Transport and decode failures are logged and
// returned.
func (b *Bot) Post(ctx context.Context, msg Message) (map[string]any, error) {
	payload := make(map[string]any, len(msg)+2)
	for k, v := range msg {
		payload[k] = v
	}
	if b.secret != "" {
		ts := b.now().Unix()
		payload["timestamp"] = ts
		payload["sign"] = Sign(b.secret, ts)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		log.Printf("[bot] webhook post failed: %v", err)
		return nil, &TransportError{Op: "post webhook", Err: err}
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[bot] decode webhook response failed: %v", err)
		return nil, &TransportError{Op: "decode webhook response", Err: err}
	}
	return result, nil
}

// SendText posts a text message.
func (b *Bot) SendText(ctx context.Context, text string) (map[string]any, error) {
	return b.Post(ctx, TextMessage(text))
}

// SendRich posts a rich post message; see RichMessage.
func (b *Bot) SendRich(ctx context.Context, content any) (map[string]any, error) {
	return b.Post(ctx, RichMessage(content))
}

// SendCard posts an interactive card message.
func (b *Bot) SendCard(ctx context.Context, card any) (map[string]any, error) {
	return b.Post(ctx, CardMessage(card))
}

// SendImage posts an image message for an already uploaded image key.
func (b *Bot) SendImage(ctx context.Context, imageKey string) (map[string]any, error) {
	return b.Post(ctx, ImageMessage(imageKey))
}

// ShareChat posts a share-chat message.
func (b *Bot) ShareChat(ctx context.Context, chatID string) (map[string]any, error) {
	return b.Post(ctx, ShareChatMessage(chatID))
}

// ShareUser posts a share-user message.
func (b *Bot) ShareUser(ctx context.Context, userID string) (map[string]any, error) {
	return b.Post(ctx, ShareUserMessage(userID))
}

// UploadFile exchanges a fresh tenant token and uploads the input, returning
// the image key. Requires app credentials.
func (b *Bot) UploadFile(ctx context.Context, in Input) (string, error) {
	token, err := b.tenantAccessToken(ctx)
	if err != nil {
		return "", err
	}
	return b.uploadImage(ctx, in, token)
}

// ImageKeyFromURL downloads an image over HTTP and uploads it, returning the
// image key. The download is streamed straight into the upload.
func (b *Bot) ImageKeyFromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "fetch image", Err: err}
	}
	defer resp.Body.Close()

	return b.UploadFile(ctx, ReaderInput(resp.Body, "image/png"))
}

// SendImageFile uploads the input and posts the resulting image message.
func (b *Bot) SendImageFile(ctx context.Context, in Input) (map[string]any, error) {
	key, err := b.UploadFile(ctx, in)
	if err != nil {
		return nil, err
	}
	return b.Post(ctx, ImageMessage(key))
}

// SendImageURL downloads an image, uploads it and posts the resulting image
// message.
func (b *Bot) SendImageURL(ctx context.Context, url string) (map[string]any, error) {
	key, err := b.ImageKeyFromURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return b.Post(ctx, ImageMessage(key))
}
