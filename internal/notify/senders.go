// Package notify fans qualifying records out to the configured delivery
// channels, isolating per-channel failure.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/credstore"
	"jobradar/pipeline-service/internal/model"
)

const sendTimeout = 10 * time.Second

// Sender delivers one alert on one channel kind. Implementations validate
// their own credential shape before sending.
type Sender interface {
	Name() string
	// CredentialKey is the fixed credential-store key for this channel.
	CredentialKey() string
	Send(ctx context.Context, credential string, rec *model.Record) error
}

// alertText renders the shared one-line alert body.
func alertText(rec *model.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s", rec.Title, rec.Company)
	if rec.Location != "" {
		fmt.Fprintf(&b, " (%s)", rec.Location)
	}
	if rec.Score != nil {
		fmt.Fprintf(&b, " — match %.0f%%", rec.Score.Total*100)
	}
	if rec.Ghost.LikelyGhost() {
		b.WriteString(" [possible ghost listing]")
	}
	fmt.Fprintf(&b, "\n%s", rec.URL)
	return b.String()
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// SlackSender posts to a Slack incoming webhook.
type SlackSender struct {
	client      *http.Client
	allowedHost string
	pathPrefix  string
}

// NewSlackSender constructs a SlackSender pinned to the official webhook host.
func NewSlackSender() *SlackSender {
	return &SlackSender{
		client:      &http.Client{Timeout: sendTimeout},
		allowedHost: "hooks.slack.com",
		pathPrefix:  "/services/",
	}
}

func (s *SlackSender) Name() string          { return "slack" }
func (s *SlackSender) CredentialKey() string { return credstore.KeySlackWebhook }

func (s *SlackSender) Send(ctx context.Context, webhookURL string, rec *model.Record) error {
	if err := validateWebhookURL(webhookURL, s.allowedHost, s.pathPrefix); err != nil {
		return err
	}
	return postJSON(ctx, s.client, webhookURL, map[string]string{"text": alertText(rec)})
}

// DiscordSender posts to a Discord webhook.
type DiscordSender struct {
	client      *http.Client
	allowedHost string
	pathPrefix  string
}

// NewDiscordSender constructs a DiscordSender pinned to the official webhook host.
func NewDiscordSender() *DiscordSender {
	return &DiscordSender{
		client:      &http.Client{Timeout: sendTimeout},
		allowedHost: "discord.com",
		pathPrefix:  "/api/webhooks/",
	}
}

func (s *DiscordSender) Name() string          { return "discord" }
func (s *DiscordSender) CredentialKey() string { return credstore.KeyDiscordWebhook }

func (s *DiscordSender) Send(ctx context.Context, webhookURL string, rec *model.Record) error {
	if err := validateWebhookURL(webhookURL, s.allowedHost, s.pathPrefix); err != nil {
		return err
	}
	return postJSON(ctx, s.client, webhookURL, map[string]string{"content": alertText(rec)})
}

// TeamsSender posts to a Microsoft Teams incoming webhook.
type TeamsSender struct {
	client      *http.Client
	allowedHost string
	pathPrefix  string
}

// NewTeamsSender constructs a TeamsSender pinned to the official webhook host.
func NewTeamsSender() *TeamsSender {
	return &TeamsSender{
		client:      &http.Client{Timeout: sendTimeout},
		allowedHost: "webhook.office.com",
		pathPrefix:  "/webhookb2/",
	}
}

func (s *TeamsSender) Name() string          { return "teams" }
func (s *TeamsSender) CredentialKey() string { return credstore.KeyTeamsWebhook }

func (s *TeamsSender) Send(ctx context.Context, webhookURL string, rec *model.Record) error {
	if err := validateWebhookURL(webhookURL, s.allowedHost, s.pathPrefix); err != nil {
		return err
	}
	return postJSON(ctx, s.client, webhookURL, map[string]string{"text": alertText(rec)})
}

// TelegramSender sends via the Bot API. The credential is "token:chatID"
// where token itself contains a colon, so the chat ID is split from the end.
type TelegramSender struct {
	client      *http.Client
	allowedHost string
}

// NewTelegramSender constructs a TelegramSender.
func NewTelegramSender() *TelegramSender {
	return &TelegramSender{
		client:      &http.Client{Timeout: sendTimeout},
		allowedHost: "api.telegram.org",
	}
}

func (s *TelegramSender) Name() string          { return "telegram" }
func (s *TelegramSender) CredentialKey() string { return credstore.KeyTelegramBot }

func (s *TelegramSender) Send(ctx context.Context, credential string, rec *model.Record) error {
	i := strings.LastIndex(credential, ":")
	if i <= 0 || i == len(credential)-1 {
		return fmt.Errorf("telegram credential must be token:chatID")
	}
	token, chatID := credential[:i], credential[i+1:]

	apiURL := fmt.Sprintf("https://%s/bot%s/sendMessage", s.allowedHost, token)
	if err := validateWebhookURL(apiURL, s.allowedHost, "/bot"); err != nil {
		return err
	}
	return postJSON(ctx, s.client, apiURL, map[string]string{
		"chat_id": chatID,
		"text":    alertText(rec),
	})
}

// EmailSender delivers over SMTP. The credential is JSON:
// {"host","port","from","to","username","password"}.
type EmailSender struct {
	// send is swapped out in tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender constructs an EmailSender.
func NewEmailSender() *EmailSender {
	return &EmailSender{send: smtp.SendMail}
}

type smtpConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	From     string `json:"from"`
	To       string `json:"to"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *EmailSender) Name() string          { return "email" }
func (s *EmailSender) CredentialKey() string { return credstore.KeySMTPPassword }

func (s *EmailSender) Send(_ context.Context, credential string, rec *model.Record) error {
	var cfg smtpConfig
	if err := json.Unmarshal([]byte(credential), &cfg); err != nil {
		return fmt.Errorf("smtp credential is not valid JSON: %w", err)
	}
	if cfg.Host == "" || cfg.Port == "" || cfg.From == "" || cfg.To == "" {
		return fmt.Errorf("smtp credential missing host/port/from/to")
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Job match: %s at %s\r\n\r\n%s\r\n",
		cfg.From, cfg.To, rec.Title, rec.Company, alertText(rec))
	if err := s.send(cfg.Host+":"+cfg.Port, auth, cfg.From, []string{cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// DesktopSender hands the alert to the local notification surface. The GUI
// tray is an external collaborator, so this sender only logs the alert; the
// credential value just has to be non-empty ("on").
type DesktopSender struct {
	log *zap.Logger
}

// NewDesktopSender constructs a DesktopSender.
func NewDesktopSender(log *zap.Logger) *DesktopSender {
	return &DesktopSender{log: log.Named("desktop")}
}

func (s *DesktopSender) Name() string          { return "desktop" }
func (s *DesktopSender) CredentialKey() string { return credstore.KeyDesktopEnabled }

func (s *DesktopSender) Send(_ context.Context, _ string, rec *model.Record) error {
	s.log.Info("desktop notification",
		zap.String("title", rec.Title),
		zap.String("company", rec.Company),
		zap.String("url", rec.URL),
	)
	return nil
}
