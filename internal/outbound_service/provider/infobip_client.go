package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
)

const (
	defaultCallbackData = "Callback data"
	emailCallbackData   = "DLR callback data"
)

// Config is read once at startup. Notify URLs are absolute.
type Config struct {
	SMSURL    string
	SMSAPIKey string
	SMSSender string

	WhatsAppURL           string // base URL; "template" or "text" is appended
	WhatsAppAPIKey        string
	WhatsAppServiceNumber string
	WhatsAppNotifyURL     string
	WhatsAppLanguage      string

	EmailURL       string
	EmailAPIKey    string
	EmailFrom      string
	EmailFromName  string
	EmailNotifyURL string
}

// SentMessage is one entry of the provider's messages array.
type SentMessage struct {
	MessageID string                       `json:"messageId"`
	To        string                       `json:"to,omitempty"`
	Status    *ledgerdomain.ProviderStatus `json:"status,omitempty"`

	// Raw is this entry exactly as the provider returned it.
	Raw json.RawMessage `json:"-"`
}

func (m *SentMessage) UnmarshalJSON(data []byte) error {
	type plain SentMessage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = SentMessage(p)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// SendResult is the decoded provider answer to a send.
type SendResult struct {
	BulkID    string        `json:"bulkId,omitempty"`
	MessageID string        `json:"messageId,omitempty"` // top-level id of single-message endpoints
	Messages  []SentMessage `json:"messages,omitempty"`

	// RequestMessageID is the id this client generated for the request, WhatsApp only.
	RequestMessageID string `json:"-"`
	// Payload is the raw response body.
	Payload json.RawMessage `json:"-"`
	// TransportCode is the HTTP status, 0 when no response arrived.
	TransportCode int `json:"-"`
}

// ProviderMessageID picks the id to store: messages[0], then the top-level id, then the
// id generated for the request.
func (r *SendResult) ProviderMessageID() string {
	if len(r.Messages) > 0 && r.Messages[0].MessageID != "" {
		return r.Messages[0].MessageID
	}
	if r.MessageID != "" {
		return r.MessageID
	}
	return r.RequestMessageID
}

// FirstStatus is the status of messages[0], nil when absent.
func (r *SendResult) FirstStatus() *ledgerdomain.ProviderStatus {
	if len(r.Messages) == 0 {
		return nil
	}
	return r.Messages[0].Status
}

// WhatsAppTemplate is a template send request.
type WhatsAppTemplate struct {
	To           string
	TemplateName string
	Placeholders []string
	Language     string // defaults to Config.WhatsAppLanguage
	CallbackData string
}

// Email is an email send request.
type Email struct {
	To           string
	Subject      string
	Text         string
	HTML         string
	Placeholders map[string]string
}

// InfobipClient talks to the Infobip SMS, WhatsApp and Email APIs.
type InfobipClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewInfobipClient uses httpClient as given. A nil client gets http.Client defaults,
// which impose no timeout.
func NewInfobipClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *InfobipClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.WhatsAppLanguage == "" {
		cfg.WhatsAppLanguage = "en"
	}
	return &InfobipClient{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With("provider", "infobip"),
	}
}

type smsDestination struct {
	To string `json:"to"`
}

type smsMessage struct {
	From         string           `json:"from"`
	Destinations []smsDestination `json:"destinations"`
	Text         string           `json:"text"`
}

type smsRequest struct {
	Messages []smsMessage `json:"messages"`
}

// SendSMS never returns an error for transport failures or non-200 answers. Those are
// logged and the best-effort result is returned so the attempt can still be recorded.
func (c *InfobipClient) SendSMS(ctx context.Context, to, text string) (*SendResult, error) {
	body, err := json.Marshal(smsRequest{Messages: []smsMessage{{
		From:         c.cfg.SMSSender,
		Destinations: []smsDestination{{To: to}},
		Text:         text,
	}}})
	if err != nil {
		return nil, fmt.Errorf("marshalling sms request: %w", err)
	}

	status, payload, err := c.do(ctx, c.cfg.SMSURL, "application/json", authorization(c.cfg.SMSAPIKey), bytes.NewReader(body))
	if err != nil {
		c.logger.ErrorContext(ctx, "SMS provider request failed", "to", to, "error", err)
		return &SendResult{}, nil
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "SMS provider returned unexpected status", "to", to, "status_code", status, "body", string(payload))
	}

	result := c.decode(ctx, "sms", payload)
	result.TransportCode = status
	return result, nil
}

type whatsAppURLOptions struct {
	ShortenURL  bool `json:"shortenUrl"`
	TrackClicks bool `json:"trackClicks"`
}

type whatsAppMessage struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	MessageID    string             `json:"messageId"`
	Content      any                `json:"content"`
	CallbackData string             `json:"callbackData"`
	NotifyURL    string             `json:"notifyUrl"`
	URLOptions   whatsAppURLOptions `json:"urlOptions"`
}

type whatsAppTemplateContent struct {
	TemplateName string `json:"templateName"`
	TemplateData struct {
		Body struct {
			Placeholders []string `json:"placeholders"`
		} `json:"body"`
	} `json:"templateData"`
	Language string `json:"language"`
}

type whatsAppTextContent struct {
	Text string `json:"text"`
}

func (c *InfobipClient) newWhatsAppMessage(to string, content any, callbackData string) whatsAppMessage {
	if callbackData == "" {
		callbackData = defaultCallbackData
	}
	return whatsAppMessage{
		From:         c.cfg.WhatsAppServiceNumber,
		To:           to,
		MessageID:    uuid.NewString(),
		Content:      content,
		CallbackData: callbackData,
		NotifyURL:    c.cfg.WhatsAppNotifyURL,
		URLOptions:   whatsAppURLOptions{ShortenURL: true},
	}
}

// SendWhatsAppTemplate posts to the template endpoint, which takes a messages array.
func (c *InfobipClient) SendWhatsAppTemplate(ctx context.Context, tmpl WhatsAppTemplate) (*SendResult, error) {
	content := whatsAppTemplateContent{TemplateName: tmpl.TemplateName, Language: tmpl.Language}
	if content.Language == "" {
		content.Language = c.cfg.WhatsAppLanguage
	}
	content.TemplateData.Body.Placeholders = tmpl.Placeholders
	if content.TemplateData.Body.Placeholders == nil {
		content.TemplateData.Body.Placeholders = []string{}
	}

	msg := c.newWhatsAppMessage(tmpl.To, content, tmpl.CallbackData)
	return c.sendWhatsApp(ctx, "template", struct {
		Messages []whatsAppMessage `json:"messages"`
	}{Messages: []whatsAppMessage{msg}}, msg.MessageID)
}

// SendWhatsAppText posts a single free-form text message.
func (c *InfobipClient) SendWhatsAppText(ctx context.Context, to, text string) (*SendResult, error) {
	msg := c.newWhatsAppMessage(to, whatsAppTextContent{Text: text}, "")
	return c.sendWhatsApp(ctx, "text", msg, msg.MessageID)
}

func (c *InfobipClient) sendWhatsApp(ctx context.Context, endpoint string, request any, messageID string) (*SendResult, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshalling whatsapp %s request: %w", endpoint, err)
	}
	url := c.cfg.WhatsAppURL + endpoint
	c.logger.DebugContext(ctx, "Sending WhatsApp message", "url", url, "message_id", messageID)

	status, payload, err := c.do(ctx, url, "application/json", authorization(c.cfg.WhatsAppAPIKey), bytes.NewReader(body))
	if err != nil {
		c.logger.ErrorContext(ctx, "WhatsApp provider request failed", "message_id", messageID, "error", err)
		return nil, &TransportError{Channel: "whatsapp", Err: err}
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "WhatsApp provider returned unexpected status", "message_id", messageID, "status_code", status, "body", string(payload))
		return nil, &UnexpectedStatusError{Channel: "whatsapp", StatusCode: status, Body: string(payload)}
	}

	result := c.decode(ctx, "whatsapp", payload)
	result.TransportCode = status
	result.RequestMessageID = messageID
	return result, nil
}

// SendEmail posts a multipart form with Basic auth.
func (c *InfobipClient) SendEmail(ctx context.Context, email Email) (*SendResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"from", fmt.Sprintf("%s<%s>", c.cfg.EmailFromName, c.cfg.EmailFrom)},
		{"subject", email.Subject},
		{"to", email.To},
		{"text", email.Text},
		{"intermediateReport", "true"},
		{"notifyUrl", c.cfg.EmailNotifyURL},
		{"notifyContentType", "application/json"},
		{"callbackData", emailCallbackData},
	}
	if email.HTML != "" {
		fields = append(fields, [2]string{"html", email.HTML})
	}
	if len(email.Placeholders) > 0 {
		encoded, err := json.Marshal(email.Placeholders)
		if err != nil {
			return nil, fmt.Errorf("marshalling email placeholders: %w", err)
		}
		fields = append(fields, [2]string{"defaultPlaceholders", string(encoded)})
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("writing email form field %s: %w", f[0], err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("closing email form: %w", err)
	}

	status, payload, err := c.do(ctx, c.cfg.EmailURL, form.FormDataContentType(), "Basic "+c.cfg.EmailAPIKey, &buf)
	if err != nil {
		c.logger.ErrorContext(ctx, "Email provider request failed", "to", email.To, "error", err)
		return nil, &TransportError{Channel: "email", Err: err}
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "Email provider returned unexpected status", "to", email.To, "status_code", status, "body", string(payload))
		return nil, &UnexpectedStatusError{Channel: "email", StatusCode: status, Body: string(payload)}
	}

	result := c.decode(ctx, "email", payload)
	result.TransportCode = status
	return result, nil
}

func (c *InfobipClient) do(ctx context.Context, url, contentType, auth string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, payload, nil
}

// decode is lenient: an unreadable body yields an empty result.
func (c *InfobipClient) decode(ctx context.Context, channel string, payload []byte) *SendResult {
	var result SendResult
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &result); err != nil {
			c.logger.WarnContext(ctx, "Failed to parse provider response", "channel", channel, "error", err, "body", string(payload))
			return &SendResult{}
		}
		result.Payload = append(json.RawMessage(nil), payload...)
	}
	return &result
}

// authorization accepts either a bare key or a full header value such as "App <key>".
func authorization(key string) string {
	if strings.Contains(key, " ") {
		return key
	}
	return "App " + key
}
