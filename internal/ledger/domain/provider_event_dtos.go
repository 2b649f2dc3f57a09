package domain

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingResults is returned when a webhook body has no results array.
var ErrMissingResults = errors.New("results key not found or not an array")

// providerTimeLayouts are tried in order. The provider sends "2019-08-14T10:49:55.000+0000".
var providerTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// ProviderTime is a nullable provider timestamp.
type ProviderTime struct {
	Time  time.Time
	Valid bool
}

func (t *ProviderTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ProviderTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("provider timestamp: %w", err)
	}
	if s == "" {
		*t = ProviderTime{}
		return nil
	}
	for _, layout := range providerTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = ProviderTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("provider timestamp %q: unrecognized format", s)
}

func (t ProviderTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(providerTimeLayouts[0]))
}

// NullTime converts to the storage representation.
func (t ProviderTime) NullTime() sql.NullTime {
	return sql.NullTime{Time: t.Time, Valid: t.Valid}
}

// ProviderStatus is the status object of send responses and delivery reports.
// Numeric fields are pointers so a missing field stays null instead of becoming 0.
type ProviderStatus struct {
	GroupID     *int64 `json:"groupId,omitempty"`
	GroupName   string `json:"groupName,omitempty"`
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Fields converts the status to ledger columns. Empty strings are stored as null.
func (s *ProviderStatus) Fields() StatusFields {
	if s == nil {
		return StatusFields{}
	}
	return StatusFields{
		Name:        nullString(s.Name),
		Description: nullString(s.Description),
		GroupID:     nullInt(s.GroupID),
		GroupName:   nullString(s.GroupName),
		ID:          nullInt(s.ID),
	}
}

// ContentElement is one element of an inbound message's content array.
type ContentElement struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	CleanText string `json:"cleanText,omitempty"`
	URL       string `json:"url,omitempty"`
}

// WebhookResult is one event of a provider webhook. The same shape carries delivery
// reports, seen reports and inbound messages; which fields are set depends on the event.
type WebhookResult struct {
	MessageID       string           `json:"messageId"`
	PairedMessageID string           `json:"pairedMessageId,omitempty"`
	BulkID          string           `json:"bulkId,omitempty"`
	To              string           `json:"to,omitempty"`
	Status          *ProviderStatus  `json:"status,omitempty"`
	SeenAt          ProviderTime     `json:"seenAt"`
	SentAt          ProviderTime     `json:"sentAt"`
	Sender          string           `json:"sender,omitempty"`
	ReceivedAt      ProviderTime     `json:"receivedAt"`
	Content         []ContentElement `json:"content,omitempty"`
	Destination     string           `json:"destination,omitempty"`
	Channel         string           `json:"channel,omitempty"`
	CallbackData    string           `json:"callbackData,omitempty"`
	Event           string           `json:"event,omitempty"`

	// Raw is the event exactly as received; RawContent is its content array.
	Raw        json.RawMessage `json:"-"`
	RawContent json.RawMessage `json:"-"`

	// DecodeErr is set when the event itself could not be decoded. Only MessageID and Raw
	// are populated then.
	DecodeErr error `json:"-"`
}

func (r *WebhookResult) UnmarshalJSON(data []byte) error {
	type plain WebhookResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var content struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &content); err != nil {
		return err
	}
	*r = WebhookResult(p)
	r.Raw = append(json.RawMessage(nil), data...)
	if len(content.Content) > 0 {
		r.RawContent = append(json.RawMessage(nil), content.Content...)
	}
	return nil
}

// HasStatus reports whether the event carries a delivery status. It takes precedence over HasSeen.
func (r *WebhookResult) HasStatus() bool {
	return r.Status != nil && r.Status.Name != ""
}

// HasSeen reports whether the event carries a seen timestamp.
func (r *WebhookResult) HasSeen() bool {
	return r.SeenAt.Valid
}

// MessageType is the declared type of the first content element, or UnknownContentType.
func (r *WebhookResult) MessageType() string {
	if len(r.Content) == 0 || r.Content[0].Type == "" {
		return UnknownContentType
	}
	return r.Content[0].Type
}

// TextBody returns the message text for textual content only. cleanText is preferred
// over text when both are present.
func (r *WebhookResult) TextBody() sql.NullString {
	if !strings.EqualFold(r.MessageType(), "text") {
		return sql.NullString{}
	}
	first := r.Content[0]
	if first.CleanText != "" {
		return sql.NullString{String: first.CleanText, Valid: true}
	}
	return nullString(first.Text)
}

// CorrelationID is pairedMessageId when the provider sends one, the message id otherwise.
func (r *WebhookResult) CorrelationID() string {
	if r.PairedMessageID != "" {
		return r.PairedMessageID
	}
	return r.MessageID
}

// WebhookBatch is the body of every provider webhook.
type WebhookBatch struct {
	Results []WebhookResult `json:"results"`
}

// DecodeWebhookBatch parses a webhook body. A body without a results array is an error.
// Events are decoded one by one; an event that fails to decode keeps its DecodeErr and
// does not affect its neighbours.
func DecodeWebhookBatch(body []byte) (*WebhookBatch, error) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding webhook body: %w", err)
	}
	trimmed := bytes.TrimSpace(envelope.Results)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMissingResults
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("decoding webhook results: %w", err)
	}
	batch := &WebhookBatch{Results: make([]WebhookResult, len(raws))}
	for i, raw := range raws {
		batch.Results[i] = decodeWebhookResult(raw)
	}
	return batch, nil
}

func decodeWebhookResult(raw json.RawMessage) WebhookResult {
	var r WebhookResult
	err := json.Unmarshal(raw, &r)
	if err == nil {
		return r
	}
	var id struct {
		MessageID string `json:"messageId"`
	}
	_ = json.Unmarshal(raw, &id)
	return WebhookResult{
		MessageID: id.MessageID,
		Raw:       append(json.RawMessage(nil), raw...),
		DecodeErr: fmt.Errorf("decoding webhook event %q: %w", id.MessageID, err),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
