package http

import (
	"database/sql"
	"encoding/json"
	"time"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	outboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/app"
)

// WhatsAppSendRequest accepts the provider-shaped body used by existing callers: the
// recipient and template in messages[0], or a flat recipient with content.text.
type WhatsAppSendRequest struct {
	To       string `json:"to"`
	MemberID int64  `json:"member_id"`
	Messages []struct {
		To      string                  `json:"to"`
		Content WhatsAppTemplateContent `json:"content"`
	} `json:"messages"`
	Content struct {
		Text string `json:"text"`
	} `json:"content"`
}

type WhatsAppTemplateContent struct {
	TemplateName string `json:"templateName"`
	TemplateData struct {
		Body struct {
			Placeholders []string `json:"placeholders"`
		} `json:"body"`
	} `json:"templateData"`
	Language string `json:"language"`
}

// Command maps the request to a send command. A template, when present, wins over text.
func (r WhatsAppSendRequest) Command() outboundapp.SendWhatsAppCommand {
	cmd := outboundapp.SendWhatsAppCommand{To: r.To, MemberID: r.MemberID}
	if len(r.Messages) > 0 {
		first := r.Messages[0]
		if first.To != "" {
			cmd.To = first.To
		}
		cmd.TemplateName = first.Content.TemplateName
		cmd.Placeholders = first.Content.TemplateData.Body.Placeholders
		cmd.Language = first.Content.Language
	}
	if cmd.TemplateName == "" {
		cmd.Text = r.Content.Text
	}
	return cmd
}

type EmailSendRequest struct {
	To           string            `json:"to"`
	Subject      string            `json:"subject"`
	Text         string            `json:"text"`
	HTML         string            `json:"html,omitempty"`
	Placeholders map[string]string `json:"placeholders,omitempty"`
	MemberID     int64             `json:"member_id"`
}

type RenewalNoticeRequest struct {
	MobileNumber string `json:"mobile_number"`
	Email        string `json:"email"`
	MemberID     int64  `json:"member_id"`
}

// SendResponse describes a completed send.
type SendResponse struct {
	Channel           string                    `json:"channel"`
	ProviderMessageID *string                   `json:"provider_message_id,omitempty"`
	BulkID            *string                   `json:"bulk_id,omitempty"`
	TransportCode     int                       `json:"transport_code,omitempty"`
	ProviderResponse  json.RawMessage           `json:"provider_response,omitempty"`
	Records           []OutboundMessageResponse `json:"records"`
}

type OutboundMessageResponse struct {
	ID                string     `json:"id"`
	Channel           string     `json:"channel"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty"`
	BulkID            *string    `json:"bulk_id,omitempty"`
	Destination       string     `json:"destination"`
	Body              string     `json:"body"`
	MemberID          *int64     `json:"member_id,omitempty"`
	StatusName        *string    `json:"status_name,omitempty"`
	StatusDescription *string    `json:"status_description,omitempty"`
	StatusGroupID     *int64     `json:"status_group_id,omitempty"`
	StatusGroupName   *string    `json:"status_group_name,omitempty"`
	StatusID          *int64     `json:"status_id,omitempty"`
	SeenAt            *time.Time `json:"seen_at,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type InboundMessageResponse struct {
	ID                string     `json:"id"`
	Channel           string     `json:"channel"`
	ProviderMessageID string     `json:"provider_message_id"`
	PairedMessageID   string     `json:"paired_message_id,omitempty"`
	Sender            string     `json:"sender"`
	MemberID          *int64     `json:"member_id,omitempty"`
	MessageType       string     `json:"message_type"`
	MessageBody       *string    `json:"message_body,omitempty"`
	DisplayBody       string     `json:"display_body"`
	Destination       string     `json:"destination,omitempty"`
	ReceivedAt        *time.Time `json:"received_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type ConversationEntryResponse struct {
	Message     string     `json:"message"`
	Timestamp   time.Time  `json:"timestamp"`
	MemberID    *int64     `json:"member_id,omitempty"`
	Destination string     `json:"destination"`
	Status      *string    `json:"status,omitempty"`
	SeenAt      *time.Time `json:"seen_at,omitempty"`
	Direction   string     `json:"direction"`
}

func toSendResponse(outcome *outboundapp.SendOutcome) SendResponse {
	resp := SendResponse{Channel: outcome.Channel.String(), Records: make([]OutboundMessageResponse, 0, len(outcome.Records))}
	if p := outcome.Provider; p != nil {
		resp.ProviderMessageID = stringPtr(p.ProviderMessageID())
		resp.BulkID = stringPtr(p.BulkID)
		resp.TransportCode = p.TransportCode
		resp.ProviderResponse = p.Payload
	}
	for _, rec := range outcome.Records {
		resp.Records = append(resp.Records, toOutboundResponse(rec))
	}
	return resp
}

func toOutboundResponse(m *ledgerdomain.OutboundMessage) OutboundMessageResponse {
	return OutboundMessageResponse{
		ID:                m.ID.String(),
		Channel:           m.Channel.String(),
		ProviderMessageID: nullStringPtr(m.ProviderMessageID),
		BulkID:            nullStringPtr(m.BulkID),
		Destination:       m.Destination,
		Body:              m.Body,
		MemberID:          nullInt64Ptr(m.MemberID),
		StatusName:        nullStringPtr(m.Status.Name),
		StatusDescription: nullStringPtr(m.Status.Description),
		StatusGroupID:     nullInt64Ptr(m.Status.GroupID),
		StatusGroupName:   nullStringPtr(m.Status.GroupName),
		StatusID:          nullInt64Ptr(m.Status.ID),
		SeenAt:            nullTimePtr(m.SeenAt),
		SentAt:            nullTimePtr(m.SentAt),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toOutboundResponses(msgs []ledgerdomain.OutboundMessage) []OutboundMessageResponse {
	out := make([]OutboundMessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toOutboundResponse(&msgs[i]))
	}
	return out
}

func toInboundResponses(msgs []ledgerdomain.InboundMessage) []InboundMessageResponse {
	out := make([]InboundMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, InboundMessageResponse{
			ID:                m.ID.String(),
			Channel:           m.Channel.String(),
			ProviderMessageID: m.ProviderMessageID,
			PairedMessageID:   m.PairedMessageID,
			Sender:            m.Sender,
			MemberID:          nullInt64Ptr(m.MemberID),
			MessageType:       m.MessageType,
			MessageBody:       nullStringPtr(m.MessageBody),
			DisplayBody:       m.DisplayBody,
			Destination:       m.Destination,
			ReceivedAt:        nullTimePtr(m.ReceivedAt),
			CreatedAt:         m.CreatedAt,
		})
	}
	return out
}

func toConversationResponses(entries []ledgerdomain.ConversationEntry) []ConversationEntryResponse {
	out := make([]ConversationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ConversationEntryResponse{
			Message:     e.Message,
			Timestamp:   e.Timestamp,
			MemberID:    nullInt64Ptr(e.MemberID),
			Destination: e.Destination,
			Status:      nullStringPtr(e.Status),
			SeenAt:      nullTimePtr(e.SeenAt),
			Direction:   string(e.Direction),
		})
	}
	return out
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
