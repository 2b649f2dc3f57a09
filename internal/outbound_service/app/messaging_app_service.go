package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/provider"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// MessagingProvider is the provider client as used by the send use-cases.
type MessagingProvider interface {
	SendSMS(ctx context.Context, to, text string) (*provider.SendResult, error)
	SendWhatsAppTemplate(ctx context.Context, tmpl provider.WhatsAppTemplate) (*provider.SendResult, error)
	SendWhatsAppText(ctx context.Context, to, text string) (*provider.SendResult, error)
	SendEmail(ctx context.Context, email provider.Email) (*provider.SendResult, error)
}

// SendOutcome is what a send produced: the provider answer and the ledger rows written.
type SendOutcome struct {
	Channel  ledgerdomain.Channel
	Provider *provider.SendResult
	Records  []*ledgerdomain.OutboundMessage
}

// MessagingAppService sends messages and records every attempt in the ledger.
type MessagingAppService struct {
	provider  MessagingProvider
	ledger    ledgerdomain.OutboundRepository
	validator *validator.Validate
	logger    *slog.Logger
}

func NewMessagingAppService(p MessagingProvider, ledger ledgerdomain.OutboundRepository, logger *slog.Logger) *MessagingAppService {
	return &MessagingAppService{
		provider:  p,
		ledger:    ledger,
		validator: validator.New(),
		logger:    logger.With("service", "messaging_app"),
	}
}

// SendSMS always writes exactly one ledger row once validation passes. Provider failures
// leave the provider fields of that row null.
func (s *MessagingAppService) SendSMS(ctx context.Context, cmd SendSMSCommand) (*SendOutcome, error) {
	if err := s.validate(ledgerdomain.ChannelSMS, cmd); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Sending SMS", "to", cmd.To, "member_id", cmd.MemberID)

	start := time.Now()
	result, err := s.provider.SendSMS(ctx, cmd.To, cmd.Text)
	providerRequestDurationHist.WithLabelValues(ledgerdomain.ChannelSMS.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		// The client tolerates provider failures; anything here is local.
		s.logger.ErrorContext(ctx, "SMS send failed before reaching the provider", "to", cmd.To, "error", err)
		result = &provider.SendResult{}
	}

	msg := ledgerdomain.NewOutboundMessage(ledgerdomain.ChannelSMS, cmd.To, cmd.Text, memberRef(cmd.MemberID))
	applySendResult(msg, result.ProviderMessageID(), result.FirstStatus())

	if err := s.ledger.Create(ctx, msg); err != nil {
		sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelSMS.String(), "error_db_save").Inc()
		return nil, apperror.Internal("failed to record sms", err)
	}

	sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelSMS.String(), "success").Inc()
	s.logger.InfoContext(ctx, "SMS recorded", "id", msg.ID, "provider_message_id", msg.ProviderMessageID.String, "transport_code", result.TransportCode)
	return &SendOutcome{Channel: ledgerdomain.ChannelSMS, Provider: result, Records: []*ledgerdomain.OutboundMessage{msg}}, nil
}

// SendWhatsApp writes one ledger row on success and nothing when the provider call fails.
func (s *MessagingAppService) SendWhatsApp(ctx context.Context, cmd SendWhatsAppCommand) (*SendOutcome, error) {
	if err := s.validate(ledgerdomain.ChannelWhatsApp, cmd); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Sending WhatsApp message", "to", cmd.To, "member_id", cmd.MemberID, "template", cmd.TemplateName)

	var (
		result *provider.SendResult
		err    error
		body   string
	)
	start := time.Now()
	if cmd.IsTemplate() {
		body = cmd.TemplateName
		result, err = s.provider.SendWhatsAppTemplate(ctx, provider.WhatsAppTemplate{
			To:           cmd.To,
			TemplateName: cmd.TemplateName,
			Placeholders: cmd.Placeholders,
			Language:     cmd.Language,
		})
	} else {
		body = cmd.Text
		result, err = s.provider.SendWhatsAppText(ctx, cmd.To, cmd.Text)
	}
	providerRequestDurationHist.WithLabelValues(ledgerdomain.ChannelWhatsApp.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelWhatsApp.String(), "error_provider").Inc()
		return nil, upstreamError(ledgerdomain.ChannelWhatsApp, err)
	}

	msg := ledgerdomain.NewOutboundMessage(ledgerdomain.ChannelWhatsApp, cmd.To, body, memberRef(cmd.MemberID))
	applySendResult(msg, result.ProviderMessageID(), result.FirstStatus())

	if err := s.ledger.Create(ctx, msg); err != nil {
		sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelWhatsApp.String(), "error_db_save").Inc()
		return nil, apperror.Internal("failed to record whatsapp message", err)
	}

	sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelWhatsApp.String(), "success").Inc()
	return &SendOutcome{Channel: ledgerdomain.ChannelWhatsApp, Provider: result, Records: []*ledgerdomain.OutboundMessage{msg}}, nil
}

// SendEmail writes one ledger row per message the provider reports, all sharing its bulk id.
func (s *MessagingAppService) SendEmail(ctx context.Context, cmd SendEmailCommand) (*SendOutcome, error) {
	if err := s.validate(ledgerdomain.ChannelEmail, cmd); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Sending email", "to", cmd.To, "member_id", cmd.MemberID)

	start := time.Now()
	result, err := s.provider.SendEmail(ctx, provider.Email{
		To:           cmd.To,
		Subject:      cmd.Subject,
		Text:         cmd.Text,
		HTML:         cmd.HTML,
		Placeholders: cmd.Placeholders,
	})
	providerRequestDurationHist.WithLabelValues(ledgerdomain.ChannelEmail.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelEmail.String(), "error_provider").Inc()
		return nil, upstreamError(ledgerdomain.ChannelEmail, err)
	}

	outcome := &SendOutcome{Channel: ledgerdomain.ChannelEmail, Provider: result}
	for _, sent := range result.Messages {
		msg := ledgerdomain.NewOutboundMessage(ledgerdomain.ChannelEmail, cmd.To, cmd.Text, memberRef(cmd.MemberID))
		msg.BulkID = sql.NullString{String: result.BulkID, Valid: result.BulkID != ""}
		applySendResult(msg, sent.MessageID, sent.Status)
		msg.RawDeliveryReport = sent.Raw

		if err := s.ledger.Create(ctx, msg); err != nil {
			sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelEmail.String(), "error_db_save").Inc()
			return nil, apperror.Internal("failed to record email", err)
		}
		outcome.Records = append(outcome.Records, msg)
	}
	if len(outcome.Records) == 0 {
		s.logger.WarnContext(ctx, "Email provider accepted the request but reported no messages", "to", cmd.To, "bulk_id", result.BulkID)
	}

	sendsProcessedCounter.WithLabelValues(ledgerdomain.ChannelEmail.String(), "success").Inc()
	return outcome, nil
}

func (s *MessagingAppService) validate(channel ledgerdomain.Channel, cmd any) error {
	if err := s.validator.Struct(cmd); err != nil {
		sendsProcessedCounter.WithLabelValues(channel.String(), "error_validation").Inc()
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperror.Validation(validationMessage(fieldErrs[0]))
		}
		return apperror.Validation("invalid request")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	if fe.Tag() == "email" {
		return "recipient must be a valid email address"
	}
	switch fe.Field() {
	case "To":
		return "recipient is required"
	case "MemberID":
		return "member_id is required"
	case "TemplateName", "Text", "HTML":
		return "a template or text content is required"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func upstreamError(channel ledgerdomain.Channel, err error) error {
	var statusErr *provider.UnexpectedStatusError
	if errors.As(err, &statusErr) {
		return apperror.Upstream(fmt.Sprintf("%s provider returned HTTP %d", channel, statusErr.StatusCode), err)
	}
	return apperror.Upstream(fmt.Sprintf("%s provider unreachable", channel), err)
}

func memberRef(memberID int64) sql.NullInt64 {
	return sql.NullInt64{Int64: memberID, Valid: memberID != 0}
}

func applySendResult(msg *ledgerdomain.OutboundMessage, providerMessageID string, status *ledgerdomain.ProviderStatus) {
	msg.ProviderMessageID = sql.NullString{String: providerMessageID, Valid: providerMessageID != ""}
	msg.Status = status.Fields()
}
