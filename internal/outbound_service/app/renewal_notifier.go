package app

import (
	"context"
	"log/slog"

	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// RenewalConfig holds the fixed content of membership renewal notices. WhatsAppText is
// sent when WhatsAppTemplate is empty.
type RenewalConfig struct {
	WhatsAppTemplate string
	WhatsAppText     string
	EmailSubject     string
	EmailText        string
}

// RenewalNoticeCommand names the member and the addresses a notice may go to.
// MobileNumber takes precedence over Email.
type RenewalNoticeCommand struct {
	MobileNumber string
	Email        string
	MemberID     int64
}

type renewalSender interface {
	SendWhatsApp(ctx context.Context, cmd SendWhatsAppCommand) (*SendOutcome, error)
	SendEmail(ctx context.Context, cmd SendEmailCommand) (*SendOutcome, error)
}

// RenewalNotifier sends membership renewal notices over WhatsApp or email.
type RenewalNotifier struct {
	sender renewalSender
	cfg    RenewalConfig
	logger *slog.Logger
}

func NewRenewalNotifier(sender renewalSender, cfg RenewalConfig, logger *slog.Logger) *RenewalNotifier {
	return &RenewalNotifier{
		sender: sender,
		cfg:    cfg,
		logger: logger.With("service", "renewal_notifier"),
	}
}

// Notify sends one notice. A mobile number gets the WhatsApp template, or WhatsAppText
// when no template is configured. Errors of the underlying send are returned unchanged.
func (n *RenewalNotifier) Notify(ctx context.Context, cmd RenewalNoticeCommand) (*SendOutcome, error) {
	switch {
	case cmd.MobileNumber != "":
		n.logger.InfoContext(ctx, "Sending renewal notice over WhatsApp", "to", cmd.MobileNumber, "member_id", cmd.MemberID)
		return n.sender.SendWhatsApp(ctx, SendWhatsAppCommand{
			To:           cmd.MobileNumber,
			TemplateName: n.cfg.WhatsAppTemplate,
			Text:         n.cfg.WhatsAppText,
			MemberID:     cmd.MemberID,
		})
	case cmd.Email != "":
		n.logger.InfoContext(ctx, "Sending renewal notice by email", "to", cmd.Email, "member_id", cmd.MemberID)
		return n.sender.SendEmail(ctx, SendEmailCommand{
			To:       cmd.Email,
			Subject:  n.cfg.EmailSubject,
			Text:     n.cfg.EmailText,
			MemberID: cmd.MemberID,
		})
	default:
		n.logger.WarnContext(ctx, "Renewal notice without mobile number or email", "member_id", cmd.MemberID)
		return nil, apperror.Validation("a mobile number or email is required")
	}
}
