package app

// SendSMSCommand is a request to send one SMS.
type SendSMSCommand struct {
	To       string `validate:"required"`
	Text     string `validate:"required"`
	MemberID int64  `validate:"required"`
}

// SendWhatsAppCommand sends a template when TemplateName is set, free text otherwise.
type SendWhatsAppCommand struct {
	To           string `validate:"required"`
	TemplateName string `validate:"required_without=Text"`
	Text         string `validate:"required_without=TemplateName"`
	Placeholders []string
	Language     string
	MemberID     int64 `validate:"required"`
}

// IsTemplate reports whether the template endpoint is used.
func (c SendWhatsAppCommand) IsTemplate() bool {
	return c.TemplateName != ""
}

// SendEmailCommand is a request to send one email.
type SendEmailCommand struct {
	To           string `validate:"required,email"`
	Subject      string
	Text         string `validate:"required_without=HTML"`
	HTML         string
	Placeholders map[string]string
	MemberID     int64 `validate:"required"`
}
