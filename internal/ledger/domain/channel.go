package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Channel is the provider channel a message travels on.
type Channel string

const (
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
	ChannelEmail    Channel = "EMAIL"
)

// ErrUnknownChannel is returned for channels the ledger has no table for.
var ErrUnknownChannel = errors.New("unknown channel")

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
		return true
	}
	return false
}

func (c Channel) String() string { return string(c) }

// ParseChannel accepts channel names case-insensitively. Provider webhooks spell
// WhatsApp as "WHATSAPP".
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
	return c, nil
}
