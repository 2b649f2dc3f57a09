package app

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/provider"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) result(args mock.Arguments) (*provider.SendResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.SendResult), args.Error(1)
}

func (m *MockProvider) SendSMS(ctx context.Context, to, text string) (*provider.SendResult, error) {
	return m.result(m.Called(ctx, to, text))
}

func (m *MockProvider) SendWhatsAppTemplate(ctx context.Context, tmpl provider.WhatsAppTemplate) (*provider.SendResult, error) {
	return m.result(m.Called(ctx, tmpl))
}

func (m *MockProvider) SendWhatsAppText(ctx context.Context, to, text string) (*provider.SendResult, error) {
	return m.result(m.Called(ctx, to, text))
}

func (m *MockProvider) SendEmail(ctx context.Context, email provider.Email) (*provider.SendResult, error) {
	return m.result(m.Called(ctx, email))
}

type MockOutboundRepository struct {
	mock.Mock
}

func (m *MockOutboundRepository) Create(ctx context.Context, msg *ledgerdomain.OutboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboundRepository) FindByProviderMessageID(ctx context.Context, channel ledgerdomain.Channel, providerMessageID string) (*ledgerdomain.OutboundMessage, error) {
	args := m.Called(ctx, channel, providerMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerdomain.OutboundMessage), args.Error(1)
}

func (m *MockOutboundRepository) UpdateDeliveryStatus(ctx context.Context, channel ledgerdomain.Channel, id uuid.UUID, status ledgerdomain.StatusFields, rawReport json.RawMessage) error {
	args := m.Called(ctx, channel, id, status, rawReport)
	return args.Error(0)
}

func (m *MockOutboundRepository) UpdateSeenStatus(ctx context.Context, channel ledgerdomain.Channel, id uuid.UUID, seenAt, sentAt sql.NullTime, rawReport json.RawMessage) error {
	args := m.Called(ctx, channel, id, seenAt, sentAt, rawReport)
	return args.Error(0)
}

func (m *MockOutboundRepository) ListByMember(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.OutboundMessage, error) {
	args := m.Called(ctx, channel, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerdomain.OutboundMessage), args.Error(1)
}

func (m *MockOutboundRepository) ListAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.OutboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerdomain.OutboundMessage), args.Error(1)
}
