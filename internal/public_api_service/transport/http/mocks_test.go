package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	reportapp "github.com/Code67TechSolutions/infobip-scripts/internal/delivery_report_service/app"
	identityapp "github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/app"
	inboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/inbound_processor_service/app"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	outboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/app"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendSMS(ctx context.Context, cmd outboundapp.SendSMSCommand) (*outboundapp.SendOutcome, error) {
	args := m.Called(ctx, cmd)
	outcome, _ := args.Get(0).(*outboundapp.SendOutcome)
	return outcome, args.Error(1)
}

func (m *MockSender) SendWhatsApp(ctx context.Context, cmd outboundapp.SendWhatsAppCommand) (*outboundapp.SendOutcome, error) {
	args := m.Called(ctx, cmd)
	outcome, _ := args.Get(0).(*outboundapp.SendOutcome)
	return outcome, args.Error(1)
}

func (m *MockSender) SendEmail(ctx context.Context, cmd outboundapp.SendEmailCommand) (*outboundapp.SendOutcome, error) {
	args := m.Called(ctx, cmd)
	outcome, _ := args.Get(0).(*outboundapp.SendOutcome)
	return outcome, args.Error(1)
}

type MockRenewal struct {
	mock.Mock
}

func (m *MockRenewal) Notify(ctx context.Context, cmd outboundapp.RenewalNoticeCommand) (*outboundapp.SendOutcome, error) {
	args := m.Called(ctx, cmd)
	outcome, _ := args.Get(0).(*outboundapp.SendOutcome)
	return outcome, args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) OutboundByMember(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.OutboundMessage, error) {
	args := m.Called(ctx, channel, memberID)
	msgs, _ := args.Get(0).([]ledgerdomain.OutboundMessage)
	return msgs, args.Error(1)
}

func (m *MockHistory) OutboundAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.OutboundMessage, error) {
	args := m.Called(ctx, channel)
	msgs, _ := args.Get(0).([]ledgerdomain.OutboundMessage)
	return msgs, args.Error(1)
}

func (m *MockHistory) InboundAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	msgs, _ := args.Get(0).([]ledgerdomain.InboundMessage)
	return msgs, args.Error(1)
}

func (m *MockHistory) InboundUnresolved(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	msgs, _ := args.Get(0).([]ledgerdomain.InboundMessage)
	return msgs, args.Error(1)
}

func (m *MockHistory) Conversation(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.ConversationEntry, error) {
	args := m.Called(ctx, channel, memberID)
	entries, _ := args.Get(0).([]ledgerdomain.ConversationEntry)
	return entries, args.Error(1)
}

func (m *MockHistory) Logs(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.ConversationEntry, error) {
	args := m.Called(ctx, channel)
	entries, _ := args.Get(0).([]ledgerdomain.ConversationEntry)
	return entries, args.Error(1)
}

type MockBackfill struct {
	mock.Mock
}

func (m *MockBackfill) Run(ctx context.Context, channel ledgerdomain.Channel) (*identityapp.BackfillResult, error) {
	args := m.Called(ctx, channel)
	result, _ := args.Get(0).(*identityapp.BackfillResult)
	return result, args.Error(1)
}

type MockReports struct {
	mock.Mock
}

func (m *MockReports) ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*reportapp.ReconcileSummary, error) {
	args := m.Called(ctx, channel, body)
	summary, _ := args.Get(0).(*reportapp.ReconcileSummary)
	return summary, args.Error(1)
}

type MockInbound struct {
	mock.Mock
}

func (m *MockInbound) ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*inboundapp.IntakeSummary, error) {
	args := m.Called(ctx, channel, body)
	summary, _ := args.Get(0).(*inboundapp.IntakeSummary)
	return summary, args.Error(1)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }
