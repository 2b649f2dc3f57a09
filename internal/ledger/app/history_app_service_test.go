package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

type MockOutboundRepository struct {
	mock.Mock
}

func (m *MockOutboundRepository) Create(ctx context.Context, msg *domain.OutboundMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockOutboundRepository) FindByProviderMessageID(ctx context.Context, channel domain.Channel, id string) (*domain.OutboundMessage, error) {
	args := m.Called(ctx, channel, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboundMessage), args.Error(1)
}

func (m *MockOutboundRepository) UpdateDeliveryStatus(ctx context.Context, channel domain.Channel, id uuid.UUID, status domain.StatusFields, raw json.RawMessage) error {
	return m.Called(ctx, channel, id, status, raw).Error(0)
}

func (m *MockOutboundRepository) UpdateSeenStatus(ctx context.Context, channel domain.Channel, id uuid.UUID, seenAt, sentAt sql.NullTime, raw json.RawMessage) error {
	return m.Called(ctx, channel, id, seenAt, sentAt, raw).Error(0)
}

func (m *MockOutboundRepository) ListByMember(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.OutboundMessage, error) {
	args := m.Called(ctx, channel, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboundMessage), args.Error(1)
}

func (m *MockOutboundRepository) ListAll(ctx context.Context, channel domain.Channel) ([]domain.OutboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboundMessage), args.Error(1)
}

type MockInboundRepository struct {
	mock.Mock
}

func (m *MockInboundRepository) Create(ctx context.Context, msg *domain.InboundMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockInboundRepository) ListByMember(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.InboundMessage, error) {
	args := m.Called(ctx, channel, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) ListUnresolved(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) ListAll(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) AssignMember(ctx context.Context, id uuid.UUID, memberID int64) error {
	return m.Called(ctx, id, memberID).Error(0)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) ConversationHistory(ctx context.Context, channel domain.Channel, memberID sql.NullInt64) ([]domain.ConversationEntry, error) {
	args := m.Called(ctx, channel, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationEntry), args.Error(1)
}

func setupHistoryTest() (*HistoryAppService, *MockOutboundRepository, *MockInboundRepository, *MockConversationRepository) {
	out := new(MockOutboundRepository)
	in := new(MockInboundRepository)
	conv := new(MockConversationRepository)
	svc := NewHistoryAppService(out, in, conv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, out, in, conv
}

func TestHistoryAppService_OutboundByMember(t *testing.T) {
	svc, out, _, _ := setupHistoryTest()
	out.On("ListByMember", mock.Anything, domain.ChannelSMS, int64(42)).
		Return([]domain.OutboundMessage{{Body: "Hi"}}, nil)

	messages, err := svc.OutboundByMember(context.Background(), domain.ChannelSMS, 42)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.OutboundByMember(context.Background(), domain.ChannelSMS, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	out.AssertNumberOfCalls(t, "ListByMember", 1)
}

func TestHistoryAppService_ConversationAndLogs(t *testing.T) {
	svc, _, _, conv := setupHistoryTest()
	conv.On("ConversationHistory", mock.Anything, domain.ChannelWhatsApp, sql.NullInt64{Int64: 5, Valid: true}).
		Return([]domain.ConversationEntry{{Message: "hi", Direction: domain.DirectionInbound}}, nil)
	conv.On("ConversationHistory", mock.Anything, domain.ChannelWhatsApp, sql.NullInt64{}).
		Return(nil, errors.New("timeout"))

	entries, err := svc.Conversation(context.Background(), domain.ChannelWhatsApp, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionInbound, entries[0].Direction)

	_, err = svc.Logs(context.Background(), domain.ChannelWhatsApp)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, "failed to load message logs", apperror.MessageOf(err))
}

func TestHistoryAppService_InboundViews(t *testing.T) {
	svc, _, in, _ := setupHistoryTest()
	in.On("ListAll", mock.Anything, domain.ChannelWhatsApp).Return([]domain.InboundMessage{{Sender: "1"}, {Sender: "2"}}, nil)
	in.On("ListUnresolved", mock.Anything, domain.ChannelWhatsApp).Return([]domain.InboundMessage{{Sender: "2"}}, nil)

	all, err := svc.InboundAll(context.Background(), domain.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unresolved, err := svc.InboundUnresolved(context.Background(), domain.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)
}
