package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
)

type MockMemberDirectory struct {
	mock.Mock
}

func (m *MockMemberDirectory) Snapshot(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

type MockInboundRepository struct {
	mock.Mock
}

func (m *MockInboundRepository) Create(ctx context.Context, msg *ledgerdomain.InboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockInboundRepository) ListByMember(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.InboundMessage, error) {
	args := m.Called(ctx, channel, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerdomain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) ListUnresolved(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerdomain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) ListAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerdomain.InboundMessage), args.Error(1)
}

func (m *MockInboundRepository) AssignMember(ctx context.Context, id uuid.UUID, memberID int64) error {
	args := m.Called(ctx, id, memberID)
	return args.Error(0)
}
