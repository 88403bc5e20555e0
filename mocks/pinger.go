package mocks

import (
	"context"
	"github.com/shimmeringbee/zwcore"
	"github.com/stretchr/testify/mock"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context, id zwcore.NodeID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ zwcore.Pinger = (*MockPinger)(nil)
