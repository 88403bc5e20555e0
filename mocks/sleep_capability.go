package mocks

import (
	"github.com/shimmeringbee/zwcore/nodestatus"
	"github.com/stretchr/testify/mock"
)

type MockSleepCapability struct {
	mock.Mock
}

func (m *MockSleepCapability) CanSleep() bool {
	return m.Called().Bool(0)
}

var _ nodestatus.SleepCapability = (*MockSleepCapability)(nil)
