package nodestatus_test

import (
	"github.com/shimmeringbee/zwcore/mocks"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMachine_SleepCapability(t *testing.T) {
	t.Run("consults the sleep capability at construction and on every event", func(t *testing.T) {
		sc := &mocks.MockSleepCapability{}
		defer sc.AssertExpectations(t)

		sc.On("CanSleep").Return(false).Times(3)

		mc := nodestatus.NewMachine(sc)
		assert.Equal(t, nodestatus.Unknown, mc.Status())

		assert.Equal(t, nodestatus.Alive, mc.Send(nodestatus.EventAlive))
		assert.Equal(t, nodestatus.Alive, mc.Send(nodestatus.EventAsleep))
	})

	t.Run("a classification change between events is honoured by the next event", func(t *testing.T) {
		sc := &mocks.MockSleepCapability{}
		defer sc.AssertExpectations(t)

		sc.On("CanSleep").Return(false).Twice()
		sc.On("CanSleep").Return(true).Once()

		mc := nodestatus.NewMachine(sc)
		mc.Send(nodestatus.EventAlive)

		assert.Equal(t, nodestatus.Asleep, mc.Send(nodestatus.EventAsleep))
	})
}
