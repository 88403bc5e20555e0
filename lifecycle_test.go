package zwcore_test

import (
	"context"
	"github.com/shimmeringbee/zwcore"
	"github.com/shimmeringbee/zwcore/config"
	"github.com/shimmeringbee/zwcore/mocks"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"testing"
	"time"
)

func TestDriver_Start(t *testing.T) {
	t.Run("periodically probes listening nodes until stopped", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		p := &mocks.MockPinger{}
		p.On("Ping", mock.Anything, zwcore.NodeID(6)).Return(nil)

		d := newProbeDriver(t, p)
		d.WithLiveness(config.LivenessConfig{ProbeTimeout: 10 * time.Millisecond, ProbeRetries: 1, ProbeInterval: 5 * time.Millisecond})

		n, _ := d.AddNode(context.Background(), 6, false)
		d.AddNode(context.Background(), 7, true)

		require.NoError(t, d.Start(context.Background()))
		assert.ErrorIs(t, d.Start(context.Background()), zwcore.ErrAlreadyStarted)

		assert.Eventually(t, func() bool {
			return n.Status() == nodestatus.Alive
		}, time.Second, 5*time.Millisecond)

		d.Stop()

		p.AssertNotCalled(t, "Ping", mock.Anything, zwcore.NodeID(7))
	})

	t.Run("does nothing without a probe interval", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		p := &mocks.MockPinger{}

		d := newProbeDriver(t, p)
		d.AddNode(context.Background(), 6, false)

		require.NoError(t, d.Start(context.Background()))
		d.Stop()

		p.AssertNotCalled(t, "Ping", mock.Anything, mock.Anything)
	})
}
