package zwcore

import (
	"context"
	"github.com/shimmeringbee/persistence/impl/memory"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/devices"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDriver_Load(t *testing.T) {
	t.Run("restores nodes with their classification and identity", func(t *testing.T) {
		s := memory.New()

		r, err := devices.Bundled()
		require.NoError(t, err)

		first, err := New(r, s, nil)
		require.NoError(t, err)

		first.AddNode(context.Background(), 3, false)
		first.AddNode(context.Background(), 4, true)
		first.Send(context.Background(), 3, nodestatus.EventAlive)

		identity := devices.Identity{ManufacturerID: 0x019b, ProductType: 0x0003, ProductID: 0x0202, FirmwareVersion: "4.0"}
		interview, err := first.Interview(context.Background(), 3, identity, map[compat.Endpoint][]compat.CommandClass{0: {0x40}, 4: {}})
		require.NoError(t, err)

		second, err := New(r, s, nil)
		require.NoError(t, err)

		second.Load(context.Background())

		n3, found := second.Node(3)
		require.True(t, found)
		assert.False(t, n3.CanSleep())
		assert.Equal(t, nodestatus.Unknown, n3.Status())

		restored, found := n3.Identity()
		assert.True(t, found)
		assert.Equal(t, identity, restored)

		e, found := n3.Entry()
		require.True(t, found)
		assert.Equal(t, "Z-TRM3", e.Label)
		assert.True(t, n3.Supports(2, compat.CommandClass(0x31), false))
		assert.Equal(t, interview.CommandClasses, n3.CommandClasses())

		n4, found := second.Node(4)
		require.True(t, found)
		assert.True(t, n4.CanSleep())
		assert.Equal(t, nodestatus.Asleep, n4.Status())

		_, found = n4.Identity()
		assert.False(t, found)
		assert.Empty(t, n4.CommandClasses())
	})

	t.Run("ignores persisted sections which are not node identifiers", func(t *testing.T) {
		s := memory.New()
		s.Section(nodeSectionKey, "not-a-node").Set(canSleepKey, true)

		r, err := devices.Build(nil)
		require.NoError(t, err)

		d, err := New(r, s, nil)
		require.NoError(t, err)

		d.Load(context.Background())
		assert.Empty(t, d.Nodes())
	})
}
