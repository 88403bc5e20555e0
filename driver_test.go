package zwcore

import (
	"context"
	"github.com/shimmeringbee/persistence/impl/memory"
	"github.com/shimmeringbee/zwcore/devices"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()

	r, err := devices.Bundled()
	require.NoError(t, err)

	d, err := New(r, memory.New(), nil)
	require.NoError(t, err)

	return d
}

func TestNew(t *testing.T) {
	t.Run("refuses to construct without a registry", func(t *testing.T) {
		d, err := New(nil, memory.New(), nil)
		assert.ErrorIs(t, err, ErrNoRegistry)
		assert.Nil(t, d)
	})

	t.Run("constructs with in memory persistence if none is provided", func(t *testing.T) {
		r, err := devices.Build(nil)
		require.NoError(t, err)

		d, err := New(r, nil, nil)
		require.NoError(t, err)

		_, created := d.AddNode(context.Background(), 1, false)
		assert.True(t, created)
	})
}

func TestDriver_AddNode(t *testing.T) {
	t.Run("a sleep capable node starts asleep", func(t *testing.T) {
		d := newTestDriver(t)

		n, created := d.AddNode(context.Background(), 5, true)
		assert.True(t, created)
		assert.Equal(t, nodestatus.Asleep, n.Status())
		assert.Equal(t, NodeID(5), n.ID())
	})

	t.Run("a listening node starts unknown", func(t *testing.T) {
		d := newTestDriver(t)

		n, _ := d.AddNode(context.Background(), 5, false)
		assert.Equal(t, nodestatus.Unknown, n.Status())
	})

	t.Run("adding a known node returns the existing node", func(t *testing.T) {
		d := newTestDriver(t)

		first, _ := d.AddNode(context.Background(), 5, false)
		second, created := d.AddNode(context.Background(), 5, true)

		assert.False(t, created)
		assert.Same(t, first, second)
		assert.False(t, second.CanSleep())
	})

	t.Run("persists the classification of the node", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 12, true)

		canSleep, ok := d.sectionForNode(12).Bool(canSleepKey)
		assert.True(t, ok)
		assert.True(t, canSleep)

		status, _ := d.sectionForNode(12).String(statusKey)
		assert.Equal(t, "asleep", status)
	})

	t.Run("calls node added callbacks", func(t *testing.T) {
		d := newTestDriver(t)

		var added []NodeID
		d.Callbacks().Add(func(ctx context.Context, e NodeAdded) error {
			added = append(added, e.Node.ID())
			return nil
		})

		d.AddNode(context.Background(), 3, false)
		d.AddNode(context.Background(), 3, false)

		assert.Equal(t, []NodeID{3}, added)
	})
}

func TestDriver_RemoveNode(t *testing.T) {
	t.Run("removes the node and its persisted data", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 7, false)

		assert.True(t, d.RemoveNode(context.Background(), 7))

		_, found := d.Node(7)
		assert.False(t, found)
		assert.NotContains(t, d.section.Section(nodeSectionKey).SectionKeys(), "7")

		_, err := d.Send(context.Background(), 7, nodestatus.EventAlive)
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("returns false for an unknown node", func(t *testing.T) {
		d := newTestDriver(t)
		assert.False(t, d.RemoveNode(context.Background(), 7))
	})
}

func TestDriver_Send(t *testing.T) {
	t.Run("returns an error for an unknown node", func(t *testing.T) {
		d := newTestDriver(t)

		status, err := d.Send(context.Background(), 99, nodestatus.EventAlive)
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.Equal(t, nodestatus.Unknown, status)
	})

	t.Run("applies events to the node's status", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 2, false)

		status, err := d.Send(context.Background(), 2, nodestatus.EventAlive)
		require.NoError(t, err)
		assert.Equal(t, nodestatus.Alive, status)

		status, err = d.Send(context.Background(), 2, nodestatus.EventDead)
		require.NoError(t, err)
		assert.Equal(t, nodestatus.Dead, status)

		persisted, _ := d.sectionForNode(2).String(statusKey)
		assert.Equal(t, "dead", persisted)
	})

	t.Run("a node reclassified as sleep capable while alive goes asleep", func(t *testing.T) {
		d := newTestDriver(t)
		n, _ := d.AddNode(context.Background(), 2, false)

		d.Send(context.Background(), 2, nodestatus.EventAlive)

		status, _ := d.Send(context.Background(), 2, nodestatus.EventAsleep)
		assert.Equal(t, nodestatus.Alive, status)

		n.SetCanSleep(true)

		status, _ = d.Send(context.Background(), 2, nodestatus.EventAsleep)
		assert.Equal(t, nodestatus.Asleep, status)

		canSleep, _ := d.sectionForNode(2).Bool(canSleepKey)
		assert.True(t, canSleep)
	})

	t.Run("status callbacks are only called when the status changes", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 2, true)

		var changes []NodeStatusChanged
		d.Callbacks().Add(func(ctx context.Context, e NodeStatusChanged) error {
			changes = append(changes, e)
			return nil
		})

		d.Send(context.Background(), 2, nodestatus.EventAsleep)
		d.Send(context.Background(), 2, nodestatus.EventAwake)
		d.Send(context.Background(), 2, nodestatus.EventAwake)
		d.Send(context.Background(), 2, nodestatus.EventAlive)

		require.Len(t, changes, 1)
		assert.Equal(t, NodeID(2), changes[0].Node.ID())
		assert.Equal(t, nodestatus.Asleep, changes[0].From)
		assert.Equal(t, nodestatus.Awake, changes[0].To)
	})

	t.Run("nodes are independent under concurrent events", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 1, false)
		d.AddNode(context.Background(), 2, true)

		wg := &sync.WaitGroup{}

		for i := 0; i < 50; i++ {
			wg.Add(2)

			go func() {
				defer wg.Done()
				d.Send(context.Background(), 1, nodestatus.EventAlive)
			}()

			go func() {
				defer wg.Done()
				d.Send(context.Background(), 2, nodestatus.EventAwake)
			}()
		}

		wg.Wait()

		n1, _ := d.Node(1)
		n2, _ := d.Node(2)

		assert.Equal(t, nodestatus.Alive, n1.Status())
		assert.Equal(t, nodestatus.Awake, n2.Status())
	})
}

func TestDriver_Nodes(t *testing.T) {
	t.Run("returns nodes ordered by identifier", func(t *testing.T) {
		d := newTestDriver(t)
		d.AddNode(context.Background(), 9, false)
		d.AddNode(context.Background(), 1, false)
		d.AddNode(context.Background(), 4, true)

		var ids []NodeID
		for _, n := range d.Nodes() {
			ids = append(ids, n.ID())
		}

		assert.Equal(t, []NodeID{1, 4, 9}, ids)
	})
}
