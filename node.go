package zwcore

import (
	"github.com/shimmeringbee/persistence"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/devices"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"strconv"
	"sync"
)

// NodeID is the network assigned identifier of a node.
type NodeID uint16

func (i NodeID) String() string {
	return strconv.Itoa(int(i))
}

type Node struct {
	// Immutable data.
	id      NodeID
	m       *sync.RWMutex
	section persistence.Section

	// Thread safe data.
	machine *nodestatus.Machine

	// Mutable data, obtain lock first.
	canSleep  bool
	identity  *devices.Identity
	entry     *devices.Entry
	supported map[compat.Endpoint][]compat.CommandClass
}

var _ nodestatus.SleepCapability = (*Node)(nil)

func newNode(id NodeID, canSleep bool, section persistence.Section) *Node {
	n := &Node{
		id:       id,
		m:        &sync.RWMutex{},
		section:  section,
		canSleep: canSleep,
	}

	n.machine = nodestatus.NewMachine(n)
	return n
}

func (n *Node) ID() NodeID {
	return n.id
}

// CanSleep reports the node's current classification, it is read by the status machine on
// every transition.
func (n *Node) CanSleep() bool {
	n.m.RLock()
	defer n.m.RUnlock()

	return n.canSleep
}

// SetCanSleep corrects the node's classification. The current status is left untouched, the
// next injected event is evaluated against the new classification.
func (n *Node) SetCanSleep(canSleep bool) {
	n.m.Lock()
	n.canSleep = canSleep
	n.m.Unlock()

	n.section.Set(canSleepKey, canSleep)
}

func (n *Node) Status() nodestatus.Status {
	return n.machine.Status()
}

// Identity returns the identity recorded by the last interview.
func (n *Node) Identity() (devices.Identity, bool) {
	n.m.RLock()
	defer n.m.RUnlock()

	if n.identity == nil {
		return devices.Identity{}, false
	}

	return *n.identity, true
}

// Entry returns a copy of the device configuration entry resolved by the last interview.
func (n *Node) Entry() (*devices.Entry, bool) {
	n.m.RLock()
	defer n.m.RUnlock()

	return n.entry.Clone(), n.entry != nil
}

// Supports reports whether the node supports cc on ep once the compatibility overrides of its
// resolved entry are applied to the device's own claim.
func (n *Node) Supports(ep compat.Endpoint, cc compat.CommandClass, reported bool) bool {
	n.m.RLock()
	defer n.m.RUnlock()

	if n.entry == nil {
		return reported
	}

	return n.entry.Compat.Supports(ep, cc, reported)
}

// CommandClasses returns the effective support table produced by the last interview.
func (n *Node) CommandClasses() map[compat.Endpoint][]compat.CommandClass {
	n.m.RLock()
	defer n.m.RUnlock()

	out := make(map[compat.Endpoint][]compat.CommandClass, len(n.supported))
	for ep, ccs := range n.supported {
		out[ep] = make([]compat.CommandClass, len(ccs))
		copy(out[ep], ccs)
	}

	return out
}
