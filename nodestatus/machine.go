package nodestatus

import (
	"sync"
)

// SleepCapability is the live sleep classification of a node, owned by the node management
// layer. It is queried on every guarded transition and never cached.
type SleepCapability interface {
	CanSleep() bool
}

// SleepCapabilityFunc adapts a function to SleepCapability.
type SleepCapabilityFunc func() bool

func (f SleepCapabilityFunc) CanSleep() bool {
	return f()
}

// Machine holds the status of one node for its lifetime in the network. Events sent to a
// single machine are applied in call order, machines of different nodes are independent.
type Machine struct {
	m      *sync.Mutex
	signal SleepCapability
	status Status
}

func NewMachine(signal SleepCapability) *Machine {
	return &Machine{m: &sync.Mutex{}, signal: signal, status: InitialStatus(signal.CanSleep())}
}

// Send applies event and returns the resulting status. Callers detect a change by
// comparing with the status before the call.
func (mc *Machine) Send(event Event) Status {
	mc.m.Lock()
	defer mc.m.Unlock()

	mc.status = Transition(mc.status, event, mc.signal.CanSleep())
	return mc.status
}

// Change is Send, additionally returning the status the event was applied to.
func (mc *Machine) Change(event Event) (Status, Status) {
	mc.m.Lock()
	defer mc.m.Unlock()

	from := mc.status
	mc.status = Transition(mc.status, event, mc.signal.CanSleep())

	return from, mc.status
}

func (mc *Machine) Status() Status {
	mc.m.Lock()
	defer mc.m.Unlock()

	return mc.status
}
