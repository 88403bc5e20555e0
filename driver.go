package zwcore

import (
	"context"
	"errors"
	"fmt"
	"github.com/shimmeringbee/callbacks"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/discard"
	"github.com/shimmeringbee/persistence"
	"github.com/shimmeringbee/persistence/impl/memory"
	"github.com/shimmeringbee/zwcore/config"
	"github.com/shimmeringbee/zwcore/devices"
	"github.com/shimmeringbee/zwcore/nodestatus"
	"sync"
	"time"
)

var (
	ErrNoRegistry   = errors.New("no device configuration registry")
	ErrNodeNotFound = errors.New("node not found")
	ErrNoPinger     = errors.New("no pinger configured")
)

const (
	DefaultProbeTimeout = 3 * time.Second
	DefaultProbeRetries = 3
)

// Pinger sends a no-operation frame to a node and waits for its acknowledgement.
type Pinger interface {
	Ping(context.Context, NodeID) error
}

type Driver struct {
	logger    logwrap.Logger
	section   persistence.Section
	registry  *devices.Registry
	pinger    Pinger
	callbacks callbacks.AdderCaller

	probeTimeout  time.Duration
	probeRetries  int
	probeInterval time.Duration

	nodeLock *sync.RWMutex
	nodes    map[NodeID]*Node
	poller   *poller
}

// New constructs a driver over an already built registry. Node classifications are persisted
// into s, the pinger may be nil if liveness probing is not used.
func New(registry *devices.Registry, s persistence.Section, p Pinger) (*Driver, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}

	if s == nil {
		s = memory.New()
	}

	return &Driver{
		logger:       logwrap.New(discard.Discard()),
		section:      s,
		registry:     registry,
		pinger:       p,
		callbacks:    callbacks.Create(),
		probeTimeout: DefaultProbeTimeout,
		probeRetries: DefaultProbeRetries,
		nodeLock:     &sync.RWMutex{},
		nodes:        make(map[NodeID]*Node),
	}, nil
}

// NewFromConfig opens the registry named by cfg and constructs a driver from it, logging to lw.
// When persistence is disabled the driver keeps its state in memory and s is ignored.
func NewFromConfig(ctx context.Context, cfg *config.Config, s persistence.Section, p Pinger, lw logwrap.Logger) (*Driver, error) {
	registry, err := OpenRegistry(ctx, cfg.Registry, lw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRegistry, err)
	}

	if !cfg.Persistence.Enabled {
		s = memory.New()
	}

	d, err := New(registry, s, p)
	if err != nil {
		return nil, err
	}

	d.WithLogWrapLogger(lw)
	d.WithLiveness(cfg.Liveness)

	return d, nil
}

func (d *Driver) WithLiveness(cfg config.LivenessConfig) {
	if cfg.ProbeTimeout > 0 {
		d.probeTimeout = cfg.ProbeTimeout
	}

	if cfg.ProbeRetries > 0 {
		d.probeRetries = cfg.ProbeRetries
	}

	d.probeInterval = cfg.ProbeInterval
}

// Callbacks allows registration of functions to receive NodeAdded, NodeRemoved and
// NodeStatusChanged events.
func (d *Driver) Callbacks() callbacks.Adder {
	return d.callbacks
}

func (d *Driver) Registry() *devices.Registry {
	return d.registry
}

func (d *Driver) Node(id NodeID) (*Node, bool) {
	n := d.getNode(id)
	return n, n != nil
}

func (d *Driver) Nodes() []*Node {
	return d.getNodes()
}

// AddNode records a newly discovered node. The node's status machine is created and resolved
// from its classification immediately. If the node is already known it is returned as is.
func (d *Driver) AddNode(ctx context.Context, id NodeID, canSleep bool) (*Node, bool) {
	n, created := d.createNode(id, canSleep)
	if !created {
		return n, false
	}

	n.section.Set(canSleepKey, canSleep)
	n.section.Set(statusKey, n.Status().String())

	d.logger.LogInfo(ctx, "Node added.", logwrap.Datum("Node", id), logwrap.Datum("CanSleep", canSleep), logwrap.Datum("Status", n.Status().String()))
	d.call(ctx, NodeAdded{Node: n})
	d.schedule(id)

	return n, true
}

// RemoveNode forgets the node, its status machine and everything persisted for it.
func (d *Driver) RemoveNode(ctx context.Context, id NodeID) bool {
	n, found := d.removeNode(id)
	if !found {
		return false
	}

	d.unschedule(id)
	d.sectionRemoveNode(id)

	d.logger.LogInfo(ctx, "Node removed.", logwrap.Datum("Node", id))
	d.call(ctx, NodeRemoved{Node: n})

	return true
}

// Send injects a liveness event into the node's status machine and returns the resulting
// status. Events which have no transition from the current status are ignored.
func (d *Driver) Send(ctx context.Context, id NodeID, event nodestatus.Event) (nodestatus.Status, error) {
	n := d.getNode(id)
	if n == nil {
		return nodestatus.Unknown, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	from, to := n.machine.Change(event)

	if from == to {
		d.logger.LogTrace(ctx, "Node status event had no effect.", logwrap.Datum("Node", id), logwrap.Datum("Event", event.String()), logwrap.Datum("Status", to.String()))
		return to, nil
	}

	n.section.Set(statusKey, to.String())

	d.logger.LogDebug(ctx, "Node status changed.", logwrap.Datum("Node", id), logwrap.Datum("Event", event.String()), logwrap.Datum("From", from.String()), logwrap.Datum("To", to.String()))
	d.call(ctx, NodeStatusChanged{Node: n, From: from, To: to})

	return to, nil
}

func (d *Driver) call(ctx context.Context, event any) {
	if err := d.callbacks.Call(ctx, event); err != nil {
		d.logger.LogError(ctx, "Failed calling node callback.", logwrap.Err(err), logwrap.Datum("Event", fmt.Sprintf("%T", event)))
	}
}
