package zwcore

import (
	"context"
	"errors"
	"github.com/shimmeringbee/logwrap"
)

var ErrAlreadyStarted = errors.New("driver already started")

// Start begins periodic liveness probing of every known node, if a probe interval is
// configured. Sleep capable nodes stay scheduled but are not pinged.
func (d *Driver) Start(ctx context.Context) error {
	d.nodeLock.Lock()

	if d.poller != nil {
		d.nodeLock.Unlock()
		return ErrAlreadyStarted
	}

	if d.probeInterval <= 0 || d.pinger == nil {
		d.nodeLock.Unlock()
		d.logger.LogInfo(ctx, "Periodic liveness probing disabled.")
		return nil
	}

	d.poller = newPoller(d.probeInterval, d.pollNode)
	d.poller.Start()
	d.nodeLock.Unlock()

	d.logger.LogInfo(ctx, "Periodic liveness probing started.", logwrap.Datum("Interval", d.probeInterval.String()))

	for _, n := range d.getNodes() {
		d.schedule(n.id)
	}

	return nil
}

func (d *Driver) Stop() {
	d.nodeLock.Lock()
	p := d.poller
	d.poller = nil
	d.nodeLock.Unlock()

	if p != nil {
		p.Stop()
	}
}

func (d *Driver) schedule(id NodeID) {
	d.nodeLock.RLock()
	defer d.nodeLock.RUnlock()

	if d.poller != nil {
		d.poller.Add(id)
	}
}

func (d *Driver) unschedule(id NodeID) {
	d.nodeLock.RLock()
	defer d.nodeLock.RUnlock()

	if d.poller != nil {
		d.poller.Remove(id)
	}
}

func (d *Driver) pollNode(ctx context.Context, id NodeID) bool {
	if _, err := d.Probe(ctx, id); err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			return false
		}

		d.logger.LogWarn(ctx, "Periodic liveness probe failed.", logwrap.Datum("Node", id), logwrap.Err(err))
	}

	return true
}
