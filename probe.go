package zwcore

import (
	"context"
	"fmt"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/retry"
	"github.com/shimmeringbee/zwcore/nodestatus"
)

// Probe pings a listening node and injects ALIVE on acknowledgement or DEAD once all retries
// are exhausted. Sleeping nodes are not pinged, their current status is returned.
func (d *Driver) Probe(ctx context.Context, id NodeID) (nodestatus.Status, error) {
	n := d.getNode(id)
	if n == nil {
		return nodestatus.Unknown, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	if n.CanSleep() {
		d.logger.LogTrace(ctx, "Not probing sleep capable node.", logwrap.Datum("Node", id))
		return n.Status(), nil
	}

	if d.pinger == nil {
		return n.Status(), ErrNoPinger
	}

	event := nodestatus.EventAlive

	if err := retry.Retry(ctx, d.probeTimeout, d.probeRetries, func(ctx context.Context) error {
		return d.pinger.Ping(ctx, id)
	}); err != nil {
		d.logger.LogWarn(ctx, "Node failed to respond to probe.", logwrap.Datum("Node", id), logwrap.Err(err))
		event = nodestatus.EventDead
	}

	return d.Send(ctx, id, event)
}
