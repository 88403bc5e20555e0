package zwcore

import (
	"context"
	"github.com/shimmeringbee/logwrap"
)

// Load restores nodes from persistence. Each node's classification, interviewed identity and
// effective command classes are restored, its status machine starts afresh from the
// restored classification.
func (d *Driver) Load(pctx context.Context) {
	ctx, end := d.logger.Segment(pctx, "Loading persistence.")
	defer end()

	for _, i := range d.nodeListFromPersistence() {
		d.loadNode(ctx, i)
	}
}

func (d *Driver) loadNode(pctx context.Context, i NodeID) {
	ctx, end := d.logger.Segment(pctx, "Loading node data.", logwrap.Datum("Node", i))
	defer end()

	s := d.sectionForNode(i)
	canSleep, _ := s.Bool(canSleepKey)

	n, created := d.createNode(i, canSleep)
	if !created {
		d.logger.LogWarn(ctx, "Node already present, not loading from persistence.")
		return
	}

	if previous, ok := s.String(statusKey); ok {
		d.logger.LogDebug(ctx, "Node status before restart.", logwrap.Datum("Status", previous))
	}

	s.Set(statusKey, n.Status().String())

	identity, ok := loadIdentity(s.Section(identitySectionKey))
	if !ok {
		d.call(ctx, NodeAdded{Node: n})
		d.schedule(i)
		return
	}

	entry, found := d.registry.LookupIdentity(identity)

	n.m.Lock()
	n.identity = &identity
	n.entry = entry
	n.supported = loadCommandClasses(s)
	n.m.Unlock()

	if found {
		d.logger.LogInfo(ctx, "Restored device configuration entry.", logwrap.Datum("Label", entry.Label))
	}

	d.call(ctx, NodeAdded{Node: n})
	d.schedule(i)
}
