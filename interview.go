package zwcore

import (
	"context"
	"fmt"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/devices"
)

// Interview is the outcome of reconciling a node's reported command classes with the device
// configuration registry.
type Interview struct {
	Identity devices.Identity
	// Entry is nil when no registry entry matched the node.
	Entry *devices.Entry
	// CommandClasses is the reported support table with the entry's overrides applied.
	CommandClasses map[compat.Endpoint][]compat.CommandClass
}

// Interview resolves the node's device configuration entry, records it against the node and
// returns the effective support table. A node without a matching entry keeps what it reported.
func (d *Driver) Interview(pctx context.Context, id NodeID, identity devices.Identity, reported map[compat.Endpoint][]compat.CommandClass) (Interview, error) {
	ctx, end := d.logger.Segment(pctx, "Interviewing node.", logwrap.Datum("Node", id), logwrap.Datum("Identity", identity.String()))
	defer end()

	n := d.getNode(id)
	if n == nil {
		return Interview{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	entry, found := d.registry.LookupIdentity(identity)
	if found {
		d.logger.LogInfo(ctx, "Matched device configuration entry.", logwrap.Datum("Label", entry.Label), logwrap.Datum("File", entry.Filename))
	} else {
		d.logger.LogDebug(ctx, "No device configuration entry matched.")
	}

	result := Interview{
		Identity:       identity,
		Entry:          entry,
		CommandClasses: d.apply(entry, reported),
	}

	n.m.Lock()
	n.identity = &identity
	n.entry = entry.Clone()
	n.supported = result.CommandClasses
	n.m.Unlock()

	storeIdentity(n.section.Section(identitySectionKey), identity)
	storeCommandClasses(n.section, result.CommandClasses)

	return result, nil
}

func (d *Driver) apply(entry *devices.Entry, reported map[compat.Endpoint][]compat.CommandClass) map[compat.Endpoint][]compat.CommandClass {
	if entry == nil {
		return compat.Flags{}.Patch(reported)
	}

	return entry.Compat.Patch(reported)
}
