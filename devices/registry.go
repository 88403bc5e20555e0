package devices

import (
	"errors"
	"fmt"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/firmware"
)

var ErrInvalidEntry = errors.New("invalid device configuration entry")

// Registry is an immutable index of device configuration entries. It is safe for concurrent
// lookups from any number of goroutines once built.
type Registry struct {
	entries        []Entry
	byManufacturer map[uint16][]int
}

// Build validates and indexes entries. The order of entries is the registry's canonical
// order, later entries win ties during lookup. Any invalid entry fails the whole build.
func Build(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries:        make([]Entry, len(entries)),
		byManufacturer: make(map[uint16][]int),
	}

	for i, e := range entries {
		e.detach()

		if err := prepare(&e); err != nil {
			return nil, fmt.Errorf("%w: %s (#%d): %w", ErrInvalidEntry, e.Filename, i, err)
		}

		r.entries[i] = e
		r.byManufacturer[e.ManufacturerID] = append(r.byManufacturer[e.ManufacturerID], i)
	}

	return r, nil
}

// detach deep copies the mutable parts of an entry so later changes by the caller are not
// visible through the registry.
func (e *Entry) detach() {
	devices := make([]ProductMatch, len(e.Devices))
	for i, d := range e.Devices {
		devices[i] = ProductMatch{
			ProductType: append(Uint16Set{}, d.ProductType...),
			ProductID:   append(Uint16Set{}, d.ProductID...),
		}
	}
	e.Devices = devices

	if e.FirmwareVersion != nil {
		fw := *e.FirmwareVersion
		e.FirmwareVersion = &fw
	}

	e.Compat = detachFlags(e.Compat)

	conditional := make([]ConditionalCompat, len(e.ConditionalCompat))
	for i, cc := range e.ConditionalCompat {
		conditional[i] = ConditionalCompat{If: cc.If, Flags: detachFlags(cc.Flags), condition: cc.condition}
	}
	e.ConditionalCompat = conditional

	e.Metadata = normalizeMap(e.Metadata)
}

func detachFlags(f compat.Flags) compat.Flags {
	f = f.Clone()
	f.Extra = normalizeMap(f.Extra)
	return f
}

// Clone returns a deep copy of the entry, changes to it are not visible to the registry or
// other holders of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	c := *e
	c.detach()

	return &c
}

func prepare(e *Entry) error {
	if len(e.Devices) == 0 {
		return errors.New("no devices declared")
	}

	for i, d := range e.Devices {
		if len(d.ProductType) == 0 {
			return fmt.Errorf("device %d: no product types", i)
		}

		if len(d.ProductID) == 0 {
			return fmt.Errorf("device %d: no product ids", i)
		}
	}

	if e.FirmwareVersion != nil && e.FirmwareVersion.Max.Less(e.FirmwareVersion.Min) {
		return fmt.Errorf("%w: %s", firmware.ErrInvalidRange, e.FirmwareVersion)
	}

	if err := validateFlags(e.Compat); err != nil {
		return err
	}

	var err error

	if e.condition, err = compileCondition(e.If); err != nil {
		return err
	}

	for i := range e.ConditionalCompat {
		cc := &e.ConditionalCompat[i]

		if err := validateFlags(cc.Flags); err != nil {
			return fmt.Errorf("compat block %d: %w", i, err)
		}

		if cc.condition, err = compileCondition(cc.If); err != nil {
			return fmt.Errorf("compat block %d: %w", i, err)
		}
	}

	return nil
}

func validateFlags(f compat.Flags) error {
	for cc, o := range f.AddCCs {
		if o.Endpoints.IsAll() {
			return fmt.Errorf("add command class 0x%02x: endpoint wildcard is only valid for removal", uint16(cc))
		}

		if o.Endpoints.Len() == 0 {
			return fmt.Errorf("add command class 0x%02x: no endpoints", uint16(cc))
		}
	}

	for cc, o := range f.RemoveCCs {
		if !o.Endpoints.IsAll() && o.Endpoints.Len() == 0 {
			return fmt.Errorf("remove command class 0x%02x: no endpoints", uint16(cc))
		}
	}

	return nil
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns copies of all entries in canonical order, with conditional compat blocks
// left unresolved.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))

	for i := range r.entries {
		e := r.entries[i]
		e.detach()
		out[i] = e
	}

	return out
}

// Lookup resolves a node identity to its device configuration entry. Absence of an entry is
// the common case and is not an error. The returned entry is a copy owned by the caller.
func (r *Registry) Lookup(manufacturerID, productType, productID uint16, firmwareVersion string) (*Entry, bool) {
	return r.LookupIdentity(Identity{
		ManufacturerID:  manufacturerID,
		ProductType:     productType,
		ProductID:       productID,
		FirmwareVersion: firmwareVersion,
	})
}

// LookupIdentity filters entries by manufacturer, product, firmware range and condition.
// When several remain the narrowest firmware range wins, then the latest declared entry.
// A firmware version that cannot be parsed only matches entries without a range.
func (r *Registry) LookupIdentity(id Identity) (*Entry, bool) {
	fw, fwErr := firmware.Parse(id.FirmwareVersion)
	env := newConditionEnv(id)

	var best *Entry
	var bestWidth uint64

	for _, idx := range r.byManufacturer[id.ManufacturerID] {
		e := &r.entries[idx]

		if !e.matchesProduct(id.ProductType, id.ProductID) {
			continue
		}

		if e.FirmwareVersion != nil && (fwErr != nil || !e.FirmwareVersion.Contains(fw)) {
			continue
		}

		if !evaluate(e.condition, env) {
			continue
		}

		if width := e.firmwareWidth(); best == nil || width <= bestWidth {
			best = e
			bestWidth = width
		}
	}

	if best == nil {
		return nil, false
	}

	return best.resolve(env), true
}
