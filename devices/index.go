package devices

import (
	"fmt"
	"github.com/fxamacker/cbor/v2"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/firmware"
	"io"
	"reflect"
)

// IndexVersion is bumped whenever the layout of the index changes.
const IndexVersion = 1

// The index is a CBOR snapshot of a registry's entries in canonical order, letting a driver
// start without parsing the source files. Reading an index rebuilds it through Build, so a
// corrupt index is as fatal as a corrupt source.

type indexFile struct {
	Version int          `cbor:"1,keyasint"`
	Entries []indexEntry `cbor:"2,keyasint"`
}

type indexEntry struct {
	Filename          string             `cbor:"1,keyasint,omitempty"`
	Manufacturer      string             `cbor:"2,keyasint,omitempty"`
	Label             string             `cbor:"3,keyasint,omitempty"`
	Description       string             `cbor:"4,keyasint,omitempty"`
	ManufacturerID    uint16             `cbor:"5,keyasint"`
	Devices           []indexProduct     `cbor:"6,keyasint"`
	FirmwareMin       string             `cbor:"7,keyasint,omitempty"`
	FirmwareMax       string             `cbor:"8,keyasint,omitempty"`
	If                string             `cbor:"9,keyasint,omitempty"`
	Compat            indexFlags         `cbor:"10,keyasint"`
	ConditionalCompat []indexConditional `cbor:"11,keyasint,omitempty"`
	Metadata          map[string]any     `cbor:"12,keyasint,omitempty"`
}

type indexProduct struct {
	ProductType []uint16 `cbor:"1,keyasint"`
	ProductID   []uint16 `cbor:"2,keyasint"`
}

type indexConditional struct {
	If    string     `cbor:"1,keyasint"`
	Flags indexFlags `cbor:"2,keyasint"`
}

type indexFlags struct {
	Add    map[uint16]indexEndpoints `cbor:"1,keyasint,omitempty"`
	Remove map[uint16]indexEndpoints `cbor:"2,keyasint,omitempty"`
	Extra  map[string]any            `cbor:"3,keyasint,omitempty"`
}

type indexEndpoints struct {
	All       bool    `cbor:"1,keyasint,omitempty"`
	Endpoints []uint8 `cbor:"2,keyasint,omitempty"`
}

var indexEncMode cbor.EncMode
var indexDecMode cbor.DecMode

func init() {
	var err error

	indexEncMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create index CBOR encoder mode: %v", err))
	}

	indexDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create index CBOR decoder mode: %v", err))
	}
}

// WriteIndex writes a snapshot of r to w.
func WriteIndex(w io.Writer, r *Registry) error {
	f := indexFile{Version: IndexVersion, Entries: make([]indexEntry, 0, r.Len())}

	for _, e := range r.entries {
		f.Entries = append(f.Entries, toIndexEntry(e))
	}

	if err := indexEncMode.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("writing device index: %w", err)
	}

	return nil
}

// ReadIndex reads a snapshot written by WriteIndex and builds a registry from it.
func ReadIndex(rd io.Reader) (*Registry, error) {
	var f indexFile

	if err := indexDecMode.NewDecoder(rd).Decode(&f); err != nil {
		return nil, fmt.Errorf("reading device index: %w", err)
	}

	if f.Version != IndexVersion {
		return nil, fmt.Errorf("reading device index: unsupported version %d", f.Version)
	}

	entries := make([]Entry, 0, len(f.Entries))

	for _, ie := range f.Entries {
		e, err := ie.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return Build(entries)
}

func toIndexEntry(e Entry) indexEntry {
	ie := indexEntry{
		Filename:       e.Filename,
		Manufacturer:   e.Manufacturer,
		Label:          e.Label,
		Description:    e.Description,
		ManufacturerID: e.ManufacturerID,
		If:             e.If,
		Compat:         toIndexFlags(e.Compat),
		Metadata:       e.Metadata,
	}

	for _, d := range e.Devices {
		ie.Devices = append(ie.Devices, indexProduct{ProductType: d.ProductType, ProductID: d.ProductID})
	}

	if e.FirmwareVersion != nil {
		ie.FirmwareMin = e.FirmwareVersion.Min.String()
		ie.FirmwareMax = e.FirmwareVersion.Max.String()
	}

	for _, cc := range e.ConditionalCompat {
		ie.ConditionalCompat = append(ie.ConditionalCompat, indexConditional{If: cc.If, Flags: toIndexFlags(cc.Flags)})
	}

	return ie
}

func toIndexFlags(f compat.Flags) indexFlags {
	return indexFlags{
		Add:    toIndexOverrides(f.AddCCs),
		Remove: toIndexOverrides(f.RemoveCCs),
		Extra:  f.Extra,
	}
}

func toIndexOverrides(in map[compat.CommandClass]compat.Override) map[uint16]indexEndpoints {
	if len(in) == 0 {
		return nil
	}

	out := make(map[uint16]indexEndpoints, len(in))

	for cc, o := range in {
		ie := indexEndpoints{All: o.Endpoints.IsAll()}
		for _, ep := range o.Endpoints.Endpoints() {
			ie.Endpoints = append(ie.Endpoints, uint8(ep))
		}
		out[uint16(cc)] = ie
	}

	return out
}

func (ie indexEntry) toEntry() (Entry, error) {
	e := Entry{
		Filename:       ie.Filename,
		Manufacturer:   ie.Manufacturer,
		Label:          ie.Label,
		Description:    ie.Description,
		ManufacturerID: ie.ManufacturerID,
		If:             ie.If,
		Compat:         ie.Compat.toFlags(),
		Metadata:       ie.Metadata,
	}

	for _, d := range ie.Devices {
		e.Devices = append(e.Devices, ProductMatch{ProductType: d.ProductType, ProductID: d.ProductID})
	}

	if ie.FirmwareMin != "" || ie.FirmwareMax != "" {
		r, err := firmware.NewRange(ie.FirmwareMin, ie.FirmwareMax)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, ie.Filename, err)
		}
		e.FirmwareVersion = &r
	}

	for _, cc := range ie.ConditionalCompat {
		e.ConditionalCompat = append(e.ConditionalCompat, ConditionalCompat{If: cc.If, Flags: cc.Flags.toFlags()})
	}

	return e, nil
}

func (f indexFlags) toFlags() compat.Flags {
	return compat.Flags{
		AddCCs:    fromIndexOverrides(f.Add),
		RemoveCCs: fromIndexOverrides(f.Remove),
		Extra:     f.Extra,
	}
}

func fromIndexOverrides(in map[uint16]indexEndpoints) map[compat.CommandClass]compat.Override {
	if len(in) == 0 {
		return nil
	}

	out := make(map[compat.CommandClass]compat.Override, len(in))

	for cc, ie := range in {
		if ie.All {
			out[compat.CommandClass(cc)] = compat.Override{Endpoints: compat.AllEndpoints()}
			continue
		}

		eps := make([]compat.Endpoint, 0, len(ie.Endpoints))
		for _, ep := range ie.Endpoints {
			eps = append(eps, compat.Endpoint(ep))
		}
		out[compat.CommandClass(cc)] = compat.Override{Endpoints: compat.NewEndpointSet(eps...)}
	}

	return out
}
