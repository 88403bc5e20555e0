// Package devices resolves the identity of a node to the device configuration entry
// describing known deviations of that device, most importantly the compat flags that
// patch the command classes it reports.
package devices

import (
	"fmt"
	"github.com/antonmedv/expr/vm"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/firmware"
)

// Identity is the tuple a node reports during interview.
type Identity struct {
	ManufacturerID  uint16
	ProductType     uint16
	ProductID       uint16
	FirmwareVersion string
}

func (i Identity) String() string {
	return fmt.Sprintf("%04x:%04x:%04x@%s", i.ManufacturerID, i.ProductType, i.ProductID, i.FirmwareVersion)
}

// Uint16Set is the set of accepted values for an identity field, a single element set is an
// exact match.
type Uint16Set []uint16

func (s Uint16Set) Contains(v uint16) bool {
	for _, straw := range s {
		if straw == v {
			return true
		}
	}

	return false
}

// ProductMatch accepts a product if both its type and id are accepted.
type ProductMatch struct {
	ProductType Uint16Set
	ProductID   Uint16Set
}

func (p ProductMatch) matches(productType, productID uint16) bool {
	return p.ProductType.Contains(productType) && p.ProductID.Contains(productID)
}

// ConditionalCompat is a block of compat flags merged into an entry's flags only when its
// condition holds for the identity being looked up.
type ConditionalCompat struct {
	If    string
	Flags compat.Flags

	condition *vm.Program
}

// Entry is a device configuration record.
type Entry struct {
	// Filename is the source the entry was loaded from, used in errors and logs.
	Filename     string
	Manufacturer string
	Label        string
	Description  string

	ManufacturerID uint16
	Devices        []ProductMatch
	// FirmwareVersion restricts the entry to a firmware range, nil matches any firmware.
	FirmwareVersion *firmware.Range
	// If is an optional expression further restricting the identities the entry matches.
	If string

	Compat            compat.Flags
	ConditionalCompat []ConditionalCompat

	// Metadata holds source data the resolver does not interpret.
	Metadata map[string]any

	condition *vm.Program
}

func (e *Entry) matchesProduct(productType, productID uint16) bool {
	for _, d := range e.Devices {
		if d.matches(productType, productID) {
			return true
		}
	}

	return false
}

// firmwareWidth is the width of the entry's firmware range, an entry without a range is
// as wide as possible.
func (e *Entry) firmwareWidth() uint64 {
	if e.FirmwareVersion == nil {
		return firmware.Any().Width()
	}

	return e.FirmwareVersion.Width()
}

// resolve copies the entry, merging every conditional compat block that holds for env into
// the returned entry's flags.
func (e *Entry) resolve(env conditionEnv) *Entry {
	r := *e
	r.detach()
	r.ConditionalCompat = nil

	for _, cc := range e.ConditionalCompat {
		if evaluate(cc.condition, env) {
			r.Compat = r.Compat.Merge(detachFlags(cc.Flags))
		}
	}

	return &r
}
