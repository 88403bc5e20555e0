// Package firmware parses and compares the dotted numeric firmware versions reported by
// nodes and declared by device configuration entries.
package firmware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidVersion = errors.New("invalid firmware version")

// Version is a "major.minor[.patch]" firmware version. A missing patch component is 0.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a dotted firmware version. Components are compared numerically, so
// "4.10" is greater than "4.9".
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: %q: expected major.minor[.patch]", ErrInvalidVersion, s)
	}

	var components [3]uint16

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: %q: empty component", ErrInvalidVersion, s)
		}

		v, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
		}

		components[i] = uint16(v)
	}

	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// MustParse is Parse for constants, it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

func (v Version) String() string {
	if v.Patch == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}

	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1 if v is lower than o, 0 if equal and 1 if higher.
func (v Version) Compare(o Version) int {
	switch a, b := v.ordinal(), o.ordinal(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// ordinal places the version on a single numeric axis, used for comparison and range widths.
func (v Version) ordinal() uint64 {
	return uint64(v.Major)<<32 | uint64(v.Minor)<<16 | uint64(v.Patch)
}

// Compare parses and compares two version strings.
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}

	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}

	return va.Compare(vb), nil
}
