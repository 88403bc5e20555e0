package firmware

import (
	"errors"
	"fmt"
)

var ErrInvalidRange = errors.New("invalid firmware range")

// Lowest and Highest bound the version axis, an absent range behaves as [Lowest, Highest].
var (
	Lowest  = Version{}
	Highest = Version{Major: 0xffff, Minor: 0xffff, Patch: 0xffff}
)

// Range is an inclusive firmware version range.
type Range struct {
	Min Version
	Max Version
}

// NewRange parses the bounds of a range. An empty bound is open, taking Lowest or Highest.
func NewRange(lo, hi string) (Range, error) {
	r := Range{Min: Lowest, Max: Highest}

	if lo != "" {
		v, err := Parse(lo)
		if err != nil {
			return Range{}, fmt.Errorf("%w: min: %w", ErrInvalidRange, err)
		}
		r.Min = v
	}

	if hi != "" {
		v, err := Parse(hi)
		if err != nil {
			return Range{}, fmt.Errorf("%w: max: %w", ErrInvalidRange, err)
		}
		r.Max = v
	}

	if r.Max.Less(r.Min) {
		return Range{}, fmt.Errorf("%w: min %s is above max %s", ErrInvalidRange, r.Min, r.Max)
	}

	return r, nil
}

func (r Range) Contains(v Version) bool {
	return r.Min.Compare(v) <= 0 && v.Compare(r.Max) <= 0
}

// Width is the distance between the bounds on the version axis, used to prefer the
// narrowest of several matching ranges.
func (r Range) Width() uint64 {
	return r.Max.ordinal() - r.Min.ordinal()
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max)
}

// Any is the range an entry without a declared firmware range matches with.
func Any() Range {
	return Range{Min: Lowest, Max: Highest}
}
