package firmware

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("parses major and minor, defaulting patch to zero", func(t *testing.T) {
		v, err := Parse("4.0")
		require.NoError(t, err)
		assert.Equal(t, Version{Major: 4, Minor: 0, Patch: 0}, v)
	})

	t.Run("parses a patch component", func(t *testing.T) {
		v, err := Parse("1.12.3")
		require.NoError(t, err)
		assert.Equal(t, Version{Major: 1, Minor: 12, Patch: 3}, v)
	})

	t.Run("rejects malformed versions", func(t *testing.T) {
		for _, s := range []string{"", "4", "4.", ".4", "a.b", "1.2.3.4", "4.-1", "70000.1"} {
			_, err := Parse(s)
			assert.ErrorIs(t, err, ErrInvalidVersion, s)
		}
	})
}

func TestVersion_Compare(t *testing.T) {
	t.Run("compares numerically rather than lexically", func(t *testing.T) {
		assert.Equal(t, 1, MustParse("4.10").Compare(MustParse("4.9")))
		assert.Equal(t, -1, MustParse("4.9").Compare(MustParse("4.10")))
	})

	t.Run("a missing patch equals an explicit zero patch", func(t *testing.T) {
		assert.Equal(t, 0, MustParse("4.0").Compare(MustParse("4.0.0")))
	})

	t.Run("patch breaks ties between equal major and minor", func(t *testing.T) {
		assert.True(t, MustParse("4.0").Less(MustParse("4.0.1")))
	})

	t.Run("major dominates minor", func(t *testing.T) {
		assert.True(t, MustParse("3.255").Less(MustParse("4.0")))
	})
}

func TestCompare(t *testing.T) {
	t.Run("compares two strings", func(t *testing.T) {
		c, err := Compare("2.1", "2.01")
		assert.NoError(t, err)
		assert.Equal(t, 0, c)
	})

	t.Run("returns an error if either side is invalid", func(t *testing.T) {
		_, err := Compare("2.1", "x")
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})
}

func TestVersion_String(t *testing.T) {
	t.Run("omits a zero patch", func(t *testing.T) {
		assert.Equal(t, "4.0", MustParse("4.0.0").String())
		assert.Equal(t, "4.0.2", MustParse("4.0.2").String())
	})
}
