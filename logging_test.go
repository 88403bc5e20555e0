package zwcore

import (
	"bytes"
	"context"
	"github.com/shimmeringbee/zwcore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log"
	"testing"
)

func TestDriver_WithGoLogger(t *testing.T) {
	t.Run("node lifecycle is logged to the go logger", func(t *testing.T) {
		buf := &bytes.Buffer{}

		d := newTestDriver(t)
		d.WithGoLogger(log.New(buf, "", 0))

		d.AddNode(context.Background(), 21, false)
		d.RemoveNode(context.Background(), 21)

		assert.Contains(t, buf.String(), "Node added.")
		assert.Contains(t, buf.String(), "Node removed.")
	})

	t.Run("the driver's logger can be used to open a registry", func(t *testing.T) {
		buf := &bytes.Buffer{}

		d := newTestDriver(t)
		d.WithGoLogger(log.New(buf, "", 0))

		dir := t.TempDir()
		_, err := OpenRegistry(context.Background(), config.RegistryConfig{Path: dir}, d.Logger())
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "Loaded device configuration registry.")
	})
}
