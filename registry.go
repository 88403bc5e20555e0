package zwcore

import (
	"context"
	"fmt"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/zwcore/config"
	"github.com/shimmeringbee/zwcore/devices"
	"os"
)

// OpenRegistry builds the device configuration registry from the source selected in cfg. A
// CBOR index is preferred over a directory of source files, the bundled registry is the
// fallback.
func OpenRegistry(pctx context.Context, cfg config.RegistryConfig, lw logwrap.Logger) (*devices.Registry, error) {
	ctx, end := lw.Segment(pctx, "Opening device configuration registry.")
	defer end()

	switch {
	case cfg.Index != "":
		lw.LogInfo(ctx, "Reading device configuration index.", logwrap.Datum("Index", cfg.Index))

		f, err := os.Open(cfg.Index)
		if err != nil {
			return nil, fmt.Errorf("opening registry index: %w", err)
		}
		defer f.Close()

		r, err := devices.ReadIndex(f)
		if err != nil {
			lw.LogError(ctx, "Failed to read device configuration index.", logwrap.Err(err))
			return nil, err
		}

		return r, nil
	case cfg.Path != "":
		loader := &devices.Loader{Logger: lw, Concurrency: cfg.LoadConcurrency}
		return loader.Load(ctx, os.DirFS(cfg.Path))
	case cfg.Bundled:
		return devices.Bundled()
	default:
		return nil, fmt.Errorf("%w: no registry source", config.ErrInvalidConfig)
	}
}

// Lookup resolves the device configuration entry for the given identity, see
// devices.Registry.Lookup.
func (d *Driver) Lookup(manufacturerID, productType, productID uint16, firmwareVersion string) (*devices.Entry, bool) {
	return d.registry.Lookup(manufacturerID, productType, productID, firmwareVersion)
}
