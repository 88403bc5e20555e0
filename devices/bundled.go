package devices

import (
	"context"
	"embed"
	"io/fs"
	"sync"
)

//go:embed bundled
var bundledFS embed.FS

var (
	bundledOnce     sync.Once
	bundledRegistry *Registry
	bundledErr      error
)

// Bundled returns the registry built from the device configuration files shipped with this
// package. It is built on first use and shared afterwards.
func Bundled() (*Registry, error) {
	bundledOnce.Do(func() {
		sub, err := fs.Sub(bundledFS, "bundled")
		if err != nil {
			bundledErr = err
			return
		}

		bundledRegistry, bundledErr = NewLoader().Load(context.Background(), sub)
	})

	return bundledRegistry, bundledErr
}
