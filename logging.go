package zwcore

import (
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"log"
)

// WithGoLogger routes the driver's node lifecycle, interview and probing logs to a standard
// library logger.
func (d *Driver) WithGoLogger(parentLogger *log.Logger) {
	d.WithLogWrapLogger(logwrap.New(golog.Wrap(parentLogger)))
}

func (d *Driver) WithLogWrapLogger(lw logwrap.Logger) {
	d.logger = lw
}

// Logger returns the driver's logger, so registry loading and other setup performed by the
// caller can log alongside the driver.
func (d *Driver) Logger() logwrap.Logger {
	return d.logger
}
