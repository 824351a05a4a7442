package adc

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// periphBus adapts a periph I2C bus to the drivers.I2C interface.
type periphBus struct {
	bus i2c.Bus
}

func (p periphBus) Tx(addr uint16, w, r []byte) error {
	return p.bus.Tx(addr, w, r)
}

var _ drivers.I2C = periphBus{}

// OpenI2C initialises the host drivers and opens the named bus (e.g. "1"
// for /dev/i2c-1). The returned closer releases the bus.
func OpenI2C(name string) (drivers.I2C, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c: %w", err)
	}
	return periphBus{bus: bus}, bus, nil
}
