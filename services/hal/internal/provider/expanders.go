package provider

import (
	"sync"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"

	"tinygo.org/x/drivers"
)

type expKey struct {
	bus  string
	addr uint8
}

// expanders hands out one PCA9685 per (bus, addr) so LEDs sharing a chip
// share its clock accounting.
type expanders struct {
	mu    sync.Mutex
	buses map[string]drivers.I2C
	chips map[expKey]*PCA9685
}

func newExpanders(buses map[string]drivers.I2C) *expanders {
	return &expanders{buses: buses, chips: make(map[expKey]*PCA9685)}
}

func (e *expanders) get(bus string, addr uint8) (rgbled.HAL, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := expKey{bus, addr}
	if c, ok := e.chips[k]; ok {
		return c, nil
	}
	i2c, ok := e.buses[bus]
	if !ok {
		return nil, errcode.UnknownBus
	}
	if addr > 0x7f {
		return nil, errcode.InvalidParams
	}
	c := NewPCA9685(i2c, addr)
	e.chips[k] = c
	return c, nil
}
