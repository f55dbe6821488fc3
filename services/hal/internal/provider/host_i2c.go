//go:build !rp2040

package provider

import (
	"sync"

	"rgbled-go/errcode"

	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*HostI2C)(nil)

// HostI2C implements tinygo drivers.I2C as a set of 256-byte register files,
// one per attached address. A transaction writes w[1:] from register w[0]
// onwards and then reads len(r) bytes from the same register pointer.
type HostI2C struct {
	mu   sync.Mutex
	devs map[uint16]*[256]byte
	txs  int
}

// NewHostI2C returns a bus with register files attached at addrs.
func NewHostI2C(addrs ...uint16) *HostI2C {
	b := &HostI2C{devs: make(map[uint16]*[256]byte)}
	for _, a := range addrs {
		b.Attach(a)
	}
	return b
}

// Attach adds a zeroed register file at addr.
func (b *HostI2C) Attach(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.devs[addr]; !ok {
		b.devs[addr] = new([256]byte)
	}
}

func (b *HostI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	regs, ok := b.devs[addr]
	if !ok {
		return errcode.Timeout // no ACK
	}
	if len(w) == 0 {
		return nil
	}
	ptr := w[0]
	for _, v := range w[1:] {
		regs[ptr] = v
		ptr++
	}
	if len(r) > 0 {
		ptr = w[0]
		for i := range r {
			r[i] = regs[ptr]
			ptr++
		}
	}
	return nil
}

// Reg returns the current value of reg on addr.
func (b *HostI2C) Reg(addr uint16, reg uint8) (byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs, ok := b.devs[addr]
	if !ok {
		return 0, false
	}
	return regs[reg], true
}

// Transactions reports how many Tx calls the bus has seen.
func (b *HostI2C) Transactions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}
