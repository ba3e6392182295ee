package chirp

import "chirpcode-go/errcode"

// Register access. Every call is a single attempt; failures surface to the
// caller, which decides whether to drop the reading for this cycle.

// read16 selects reg, waits ReadSettle, then reads a big-endian word.
// It issues two transactions: write-only then read-only.
func (d *Device) read16(reg byte) (uint16, error) {
	d.w[0] = reg
	if err := d.bus.Tx(uint16(d.addr), d.w[:1], nil); err != nil {
		return 0, errcode.Wrap(errcode.WriteFailed, "select register", err)
	}
	d.sleep(ReadSettle)
	if err := d.bus.Tx(uint16(d.addr), nil, d.r[:2]); err != nil {
		return 0, errcode.Wrap(errcode.ReadFailed, "read register", err)
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

// write8 writes [reg, val] in one transaction.
func (d *Device) write8(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	if err := d.bus.Tx(uint16(d.addr), d.w[:2], nil); err != nil {
		return errcode.Wrap(errcode.WriteFailed, "write register", err)
	}
	return nil
}
