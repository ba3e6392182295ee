package chirpsvc

import (
	"time"

	"chirpcode-go/drivers/chirp"
)

// entry is one tracked device with its telemetry binding and light timer.
type entry struct {
	dev  *chirp.Device
	bind Binding

	lightPending bool
	lightAt      time.Time
}

// trackedSet is an address-indexed arena plus discovery order.
// Slots are bounded by the 7-bit address space.
type trackedSet struct {
	slots [chirp.AddressMax + 1]*entry
	order []*entry
}

func (t *trackedSet) get(addr uint8) *entry {
	if int(addr) >= len(t.slots) {
		return nil
	}
	return t.slots[addr]
}

func (t *trackedSet) add(e *entry) {
	t.slots[e.dev.Address()] = e
	t.order = append(t.order, e)
}

func (t *trackedSet) remove(e *entry) {
	if t.slots[e.dev.Address()] == e {
		t.slots[e.dev.Address()] = nil
	}
	for i, x := range t.order {
		if x == e {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// move re-keys e after its device address changed from old.
func (t *trackedSet) move(e *entry, old uint8) {
	if t.slots[old] == e {
		t.slots[old] = nil
	}
	t.slots[e.dev.Address()] = e
}

func (t *trackedSet) len() int { return len(t.order) }
