// Package labelstore holds persistent label records keyed by name.
//
// Memory works everywhere and backs tests. Flash persists to littlefs on
// MCU flash. Bolt persists to a bbolt file on hosts.
package labelstore

import "sync"

// Memory is an in-process store. Records do not survive a restart.
type Memory struct {
	mu   sync.Mutex
	recs map[string][]byte
}

func NewMemory() *Memory { return &Memory{recs: map[string][]byte{}} }

func (m *Memory) Load(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), rec...), true
}

func (m *Memory) Save(key string, rec []byte) error {
	m.mu.Lock()
	m.recs[key] = append([]byte(nil), rec...)
	m.mu.Unlock()
	return nil
}

// Get is Load without the presence flag.
func (m *Memory) Get(key string) []byte {
	rec, _ := m.Load(key)
	return rec
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for k := range m.recs {
		out = append(out, k)
	}
	return out
}
