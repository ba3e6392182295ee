package chirpsvc

import (
	"math"

	"chirpcode-go/types"
)

// Sink receives channel metadata and values. It is the host framework's
// sensor registry; BusSink is the in-tree implementation.
type Sink interface {
	// Announce publishes or refreshes channel metadata under info's key.
	Announce(info types.ChannelInfo)
	// Publish emits one value. NaN means "reading unavailable".
	Publish(info types.ChannelInfo, value float32)
	// Withdraw retires the key held by info.
	Withdraw(info types.ChannelInfo)
}

type kindIndex uint8

const (
	kMoisture kindIndex = iota
	kTemperature
	kLight
	numKinds
)

type kindDesc struct {
	kind     types.Kind
	title    string
	unit     string
	class    string
	icon     string
	decimals int
}

var kindDescs = [numKinds]kindDesc{
	kMoisture:    {types.KindMoisture, "Soil Moisture", "%", "moisture", "mdi:water-percent", 0},
	kTemperature: {types.KindTemperature, "Soil Temperature", "°C", "temperature", "mdi:thermometer", 1},
	kLight:       {types.KindLight, "Soil Light", "lx", "illuminance", "mdi:white-balance-sunny", 0},
}

// ChannelName is "<title> - <device display name>".
func ChannelName(k types.Kind, display string) string {
	for _, s := range kindDescs {
		if s.kind == k {
			return s.title + " - " + display
		}
	}
	return string(k) + " - " + display
}

// Binding holds one optional channel per measurement kind for one device.
// A nil entry means the kind is disabled; nothing is published for it.
type Binding struct {
	ch [numKinds]*types.ChannelInfo
}

func newBinding(addr uint8, display string, enabled [numKinds]bool) Binding {
	var b Binding
	for i, s := range kindDescs {
		if !enabled[i] {
			continue
		}
		b.ch[i] = &types.ChannelInfo{
			Kind:        s.kind,
			Address:     addr,
			Name:        s.title + " - " + display,
			Unit:        s.unit,
			DeviceClass: s.class,
			StateClass:  "measurement",
			Icon:        s.icon,
			Decimals:    s.decimals,
		}
	}
	return b
}

func (b *Binding) announce(s Sink) {
	for _, c := range b.ch {
		if c != nil {
			s.Announce(*c)
		}
	}
}

// rebind moves the binding to addr (a no-op move when unchanged) and
// refreshes every channel name.
func (b *Binding) rebind(s Sink, addr uint8, display string) {
	for i, c := range b.ch {
		if c == nil {
			continue
		}
		if c.Address != addr {
			s.Withdraw(*c)
			c.Address = addr
		}
		c.Name = kindDescs[i].title + " - " + display
		s.Announce(*c)
	}
}

func (b *Binding) publish(s Sink, k kindIndex, v float32) {
	if c := b.ch[k]; c != nil {
		s.Publish(*c, v)
	}
}

// unavailable publishes NaN once per channel, then withdraws it.
func (b *Binding) unavailable(s Sink) {
	nan := float32(math.NaN())
	for _, c := range b.ch {
		if c != nil {
			s.Publish(*c, nan)
			s.Withdraw(*c)
		}
	}
}

// Channels returns copies of the enabled channels in kind order.
func (b *Binding) Channels() []types.ChannelInfo {
	out := make([]types.ChannelInfo, 0, numKinds)
	for _, c := range b.ch {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

type discardSink struct{}

func (discardSink) Announce(types.ChannelInfo)         {}
func (discardSink) Publish(types.ChannelInfo, float32) {}
func (discardSink) Withdraw(types.ChannelInfo)         {}
