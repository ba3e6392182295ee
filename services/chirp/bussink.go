package chirpsvc

import (
	"time"

	"chirpcode-go/bus"
	"chirpcode-go/types"
	"chirpcode-go/x/conv"
	"chirpcode-go/x/timex"
)

// BusSink publishes channels as retained bus messages:
//
//	chirp/sensor/<kind>/<AA>/info   types.ChannelInfo
//	chirp/sensor/<kind>/<AA>/value  types.Reading
type BusSink struct {
	conn *bus.Connection
	now  func() time.Time
}

func NewBusSink(conn *bus.Connection, now func() time.Time) *BusSink {
	if now == nil {
		now = time.Now
	}
	return &BusSink{conn: conn, now: now}
}

// SensorTopic is the base topic for one channel.
func SensorTopic(k types.Kind, addr uint8) bus.Topic {
	return bus.T("chirp", "sensor", string(k), string(conv.U8Hex(nil, addr)))
}

func (s *BusSink) Announce(info types.ChannelInfo) {
	t := SensorTopic(info.Kind, info.Address).Append("info")
	s.conn.Publish(s.conn.NewMessage(t, info, true))
}

func (s *BusSink) Publish(info types.ChannelInfo, v float32) {
	t := SensorTopic(info.Kind, info.Address).Append("value")
	r := types.Reading{Value: v, TSms: timex.UnixMs(s.now())}
	s.conn.Publish(s.conn.NewMessage(t, r, true))
}

func (s *BusSink) Withdraw(info types.ChannelInfo) {
	base := SensorTopic(info.Kind, info.Address)
	s.conn.Publish(s.conn.NewMessage(base.Append("info"), nil, true))
	s.conn.Publish(s.conn.NewMessage(base.Append("value"), nil, true))
}
