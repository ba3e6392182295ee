// Package mqttbridge mirrors chirp bus traffic to an MQTT broker:
//
//	chirp/sensor/<kind>/<AA>/info   -> <prefix>/<kind>/<AA>/config  (JSON, retained)
//	chirp/sensor/<kind>/<AA>/value  -> <prefix>/<kind>/<AA>/state   (text, retained)
//	chirp/state                     -> <prefix>/status              (JSON, retained)
//	<prefix>/cmd/<verb>             -> chirp/control/<verb> request
//	                                   reply on <prefix>/cmd/<verb>/result
package mqttbridge

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"chirpcode-go/bus"
	"chirpcode-go/errcode"
	"chirpcode-go/types"
	"chirpcode-go/x/logx"
)

// Handler receives one inbound MQTT message.
type Handler func(topic string, payload []byte)

// Client is the broker side of the bridge. An empty retained payload
// clears a retained topic.
type Client interface {
	Publish(topic string, retained bool, payload []byte) error
	Subscribe(topic string, h Handler) error
}

// CommandTimeout bounds one bus request. A rescan blocks the service for
// the whole sweep.
const CommandTimeout = 30 * time.Second

var (
	topicSensors = bus.T("chirp", "sensor", "#")
	topicState   = bus.T("chirp", "state")
	topicControl = bus.T("chirp", "control")
)

func StatusTopic(prefix string) string { return join(prefix, "status") }

func join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(p)
	}
	return b.String()
}

type Bridge struct {
	conn   *bus.Connection
	mq     Client
	prefix string
	log    logx.Logger

	mu       sync.Mutex
	decimals map[string]int // by "<kind>/<AA>"

	// closed is set under mu once Run stops accepting commands.
	closed bool
	wg     sync.WaitGroup
}

func New(conn *bus.Connection, mq Client, prefix string, log logx.Logger) *Bridge {
	return &Bridge{
		conn:     conn,
		mq:       mq,
		prefix:   prefix,
		log:      logx.Or(log),
		decimals: map[string]int{},
	}
}

// Run bridges until ctx is cancelled. It returns early only if the command
// subscription cannot be made.
func (b *Bridge) Run(ctx context.Context) error {
	sensors := b.conn.Subscribe(topicSensors)
	defer b.conn.Unsubscribe(sensors)
	state := b.conn.Subscribe(topicState)
	defer b.conn.Unsubscribe(state)

	if err := b.mq.Subscribe(join(b.prefix, "cmd", "+"), func(topic string, payload []byte) {
		b.accept(ctx, topic, payload)
	}); err != nil {
		return err
	}
	defer b.drain()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-sensors.Channel():
			if !ok {
				return nil
			}
			b.sensor(m)
		case m, ok := <-state.Channel():
			if !ok {
				return nil
			}
			b.status(m)
		}
	}
}

// ---------------- Outbound ----------------

func (b *Bridge) sensor(m *bus.Message) {
	// chirp/sensor/<kind>/<AA>/<leaf>
	if m.Topic.Len() != 5 {
		return
	}
	kind, _ := m.Topic.At(2).(string)
	addr, _ := m.Topic.At(3).(string)
	leaf, _ := m.Topic.At(4).(string)
	key := kind + "/" + addr

	switch leaf {
	case "info":
		out := join(b.prefix, kind, addr, "config")
		info, ok := m.Payload.(types.ChannelInfo)
		if !ok {
			b.mu.Lock()
			delete(b.decimals, key)
			b.mu.Unlock()
			b.publish(out, true, nil)
			return
		}
		b.mu.Lock()
		b.decimals[key] = info.Decimals
		b.mu.Unlock()
		js, err := json.Marshal(info)
		if err != nil {
			b.log.Errorf("encode %s: %v", out, err)
			return
		}
		b.publish(out, true, js)

	case "value":
		out := join(b.prefix, kind, addr, "state")
		r, ok := m.Payload.(types.Reading)
		if !ok {
			b.publish(out, true, nil)
			return
		}
		b.mu.Lock()
		dec, known := b.decimals[key]
		b.mu.Unlock()
		if !known {
			dec = -1
		}
		b.publish(out, true, []byte(FormatValue(r.Value, dec)))
	}
}

func (b *Bridge) status(m *bus.Message) {
	st, ok := m.Payload.(types.State)
	if !ok {
		return
	}
	js, err := json.Marshal(st)
	if err != nil {
		b.log.Errorf("encode status: %v", err)
		return
	}
	b.publish(StatusTopic(b.prefix), true, js)
}

// FormatValue renders v with dec decimals (-1: shortest). NaN is "nan".
func FormatValue(v float32, dec int) string {
	if math.IsNaN(float64(v)) {
		return "nan"
	}
	return strconv.FormatFloat(float64(v), 'f', dec, 32)
}

func (b *Bridge) publish(topic string, retained bool, payload []byte) {
	if err := b.mq.Publish(topic, retained, payload); err != nil {
		b.log.Warnf("[MQTT] publish %s: %v", topic, err)
	}
}

// ---------------- Inbound ----------------

// accept starts a command unless Run has stopped. The paho handler stays
// registered after Run returns, so Add must not race drain's Wait.
func (b *Bridge) accept(ctx context.Context, topic string, payload []byte) {
	b.mu.Lock()
	if b.closed || ctx.Err() != nil {
		b.mu.Unlock()
		b.log.Warnf("[MQTT] dropping command on %s: bridge stopped", topic)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		b.command(ctx, topic, payload)
	}()
}

func (b *Bridge) drain() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Bridge) command(ctx context.Context, topic string, payload []byte) {
	verb := topic[strings.LastIndexByte(topic, '/')+1:]
	b.log.Infof("[MQTT] command %s", verb)

	var body any
	if len(payload) > 0 {
		body = payload
	}
	rctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	var out any
	reply, err := b.conn.RequestWait(rctx, b.conn.NewMessage(topicControl.Append(verb), body, false))
	if err != nil {
		b.log.Warnf("[MQTT] command %s: %v", verb, err)
		out = types.ErrorReply{Error: string(errcode.Error)}
	} else {
		out = reply.Payload
	}

	js, err := json.Marshal(out)
	if err != nil {
		b.log.Errorf("encode %s result: %v", verb, err)
		return
	}
	b.publish(topic+"/result", false, js)
}
