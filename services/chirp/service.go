package chirpsvc

import (
	"context"
	"encoding/json"
	"time"

	"chirpcode-go/bus"
	"chirpcode-go/errcode"
	"chirpcode-go/types"
	"chirpcode-go/x/logx"
	"chirpcode-go/x/timex"
)

var (
	TopicConfig  = bus.T("config", "chirp")
	TopicState   = bus.T("chirp", "state")
	TopicControl = bus.T("chirp", "control")
)

const (
	VerbSetAddress = "set_address"
	VerbSetLabel   = "set_label"
	VerbRescan     = "rescan"
	VerbDump       = "dump"
)

// DefaultTick is the Loop period, roughly the 50 Hz of a cooperative
// firmware main loop.
const DefaultTick = 20 * time.Millisecond

// Service owns one Manager. It waits for the first config on config/chirp,
// runs Setup, then drives Loop from a ticker. Controls on
// chirp/control/<verb> run synchronously between ticks.
type Service struct {
	conn *bus.Connection
	deps Deps
	tick time.Duration

	mgr      *Manager
	lastSeen int
}

func NewService(conn *bus.Connection, d Deps, tick time.Duration) *Service {
	if tick <= 0 {
		tick = DefaultTick
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Sink == nil {
		d.Sink = NewBusSink(conn, d.Now)
	}
	d.Log = logx.Or(d.Log)
	return &Service{conn: conn, deps: d, tick: tick, lastSeen: -1}
}

// Manager returns the running manager, or nil before configuration.
func (s *Service) Manager() *Manager { return s.mgr }

// Run blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(TopicConfig)
	defer s.conn.Unsubscribe(cfgSub)
	ctlSub := s.conn.Subscribe(TopicControl.Append("+"))
	defer s.conn.Unsubscribe(ctlSub)

	s.publishState("idle", "awaiting_config")

	var tick *time.Ticker
	var tickC <-chan time.Time
	defer func() {
		if tick != nil {
			tick.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "")
			return

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("stopped", "config_subscription_closed")
				return
			}
			if s.mgr != nil {
				s.deps.Log.Warnf("Ignoring config update; configuration is fixed after start")
				continue
			}
			cfg, err := as[types.ChirpConfig](msg.Payload)
			if err != nil {
				s.deps.Log.Errorf("Invalid chirp config: %v", err)
				s.publishState("idle", "config_decode_failed")
				continue
			}
			s.mgr = NewManager(cfg, s.deps)
			s.mgr.Setup()
			tick = time.NewTicker(s.tick)
			tickC = tick.C
			s.publishState("ready", "")

		case msg, ok := <-ctlSub.Channel():
			if !ok {
				s.publishState("stopped", "control_subscription_closed")
				return
			}
			s.handleControl(msg)

		case <-tickC:
			s.mgr.Loop()
			s.publishCount()
		}
	}
}

// ---------------- Controls ----------------

func (s *Service) handleControl(msg *bus.Message) {
	verb, _ := msg.Topic.At(msg.Topic.Len() - 1).(string)
	if s.mgr == nil {
		s.reply(msg, nil, &errcode.E{C: errcode.NotReady, Op: verb})
		return
	}
	body, err := s.dispatch(verb, msg.Payload)
	s.publishCount()
	s.reply(msg, body, err)
}

func (s *Service) dispatch(verb string, payload any) (any, error) {
	switch verb {
	case VerbSetAddress:
		p, err := as[types.SetAddress](payload)
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidPayload, verb, err)
		}
		return nil, s.mgr.SetAddress(p.Old, p.New)

	case VerbSetLabel:
		p, err := as[types.SetLabel](payload)
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidPayload, verb, err)
		}
		return nil, s.mgr.SetLabel(p.Address, p.Label)

	case VerbRescan:
		s.mgr.Rescan()
		return nil, nil

	case VerbDump:
		return s.mgr.Dump(), nil
	}
	return nil, &errcode.E{C: errcode.Unsupported, Op: verb}
}

// reply sends body, or OKReply when body is nil, or ErrorReply when err is set.
func (s *Service) reply(req *bus.Message, body any, err error) {
	if !req.CanReply() {
		return
	}
	switch {
	case err != nil:
		s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(errcode.Of(err))}, false)
	case body != nil:
		s.conn.Reply(req, body, false)
	default:
		s.conn.Reply(req, types.OKReply{OK: true}, false)
	}
}

// ---------------- State ----------------

func (s *Service) publishState(level, status string) {
	st := types.State{Level: level, Status: status, TSms: timex.UnixMs(s.deps.Now())}
	if s.mgr != nil {
		st.Devices = s.mgr.Len()
		s.lastSeen = st.Devices
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, st, true))
}

// publishCount refreshes chirp/state when the tracked count changes.
func (s *Service) publishCount() {
	if s.mgr.Len() != s.lastSeen {
		s.publishState("ready", "")
	}
}

// ---------------- Payload decoding ----------------

// as accepts T, *T, raw JSON bytes, or a generic JSON object.
func as[T any](p any) (T, error) {
	var out T
	switch v := p.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return out, errcode.InvalidPayload
		}
		return *v, nil
	case []byte:
		err := json.Unmarshal(v, &out)
		return out, err
	case string:
		err := json.Unmarshal([]byte(v), &out)
		return out, err
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		err = json.Unmarshal(b, &out)
		return out, err
	default:
		return out, errcode.InvalidPayload
	}
}
