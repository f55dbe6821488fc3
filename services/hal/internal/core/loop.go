package core

import (
	"context"

	"rgbled-go/bus"
	"rgbled-go/errcode"
	"rgbled-go/syspm"
	"rgbled-go/types"
	"rgbled-go/x/timex"
)

const (
	eventQueueLen = 16
	defaultDomain = "io"
)

type devEntry struct {
	dev  Device
	caps []CapAddr
}

type HAL struct {
	conn *bus.Connection
	res  Resources

	// Device registry
	dev map[string]devEntry // devID -> device

	// Capability index: addr -> devID
	capIndex map[CapAddr]string

	cfgSub   *bus.Subscription
	ctrlSub  *bus.Subscription
	powerSub *bus.Subscription

	// Single-threaded publication of device events
	evCh chan Event
}

func NewHAL(conn *bus.Connection, res Resources) *HAL {
	h := &HAL{
		conn:     conn,
		res:      res,
		dev:      map[string]devEntry{},
		capIndex: map[CapAddr]string{},
		evCh:     make(chan Event, eventQueueLen),
	}
	// HAL provides the emitter to devices.
	h.res.Pub = h
	return h
}

func (h *HAL) Run(ctx context.Context) {
	h.cfgSub = h.conn.Subscribe(topicConfigHAL())
	h.ctrlSub = h.conn.Subscribe(ctrlWildcard())
	h.powerSub = h.conn.Subscribe(powerCtrlWildcard())
	defer h.conn.Unsubscribe(h.cfgSub)
	defer h.conn.Unsubscribe(h.ctrlSub)
	defer h.conn.Unsubscribe(h.powerSub)

	for _, typ := range Builders() {
		println("[hal] builder:", typ)
	}
	h.pubHALState("idle", "awaiting_config")
	ready := false
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.pubHALState("stopped", "context_cancelled")
			return
		case msg := <-h.cfgSub.Channel():
			v, ok := msg.Payload.(types.HALConfig)
			if !ok {
				println("[hal] ignoring config of unexpected type")
				continue
			}
			h.applyConfig(ctx, v)
			if !ready {
				ready = true
				h.pubHALState("ready", "")
			}
		case m := <-h.ctrlSub.Channel():
			if !ready {
				// Reject controls until HAL has a configuration.
				h.replyErr(m, errcode.HALNotReady)
				continue
			}
			h.handleControl(m)
		case m := <-h.powerSub.Channel():
			if !ready {
				h.replyErr(m, errcode.HALNotReady)
				continue
			}
			h.handlePower(m)
		case ev := <-h.evCh:
			// All device→HAL telemetry is published from this goroutine.
			h.handleEvent(ev)
		}
	}
}

// applyConfig builds devices that are new, and closes devices the config no
// longer lists. Devices already running are left untouched.
func (h *HAL) applyConfig(ctx context.Context, cfg types.HALConfig) {
	want := make(map[string]struct{}, len(cfg.Devices))
	for i := range cfg.Devices {
		want[cfg.Devices[i].ID] = struct{}{}
	}
	for id := range h.dev {
		if _, keep := want[id]; !keep {
			h.removeDevice(id)
		}
	}

	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			println("[hal] no builder for type:", dc.Type, "id:", dc.ID)
			continue
		}
		dev, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			Res:    h.res,
		})
		if err != nil {
			println("[hal] build failed for:", dc.ID, "err:", err.Error())
			continue
		}
		if clash, ok := h.claimedCap(dev); ok {
			println("[hal] capability already registered:", clash.Kind, clash.Name, "id:", dc.ID)
			continue
		}
		if err := dev.Init(ctx); err != nil {
			println("[hal] init failed for:", dc.ID, "err:", err.Error())
			continue
		}
		h.addDevice(dev)
	}
}

func (h *HAL) addDevice(dev Device) {
	e := devEntry{dev: dev}
	for _, cs := range dev.Capabilities() {
		a := resolveAddr(cs, dev.ID())
		e.caps = append(e.caps, a)
		h.capIndex[a] = dev.ID()

		h.conn.Publish(h.conn.NewMessage(capInfo(a), cs.Info, true))
		// Initial status (retained); the device's first event brings it up.
		h.conn.Publish(h.conn.NewMessage(
			capStatus(a),
			types.CapabilityStatus{Link: types.LinkDown, TS: timex.NowMs()},
			true,
		))
	}
	h.dev[dev.ID()] = e
	println("[hal] device up:", dev.ID())
}

// removeDevice closes the device and clears its retained topics.
func (h *HAL) removeDevice(id string) {
	e, ok := h.dev[id]
	if !ok {
		return
	}
	if err := e.dev.Close(); err != nil {
		println("[hal] close failed for:", id, "err:", err.Error())
	}
	for _, a := range e.caps {
		delete(h.capIndex, a)
		h.conn.Publish(h.conn.NewMessage(capInfo(a), nil, true))
		h.conn.Publish(h.conn.NewMessage(capValue(a), nil, true))
		h.conn.Publish(h.conn.NewMessage(capStatus(a), nil, true))
	}
	delete(h.dev, id)
	println("[hal] device removed:", id)
}

func (h *HAL) closeAll() {
	for id, e := range h.dev {
		if err := e.dev.Close(); err != nil {
			println("[hal] close failed for:", id, "err:", err.Error())
		}
		for _, a := range e.caps {
			h.conn.Publish(h.conn.NewMessage(
				capStatus(a),
				types.CapabilityStatus{Link: types.LinkDown, TS: timex.NowMs()},
				true,
			))
		}
	}
}

func (h *HAL) claimedCap(dev Device) (CapAddr, bool) {
	for _, cs := range dev.Capabilities() {
		a := resolveAddr(cs, dev.ID())
		if _, taken := h.capIndex[a]; taken {
			return a, true
		}
	}
	return CapAddr{}, false
}

func resolveAddr(cs CapabilitySpec, devID string) CapAddr {
	k := string(cs.Kind)
	a := CapAddr{Domain: cs.Domain, Kind: k, Name: cs.Name}
	if a.Domain == "" {
		a.Domain = defaultDomain
	}
	if a.Name == "" {
		a.Name = devID
	}
	return a
}

func (h *HAL) handleControl(msg *bus.Message) {
	// hal/cap/<domain>/<kind>/<name>/control/<verb>
	if msg.Topic.Len() < 7 {
		h.replyErr(msg, errcode.InvalidTopic)
		return
	}
	domain, _ := msg.Topic.At(2).(string)
	kind, _ := msg.Topic.At(3).(string)
	name, _ := msg.Topic.At(4).(string)
	verb, _ := msg.Topic.At(6).(string)

	addr := CapAddr{Domain: domain, Kind: kind, Name: name}
	ownerID, ok := h.capIndex[addr]
	if !ok {
		h.replyErr(msg, errcode.UnknownCapability)
		return
	}
	e, ok := h.dev[ownerID]
	if !ok {
		h.replyErr(msg, errcode.Error)
		return
	}

	res, err := e.dev.Control(addr, verb, msg.Payload)
	if err != nil {
		h.replyFromError(msg, err)
		return
	}
	if !msg.CanReply() {
		return
	}
	if res.OK {
		h.replyOK(msg)
		return
	}
	code := res.Error
	if code == "" {
		code = errcode.Busy
	}
	h.replyErr(msg, code)
}

// handlePower serves hal/power/control/<verb>:
//
//	sleep: run the full transition; callbacks may veto it.
//	ready: ask callbacks only, nothing is entered.
func (h *HAL) handlePower(msg *bus.Message) {
	verb, _ := msg.Topic.At(3).(string)
	req, code := As[types.SleepRequest](msg.Payload)
	if code != "" {
		h.replyErr(msg, code)
		return
	}
	state, ok := syspm.ParseState(req.State)
	if !ok {
		h.replyErr(msg, errcode.InvalidParams)
		return
	}
	if h.res.PM == nil {
		h.replyErr(msg, errcode.Unsupported)
		return
	}

	var err error
	switch verb {
	case "sleep":
		println("[hal] power transition:", state.String())
		err = h.res.PM.Transition(state)
	case "ready":
		if !h.res.PM.Ready(state) {
			err = errcode.NotReady
		}
	default:
		h.replyErr(msg, errcode.Unsupported)
		return
	}
	if err != nil {
		println("[hal] power", verb, "refused:", err.Error())
		h.conn.Reply(msg, types.SleepReply{OK: false, Error: string(errcode.Of(err))}, false)
		return
	}
	h.conn.Reply(msg, types.SleepReply{OK: true}, false)
}

func (h *HAL) handleEvent(ev Event) {
	a := ev.Addr
	if _, live := h.capIndex[a]; !live {
		return
	}

	// Error → retained status:degraded; no value published.
	if ev.Err != "" {
		h.conn.Publish(h.conn.NewMessage(
			capStatus(a),
			types.CapabilityStatus{Link: types.LinkDegraded, TS: ev.TS, Error: ev.Err},
			true,
		))
		return
	}

	h.conn.Publish(h.conn.NewMessage(capValue(a), ev.Payload, true))
	h.conn.Publish(h.conn.NewMessage(
		capStatus(a),
		types.CapabilityStatus{Link: types.LinkUp, TS: ev.TS},
		true,
	))
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(
		topicHALState(),
		types.HALState{Level: level, Status: status, TS: timex.NowMs()},
		true,
	))
}

// ---- HAL as EventEmitter (enqueue to single publisher) ----

func (h *HAL) Emit(ev Event) bool {
	select {
	case h.evCh <- ev:
		return true
	default:
		return false
	}
}
