package core

import (
	"context"
	"testing"
	"time"

	"rgbled-go/bus"
	"rgbled-go/errcode"
	"rgbled-go/syspm"
	"rgbled-go/types"
)

// ---- Test device & builder ----

type testDev struct {
	id     string
	pub    EventEmitter
	level  int
	closed chan struct{}
}

func (d *testDev) ID() string { return d.id }
func (d *testDev) Capabilities() []CapabilitySpec {
	return []CapabilitySpec{{Kind: "dimmer", Info: types.Info{SchemaVersion: 1, Driver: "test"}}}
}
func (d *testDev) Init(context.Context) error {
	d.pub.Emit(Event{Addr: CapAddr{Domain: "io", Kind: "dimmer", Name: d.id}, Payload: d.level, TS: 1})
	return nil
}
func (d *testDev) Control(a CapAddr, verb string, payload any) (ControlResult, error) {
	switch verb {
	case "set":
		v, code := As[int](payload)
		if code != "" {
			return ControlResult{Error: code}, nil
		}
		d.level = v
		d.pub.Emit(Event{Addr: a, Payload: d.level, TS: 2})
		return ControlResult{OK: true}, nil
	case "fail":
		return ControlResult{}, errcode.Wrap("fail", errcode.Timeout)
	case "busy":
		return ControlResult{}, nil
	case "degrade":
		d.pub.Emit(Event{Addr: a, Err: "io_error", TS: 3})
		return ControlResult{OK: true}, nil
	}
	return ControlResult{Error: errcode.Unsupported}, nil
}
func (d *testDev) Close() error { close(d.closed); return nil }

type testBuilder struct{ made chan *testDev }

func (b testBuilder) Build(_ context.Context, in BuilderInput) (Device, error) {
	if in.Params != nil {
		return nil, errcode.InvalidParams
	}
	d := &testDev{id: in.ID, pub: in.Res.Pub, closed: make(chan struct{})}
	b.made <- d
	return d, nil
}

var made = make(chan *testDev, 8)

func init() { RegisterBuilder("test_dimmer", testBuilder{made: made}) }

// ---- helpers ----

func recvWithin[T any](t *testing.T, ch <-chan T, d time.Duration) (T, bool) {
	t.Helper()
	var zero T
	select {
	case v := <-ch:
		return v, true
	case <-time.After(d):
		return zero, false
	}
}

func request(t *testing.T, c *bus.Connection, topic bus.Topic, payload any) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	r, err := c.RequestWait(ctx, c.NewMessage(topic, payload, false))
	if err != nil {
		t.Fatalf("request %v: %v", topic, err)
	}
	return r.Payload
}

func wantErrReply(t *testing.T, p any, code errcode.Code) {
	t.Helper()
	er, ok := p.(types.ErrorReply)
	if !ok || er.OK || er.Error != string(code) {
		t.Fatalf("reply %#v, want %s", p, code)
	}
}

func startHAL(t *testing.T, res Resources) (*bus.Connection, context.CancelFunc) {
	t.Helper()
	b := bus.NewBus(32)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewHAL(b.NewConnection("hal"), res).Run(ctx)
	}()
	conn := b.NewConnection("test")

	st := conn.Subscribe(topicHALState())
	defer conn.Unsubscribe(st)
	if m, ok := recvWithin(t, st.Channel(), time.Second); !ok || m.Payload.(types.HALState).Level != "idle" {
		t.Fatal("no idle state")
	}
	return conn, func() {
		cancel()
		<-done
	}
}

func capTopic(name string, tail ...bus.Token) bus.Topic {
	return capBase(CapAddr{Domain: "io", Kind: "dimmer", Name: name}).Append(tail...)
}

// ---- Tests ----

func TestControlsRejectedBeforeConfig(t *testing.T) {
	conn, stop := startHAL(t, Resources{})
	defer stop()

	wantErrReply(t, request(t, conn, capTopic("d1", "control", "set"), 1), errcode.HALNotReady)
	wantErrReply(t, request(t, conn, T("hal", "power", "control", "ready"), types.SleepRequest{State: "sleep"}), errcode.HALNotReady)
}

func TestConfigControlAndTelemetry(t *testing.T) {
	conn, stop := startHAL(t, Resources{})
	defer stop()

	vals := conn.Subscribe(capTopic("d1", "value"))
	status := conn.Subscribe(capTopic("d1", "status"))
	conn.Publish(conn.NewMessage(topicConfigHAL(), types.HALConfig{
		Devices: []types.HALDevice{{ID: "d1", Type: "test_dimmer"}, {ID: "nope", Type: "missing"}},
	}, true))

	dev, ok := recvWithin(t, made, time.Second)
	if !ok {
		t.Fatal("device not built")
	}
	if m, ok := recvWithin(t, vals.Channel(), time.Second); !ok || m.Payload.(int) != 0 {
		t.Fatal("no initial value")
	}
	// down on registration, then up after the first value.
	for _, want := range []types.Link{types.LinkDown, types.LinkUp} {
		m, ok := recvWithin(t, status.Channel(), time.Second)
		if !ok || m.Payload.(types.CapabilityStatus).Link != want {
			t.Fatalf("status: want %s, got %#v", want, m)
		}
	}

	if _, ok := request(t, conn, capTopic("d1", "control", "set"), 7).(types.OKReply); !ok {
		t.Fatal("set not acknowledged")
	}
	if m, ok := recvWithin(t, vals.Channel(), time.Second); !ok || m.Payload.(int) != 7 || dev.level != 7 {
		t.Fatal("value not published after set")
	}

	wantErrReply(t, request(t, conn, capTopic("d1", "control", "set"), "x"), errcode.InvalidPayload)
	wantErrReply(t, request(t, conn, capTopic("d1", "control", "fail"), nil), errcode.Timeout)
	wantErrReply(t, request(t, conn, capTopic("d1", "control", "busy"), nil), errcode.Busy)
	wantErrReply(t, request(t, conn, capTopic("d9", "control", "set"), 1), errcode.UnknownCapability)

	request(t, conn, capTopic("d1", "control", "degrade"), nil)
	for {
		m, ok := recvWithin(t, status.Channel(), time.Second)
		if !ok {
			t.Fatal("no degraded status")
		}
		if cs := m.Payload.(types.CapabilityStatus); cs.Link == types.LinkDegraded {
			if cs.Error != "io_error" {
				t.Fatalf("degraded error %q", cs.Error)
			}
			break
		}
	}

	// Dropping the device from config closes it and clears retained topics.
	conn.Publish(conn.NewMessage(topicConfigHAL(), types.HALConfig{}, true))
	if _, ok := recvWithin(t, dev.closed, time.Second); !ok {
		t.Fatal("device not closed on removal")
	}
	wantErrReply(t, request(t, conn, capTopic("d1", "control", "set"), 1), errcode.UnknownCapability)
	info := conn.Subscribe(capTopic("d1", "info"))
	if m, ok := recvWithin(t, info.Channel(), 100*time.Millisecond); ok {
		t.Fatalf("retained info survived removal: %#v", m)
	}
}

func TestPowerControl(t *testing.T) {
	lit := true
	var entered []syspm.State
	pm := syspm.NewManager(func(s syspm.State) error { entered = append(entered, s); return nil })
	pm.Register(&syspm.Callback{
		States: syspm.CPUDeepSleep,
		Fn: func(_ syspm.State, mode syspm.Mode, _ any) bool {
			return mode != syspm.CheckReady || !lit
		},
	})

	conn, stop := startHAL(t, Resources{PM: pm})
	defer stop()
	conn.Publish(conn.NewMessage(topicConfigHAL(), types.HALConfig{}, true))

	ready := T("hal", "power", "control", "ready")
	sleep := T("hal", "power", "control", "sleep")

	// First request may race the config; retry until HAL is ready.
	deadline := time.Now().Add(time.Second)
	for {
		p := request(t, conn, ready, types.SleepRequest{State: "deepsleep"})
		if er, ok := p.(types.ErrorReply); ok && er.Error == string(errcode.HALNotReady) && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if r, ok := p.(types.SleepReply); !ok || r.OK || r.Error != string(errcode.NotReady) {
			t.Fatalf("ready while lit: %#v", p)
		}
		break
	}

	if r := request(t, conn, sleep, types.SleepRequest{State: "deepsleep"}).(types.SleepReply); r.OK || r.Error != string(errcode.NotReady) {
		t.Fatalf("sleep while lit: %#v", r)
	}
	if len(entered) != 0 {
		t.Fatalf("entered %v despite veto", entered)
	}

	lit = false
	if r := request(t, conn, sleep, &types.SleepRequest{State: "deepsleep"}).(types.SleepReply); !r.OK {
		t.Fatalf("sleep while dark: %#v", r)
	}
	// Plain sleep is not vetoed by a deep-sleep callback.
	if r := request(t, conn, sleep, types.SleepRequest{State: "sleep"}).(types.SleepReply); !r.OK {
		t.Fatalf("sleep: %#v", r)
	}
	if len(entered) != 2 || entered[0] != syspm.CPUDeepSleep || entered[1] != syspm.CPUSleep {
		t.Fatalf("entered %v", entered)
	}

	wantErrReply(t, request(t, conn, sleep, types.SleepRequest{State: "nap"}), errcode.InvalidParams)
	wantErrReply(t, request(t, conn, T("hal", "power", "control", "reboot"), types.SleepRequest{State: "sleep"}), errcode.Unsupported)
	wantErrReply(t, request(t, conn, sleep, 3), errcode.InvalidPayload)
}

func TestDuplicateBuilderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	RegisterBuilder("test_dimmer", testBuilder{})
}

func TestAs(t *testing.T) {
	if v, c := As[int](nil); v != 0 || c != "" {
		t.Fatalf("nil: %v %q", v, c)
	}
	n := 4
	if v, c := As[int](&n); v != 4 || c != "" {
		t.Fatalf("pointer: %v %q", v, c)
	}
	if _, c := As[int]((*int)(nil)); c != errcode.InvalidPayload {
		t.Fatalf("nil pointer: %q", c)
	}
	if _, c := As[int]("x"); c != errcode.InvalidPayload {
		t.Fatalf("wrong type: %q", c)
	}
}
