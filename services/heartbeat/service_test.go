package heartbeat

import (
	"context"
	"testing"
	"time"

	"rgbled-go/bus"
	"rgbled-go/types"
)

func TestHeartbeatTogglesConfiguredLED(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	toggles := conn.Subscribe(bus.T("hal", "cap", "io", "rgb_led", "status", "control", "toggle"))

	conn.Publish(conn.NewMessage(topicConfigHeartbeat, types.HeartbeatConfig{IntervalMs: 10, Name: "status"}, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	(&Service{}).Start(ctx, conn)

	for i := 0; i < 3; i++ {
		select {
		case m := <-toggles.Channel():
			if m.CanReply() {
				t.Fatal("heartbeat toggle should not expect a reply")
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("toggle %d not seen", i)
		}
	}
}

func TestToggleTopic(t *testing.T) {
	if toggleTopic(types.HeartbeatConfig{IntervalMs: 10}) != nil {
		t.Fatal("no name should disable the blink")
	}
	tp := toggleTopic(types.HeartbeatConfig{Domain: "panel", Name: "a"})
	if tp.Len() != 7 || tp.At(2) != "panel" || tp.At(4) != "a" || tp.At(6) != "toggle" {
		t.Fatalf("topic %v", tp)
	}
}
