package heartbeat

import (
	"context"
	"time"

	"rgbled-go/bus"
	"rgbled-go/types"
	"rgbled-go/x/strx"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const defaultInterval = time.Second

type Service struct{}

func toggleTopic(cfg types.HeartbeatConfig) bus.Topic {
	if cfg.Name == "" {
		return nil
	}
	return bus.T("hal", "cap", strx.Coalesce(cfg.Domain, "io"), string(types.KindRGBLED), cfg.Name, "control", "toggle")
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	var target bus.Topic
	var n uint32
	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			n++
			println("[heartbeat] tick", n)
			if target != nil {
				// Fire and forget: no reply topic.
				conn.Publish(conn.NewMessage(target, nil, false))
			}
		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok {
				println("[heartbeat] ignoring config of unexpected type")
				continue
			}
			if cfg.IntervalMs > 0 {
				tick.Reset(time.Duration(cfg.IntervalMs) * time.Millisecond)
				println("[heartbeat] interval ms:", cfg.IntervalMs)
			}
			target = toggleTopic(cfg)
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
