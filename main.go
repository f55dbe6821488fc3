package main

import (
	"context"
	"time"

	"rgbled-go/bus"
	"rgbled-go/services/config"
	"rgbled-go/services/hal"
	"rgbled-go/services/heartbeat"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	ctx := context.Background()
	b := bus.NewBus(8)

	go hal.Run(ctx, b.NewConnection("hal"))

	hb := &heartbeat.Service{}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat start failed:", err.Error())
	}

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	select {}
}
