package main

import (
	"context"
	"runtime"
	"time"

	"rgbled-go/bus"
	"rgbled-go/drivers/rgbled"
	"rgbled-go/services/config"
	"rgbled-go/services/hal"
	"rgbled-go/types"
)

func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

func request(ctx context.Context, c *bus.Connection, t bus.Topic, payload any) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	r, err := c.RequestWait(ctx, c.NewMessage(t, payload, false))
	if err != nil {
		println("[demo] request error:", err.Error())
		return
	}
	if er, ok := r.Payload.(types.ErrorReply); ok {
		printTopicWith("[demo] refused: "+er.Error, t)
	}
}

// Cycles the status LED through the palette, fades it, and asks for deep
// sleep on every pass; the request is refused while the LED is lit.
func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	ui := b.NewConnection("ui")

	mon := ui.Subscribe(bus.T("hal", "#"))
	go func() {
		for m := range mon.Channel() {
			printTopicWith("[monitor] <-", m.Topic)
		}
	}()

	go hal.Run(ctx, b.NewConnection("hal"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	time.Sleep(250 * time.Millisecond)

	ctrl := func(verb string) bus.Topic {
		return bus.T("hal", "cap", "io", string(types.KindRGBLED), "status", "control", verb)
	}
	sleep := bus.T("hal", "power", "control", "sleep")
	palette := []rgbled.Color{
		rgbled.ColorRed, rgbled.ColorGreen, rgbled.ColorBlue,
		rgbled.ColorYellow, rgbled.ColorPurple, rgbled.ColorCyan, rgbled.ColorWhite,
	}

	for {
		for _, c := range palette {
			request(ctx, ui, ctrl("on"), types.RGBLEDOn{Color: uint32(c), Brightness: 30})
			request(ctx, ui, sleep, types.SleepRequest{State: "deepsleep"})
			time.Sleep(400 * time.Millisecond)
		}
		request(ctx, ui, ctrl("fade"), types.RGBLEDFade{Brightness: rgbled.MaxBrightness, DurationMs: 1000, Steps: 50})
		time.Sleep(1200 * time.Millisecond)
		request(ctx, ui, ctrl("fade"), types.RGBLEDFade{Brightness: 0, DurationMs: 1000, Steps: 50})
		time.Sleep(1200 * time.Millisecond)
		request(ctx, ui, ctrl("off"), nil)
		request(ctx, ui, sleep, types.SleepRequest{State: "deepsleep"})
		printMem()
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
