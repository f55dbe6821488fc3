// services/hal/hal.go
package hal

import (
	"context"

	"rgbled-go/bus"
	"rgbled-go/services/hal/internal/core"
	"rgbled-go/services/hal/internal/provider"

	// Device builders register themselves with core.
	_ "rgbled-go/services/hal/devices/rgb_led"
)

// Run serves the HAL on conn until ctx is cancelled, using the resources of
// the board this binary was built for.
func Run(ctx context.Context, conn *bus.Connection) {
	run(ctx, conn, provider.NewResources())
}

func run(ctx context.Context, conn *bus.Connection, res core.Resources) {
	core.NewHAL(conn, res).Run(ctx)
}
