package types

// HAL configuration supplied on topic "config/hal".

type HALConfig struct {
	Devices []HALDevice `json:"devices"`
}

type HALDevice struct {
	ID     string `json:"id"`   // logical device id, e.g. "status"
	Type   string `json:"type"` // builder name, e.g. "rgb_led"
	Params any    `json:"params,omitempty"`
}

// HeartbeatConfig is supplied on topic "config/heartbeat".
type HeartbeatConfig struct {
	IntervalMs uint32 `json:"interval_ms"`
	// Capability toggled on each tick; empty Name disables the blink.
	Domain string `json:"domain,omitempty"`
	Name   string `json:"name,omitempty"`
}
