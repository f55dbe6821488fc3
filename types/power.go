package types

// ------------------------
// Power management (hal/power/control/<verb>)
// ------------------------

// SleepRequest asks HAL to enter (verb "sleep") or only poll (verb "ready")
// a low-power state: "sleep", "deepsleep" or "hibernate".
type SleepRequest struct {
	State string `json:"state"`
}

type SleepReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
