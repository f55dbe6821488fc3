package core

import (
	"context"

	"rgbled-go/errcode"
	"rgbled-go/types"
)

// ---- Capability & device model ----

// CapAddr names a capability on the bus: hal/cap/<domain>/<kind>/<name>.
type CapAddr struct {
	Domain string
	Kind   string
	Name   string
}

type CapabilitySpec struct {
	Domain string // "" => default for kind
	Kind   types.Kind
	Name   string // "" => device id
	Info   types.Info
}

// ControlResult is the synchronous outcome of a control. A zero Error with
// OK false is reported as busy.
type ControlResult struct {
	OK    bool
	Error errcode.Code
}

type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(cap CapAddr, verb string, payload any) (ControlResult, error)
	Close() error // release claimed resources
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}
