package shadow

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrDisposed is returned by management calls on a disposed light.
	ErrDisposed = errors.New("shadow: light disposed")
	// ErrReadbackUnsupported is returned by DebugAnalyzeShadowMap when the
	// context cannot read depth back as floats.
	ErrReadbackUnsupported = errors.New("shadow: depth readback unsupported by context")
)

type passState int

const (
	stateUninitialized passState = iota
	stateReady
	stateRendering
	stateDisposed
)

func (s passState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateRendering:
		return "rendering"
	case stateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PreconditionError describes a pass-protocol call made in the wrong state,
// such as rendering outside BeginShadowPass/EndShadowPass or beginning twice.
type PreconditionError struct {
	Light string
	Op    string
	State string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("shadow light %s: %s called while %s", e.Light, e.Op, e.State)
}

// violation reports a precondition failure: a panic in strict mode,
// an error log otherwise. The offending call is then skipped.
func (c *passCore) violation(op string) {
	err := &PreconditionError{Light: c.id.String(), Op: op, State: c.state.String()}
	if c.settings.Strict {
		panic(err)
	}
	c.log.Error("shadow pass protocol violated", zap.Error(err))
}
