package shadow

import (
	"github.com/Faultbox/midgard-shadows/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-shadows/internal/engine/gpu"
)

// passTarget is where a shadow pass draws.
type passTarget interface {
	Allocate(size int32) error
	// Begin binds face, sets a full viewport and clears it.
	Begin(face int)
	DrawsCasters() bool
	Valid() bool
	Release()
}

// mapTarget draws into a single 2D shadow map.
type mapTarget struct {
	ctx gpu.Context
	fb  *framebuffer.Target
}

func (t *mapTarget) Allocate(size int32) error {
	if t.fb == nil {
		fb, err := framebuffer.New(t.ctx, size)
		if err != nil {
			return err
		}
		t.fb = fb
		return nil
	}
	return t.fb.Allocate(size)
}

func (t *mapTarget) Begin(int) {
	t.fb.Bind()
	// Opaque black unpacks to the far plane
	t.fb.Clear(0, 0, 0, 1)
}

func (t *mapTarget) DrawsCasters() bool { return true }

func (t *mapTarget) Valid() bool { return t.fb.Valid() }

func (t *mapTarget) Release() {
	if t.fb != nil {
		t.fb.Release()
	}
}

// forceTestTarget wraps a target for diagnostics: passes draw nothing into
// a separate framebuffer cleared to red, and the real map is left untouched.
type forceTestTarget struct {
	passTarget
	ctx   gpu.Context
	debug *framebuffer.Target
}

func withForceTest(ctx gpu.Context, inner passTarget) *forceTestTarget {
	return &forceTestTarget{passTarget: inner, ctx: ctx}
}

func (t *forceTestTarget) Allocate(size int32) error {
	if err := t.passTarget.Allocate(size); err != nil {
		return err
	}
	if t.debug == nil {
		debug, err := framebuffer.New(t.ctx, size)
		if err != nil {
			t.passTarget.Release()
			return err
		}
		t.debug = debug
		return nil
	}
	return t.debug.Allocate(size)
}

func (t *forceTestTarget) Begin(int) {
	t.debug.Bind()
	t.debug.Clear(1, 0, 0, 1)
}

func (t *forceTestTarget) DrawsCasters() bool { return false }

func (t *forceTestTarget) Release() {
	t.passTarget.Release()
	if t.debug != nil {
		t.debug.Release()
	}
}

// DebugTexture returns the red framebuffer's color texture.
func (t *forceTestTarget) DebugTexture() uint32 {
	if t.debug == nil {
		return 0
	}
	return t.debug.ColorTexture()
}
