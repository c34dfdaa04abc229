package shadow

import "github.com/google/uuid"

// Light is the per-frame surface shared by every light kind.
type Light interface {
	ID() uuid.UUID
	Kind() Kind
	// Update recomputes derived matrices when the light moved and reports
	// whether any observable state changed since the previous call.
	Update() bool
	// Passes is the number of shadow passes per frame.
	Passes() int
	// BeginPass starts pass i of Passes.
	BeginPass(i int)
	RenderObjectToShadowMap(obj Caster)
	EndShadowPass()
	ApplyToShader(program uint32, index int)
	SetQualityPreset(i int) error
	SyncWithConstants(s Settings) (bool, error)
	Usable() bool
	Dispose()
}

var (
	_ Light = (*DirectionalLight)(nil)
	_ Light = (*OmniLight)(nil)
)

// RenderShadows runs every shadow pass of l over casters.
func RenderShadows(l Light, casters []Caster) {
	for i := range l.Passes() {
		l.BeginPass(i)
		for _, c := range casters {
			l.RenderObjectToShadowMap(c)
		}
		l.EndShadowPass()
	}
}
