// Package shadow renders shadow maps for directional and omnidirectional
// lights and binds them for the main pass.
//
// Every light follows the same per-frame protocol: Update, then for each
// pass BeginShadowPass, RenderObjectToShadowMap per caster, EndShadowPass,
// and finally ApplyToShader on the main program. Shadow maps store depth
// packed into an RGBA8 color texture.
package shadow

import "github.com/Faultbox/midgard-shadows/internal/engine/shader/shaders"

// Kind tells directional and omnidirectional lights apart.
type Kind int

const (
	Directional Kind = iota
	Omnidirectional
)

func (k Kind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Omnidirectional:
		return "omnidirectional"
	default:
		return "unknown"
	}
}

// variant returns the shader pair that renders this kind's shadow pass.
func (k Kind) variant() shaders.Variant {
	if k == Omnidirectional {
		return shaders.OmniShadow
	}
	return shaders.Shadow
}
