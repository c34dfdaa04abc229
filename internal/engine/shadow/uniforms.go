package shadow

import "strconv"

// Main-pass uniform names. These are a contract with the scene shaders:
// light 0 keeps the names the shaders used before they supported several
// lights, including uLightRadius instead of uPointLightRadius.

// DirectionalUniforms names the main-pass inputs of one directional light.
type DirectionalUniforms struct {
	Direction        string
	Position         string
	Intensity        string
	ShadowMap        string
	LightSpaceMatrix string
	ShadowsEnabled   string
	Bias             string
}

// OmniUniforms names the main-pass inputs of one omnidirectional light.
type OmniUniforms struct {
	Position       string
	Radius         string
	Intensity      string
	ShadowMap      string // cube map sampler
	FaceMaps       [6]string
	FaceMatrices   string // mat4[6], sampled with FaceMaps
	ShadowsEnabled string
	Bias           string
	FarPlane       string
}

var directionalUniforms0 = DirectionalUniforms{
	Direction:        "uDirLightDirection",
	Position:         "uDirLightPosition",
	Intensity:        "uDirLightIntensity",
	ShadowMap:        "uShadowMap",
	LightSpaceMatrix: "uLightSpaceMatrix",
	ShadowsEnabled:   "uShadowsEnabled",
	Bias:             "uShadowBias",
}

var omniUniforms0 = OmniUniforms{
	Position:  "uPointLightPos",
	Radius:    "uLightRadius",
	Intensity: "uPointLightIntensity",
	ShadowMap: "uPointShadowMap",
	FaceMaps: [6]string{
		"uPointShadowFace0", "uPointShadowFace1", "uPointShadowFace2",
		"uPointShadowFace3", "uPointShadowFace4", "uPointShadowFace5",
	},
	FaceMatrices:   "uPointLightSpace",
	ShadowsEnabled: "uPointShadowsEnabled",
	Bias:           "uPointShadowBias",
	FarPlane:       "uFarPlane",
}

// DirectionalUniformNames returns the names used for directional light index.
func DirectionalUniformNames(index int) DirectionalUniforms {
	if index == 0 {
		return directionalUniforms0
	}
	n := strconv.Itoa(index)
	return DirectionalUniforms{
		Direction:        "uDirLightDirection" + n,
		Position:         "uDirLightPosition" + n,
		Intensity:        "uDirLightIntensity" + n,
		ShadowMap:        "uShadowMap" + n,
		LightSpaceMatrix: "uLightSpaceMatrix" + n,
		ShadowsEnabled:   "uShadowsEnabled" + n,
		Bias:             "uShadowBias" + n,
	}
}

// OmniUniformNames returns the names used for omnidirectional light index.
func OmniUniformNames(index int) OmniUniforms {
	if index == 0 {
		return omniUniforms0
	}
	n := strconv.Itoa(index)
	u := OmniUniforms{
		Position:       "uPointLightPos" + n,
		Radius:         "uPointLightRadius" + n,
		Intensity:      "uPointLightIntensity" + n,
		ShadowMap:      "uPointShadowMap" + n,
		FaceMatrices:   "uPointLightSpace" + n,
		ShadowsEnabled: "uPointShadowsEnabled" + n,
		Bias:           "uPointShadowBias" + n,
		FarPlane:       "uFarPlane" + n,
	}
	for face := range u.FaceMaps {
		u.FaceMaps[face] = "uPointShadowFace" + n + "_" + strconv.Itoa(face)
	}
	return u
}
