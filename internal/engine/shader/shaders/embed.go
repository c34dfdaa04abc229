// Package shaders provides embedded GLSL shader sources.
package shaders

import (
	"embed"
	"fmt"
)

//go:embed *.vert *.frag
var files embed.FS

// Variant selects a shader pair.
type Variant string

const (
	// Shadow writes packed clip-space depth for directional lights.
	Shadow Variant = "shadow"
	// OmniShadow writes packed linear distance to the light for one cube face.
	OmniShadow Variant = "omni"
	// Scene is the lit main pass that samples the shadow maps.
	Scene Variant = "scene"
)

// Dialect selects the GLSL version.
type Dialect string

const (
	// Core is GLSL 3.30 core.
	Core Dialect = "core"
	// Legacy is GLSL 1.20 (attribute/varying, gl_FragColor).
	Legacy Dialect = "legacy"
)

// Name returns the program registry key of a variant in a dialect.
func Name(v Variant, d Dialect) string {
	return string(v) + "/" + string(d)
}

// Source returns the vertex and fragment source of a variant in a dialect.
func Source(v Variant, d Dialect) (vertex, fragment string, err error) {
	vs, err := files.ReadFile(fmt.Sprintf("%s.%s.vert", v, d))
	if err != nil {
		return "", "", fmt.Errorf("shader source %s: %w", Name(v, d), err)
	}
	fs, err := files.ReadFile(fmt.Sprintf("%s.%s.frag", v, d))
	if err != nil {
		return "", "", fmt.Errorf("shader source %s: %w", Name(v, d), err)
	}
	return string(vs), string(fs), nil
}

// MustSource is like Source but panics on a missing file.
func MustSource(v Variant, d Dialect) (vertex, fragment string) {
	vs, fs, err := Source(v, d)
	if err != nil {
		panic(err)
	}
	return vs, fs
}
