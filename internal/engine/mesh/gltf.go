package mesh

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/logger"
	"github.com/Faultbox/midgard-shadows/pkg/math"
)

// LoadGLTF opens a .glb or .gltf file and returns one mesh per primitive
// reachable from the default scene, with node transforms baked into each
// mesh's model matrix. Primitives without positions are skipped.
func LoadGLTF(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	prims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				logger.Warn("gltf primitive skipped",
					zap.String("file", path), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			if prim.Material != nil && *prim.Material < len(doc.Materials) {
				if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil {
					c := pbr.BaseColorFactorOrDefault()
					m.Albedo = [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}
				}
			}
			prims[mi] = append(prims[mi], m)
		}
	}

	var out []*Mesh
	var walk func(idx int, parent math.Mat4)
	walk = func(idx int, parent math.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(gn))
		if gn.Mesh != nil && *gn.Mesh < len(prims) {
			for _, src := range prims[*gn.Mesh] {
				m := *src
				m.triangles = nil
				m.Model = world
				out = append(out, &m)
			}
		}
		for _, child := range gn.Children {
			walk(child, world)
		}
	}
	for _, root := range rootNodes(doc) {
		walk(root, math.Identity())
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("gltf %q: no mesh primitives", path)
	}
	logger.Info("gltf loaded", zap.String("file", path), zap.Int("meshes", len(out)))
	return out, nil
}

// rootNodes returns the nodes of the default scene, or every parentless node.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns a node's explicit matrix, or composes its translation,
// rotation and scale when the matrix is identity.
func nodeMatrix(gn *gltf.Node) math.Mat4 {
	if mtx := gn.MatrixOrDefault(); mtx != gltf.DefaultMatrix {
		var out math.Mat4
		for i, v := range mtx {
			out[i] = float32(v)
		}
		return out
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()

	rot := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}.ToMat4()
	return math.Translate(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul(rot).
		Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
}

func loadPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %d", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	raw, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions := make([]math.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	var normals []math.Vec3
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err := accessor(doc, idx); err != nil {
			logger.Warn("gltf normals skipped", zap.String("primitive", name), zap.Error(err))
		} else if raw, err := modeler.ReadNormal(doc, acc, nil); err == nil {
			normals = make([]math.Vec3, len(raw))
			for i, n := range raw {
				normals[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}
	return New(name, positions, normals, indices), nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", idx, len(doc.Accessors))
	}
	return doc.Accessors[idx], nil
}
