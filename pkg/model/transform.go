package model

import (
	"github.com/Faultbox/meshflat/pkg/math"
	"github.com/qmuntal/gltf"
)

// parentIndices returns the parent of every node, or -1 for roots.
// The document must already have passed validation (a forest).
func parentIndices(doc *gltf.Document) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			parents[child] = i
		}
	}
	return parents
}

// localTransform returns the node's own matrix. An explicit matrix takes
// precedence over translation/rotation/scale.
func localTransform(node *gltf.Node) math.Mat4 {
	if m := node.MatrixOrDefault(); m != identity64 {
		return math.FromColumnMajor64(m)
	}
	return math.TRS(
		math.Vec3From64(node.TranslationOrDefault()),
		math.QuatFrom64(node.RotationOrDefault()).Normalize(),
		math.Vec3From64(node.ScaleOrDefault()),
	)
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// worldTransforms composes every node's matrix with its ancestors', each node
// exactly once. Unresolved ancestors are pushed onto a stack and resolved
// root-first, so no recursion over the graph is needed.
func worldTransforms(doc *gltf.Document) []math.Mat4 {
	parents := parentIndices(doc)
	world := make([]math.Mat4, len(doc.Nodes))
	done := make([]bool, len(doc.Nodes))
	var stack []int

	for i := range doc.Nodes {
		for j := i; j >= 0 && !done[j]; j = parents[j] {
			stack = append(stack, j)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			local := localTransform(doc.Nodes[j])
			if p := parents[j]; p >= 0 {
				world[j] = world[p].Mul(local)
			} else {
				world[j] = local
			}
			done[j] = true
		}
	}
	return world
}

// baker applies one node's world transform to extracted streams in place.
type baker struct {
	world   math.Mat4
	normal  math.Mat4
	tangent TangentMode
}

func newBaker(world math.Mat4, mode TangentMode) baker {
	return baker{world: world, normal: world.NormalMatrix(), tangent: mode}
}

// mirrored reports whether the world transform flips handedness, which
// reverses the winding of every baked triangle.
func (b baker) mirrored() bool {
	return b.world.Determinant3x3() < 0
}

func (b baker) positions(p []float32) {
	for i := 0; i+2 < len(p); i += 3 {
		v := b.world.TransformPoint([3]float32{p[i], p[i+1], p[i+2]})
		copy(p[i:i+3], v[:])
	}
}

func (b baker) normals(n []float32) {
	for i := 0; i+2 < len(n); i += 3 {
		v := math.Normalize3(b.normal.TransformDirection([3]float32{n[i], n[i+1], n[i+2]}))
		copy(n[i:i+3], v[:])
	}
}

// tangents bakes xyzw tangents; w is never modified.
func (b baker) tangents(t []float32) {
	for i := 0; i+3 < len(t); i += 4 {
		xyz := [3]float32{t[i], t[i+1], t[i+2]}
		var v [3]float32
		switch b.tangent {
		case TangentLegacy:
			v = b.world.TransformPoint(xyz)
		default:
			v = math.Normalize3(b.world.TransformDirection(xyz))
		}
		copy(t[i:i+3], v[:])
	}
}
