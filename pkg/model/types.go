// Package model flattens a binary glTF scene graph into renderer-ready meshes.
// Every primitive is baked into world space with its attributes demultiplexed
// into tightly packed float32 arrays and its indices widened to uint32.
package model

import (
	"fmt"

	"go.uber.org/multierr"
)

// AttributeKind identifies one of the vertex streams a Mesh can carry.
type AttributeKind int

const (
	Position AttributeKind = iota
	Normal
	Tangent
	TexCoord
)

// String returns the glTF attribute semantic for the kind.
func (k AttributeKind) String() string {
	switch k {
	case Position:
		return "POSITION"
	case Normal:
		return "NORMAL"
	case Tangent:
		return "TANGENT"
	case TexCoord:
		return "TEXCOORD_0"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Components returns the number of float32 values per vertex for the kind.
func (k AttributeKind) Components() int {
	switch k {
	case Position, Normal:
		return 3
	case Tangent:
		return 4
	case TexCoord:
		return 2
	default:
		return 0
	}
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the extent of the box on each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// boundsOf returns the box enclosing packed xyz positions.
// Empty input yields the zero box.
func boundsOf(positions []float32) Bounds {
	if len(positions) < 3 {
		return Bounds{}
	}
	b := Bounds{
		Min: [3]float32{positions[0], positions[1], positions[2]},
		Max: [3]float32{positions[0], positions[1], positions[2]},
	}
	for i := 3; i+2 < len(positions); i += 3 {
		updateBounds(&b, [3]float32{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Mesh is one drawable unit produced from a single triangle primitive.
// Attribute arrays are tightly packed; a nil array means the stream is absent.
type Mesh struct {
	Name      string
	Node      int // source node index
	Primitive int // primitive ordinal within the source mesh

	VertexCount   int
	TriangleCount int

	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex
	Tangents  []float32 // 4 per vertex, w is handedness
	TexCoords []float32 // 2 per vertex

	Indices []uint32 // 3 per triangle
	// Indexed is false when the source primitive had no index accessor and
	// Indices holds the synthesized sequence 0..VertexCount-1.
	Indexed bool
	// Mirrored is set when the node's world transform has a negative
	// determinant. Baked triangles then wind clockwise as seen from their
	// front faces, so renderers must flip their front-face setting.
	Mirrored bool

	Bounds Bounds
}

// Attribute returns the packed array for kind, or nil if absent.
func (m *Mesh) Attribute(kind AttributeKind) []float32 {
	switch kind {
	case Position:
		return m.Positions
	case Normal:
		return m.Normals
	case Tangent:
		return m.Tangents
	case TexCoord:
		return m.TexCoords
	default:
		return nil
	}
}

// Has reports whether the mesh carries the given stream.
func (m *Mesh) Has(kind AttributeKind) bool {
	return m.Attribute(kind) != nil
}

// Validate checks the mesh invariants: every present stream holds exactly
// VertexCount elements, the index list holds TriangleCount*3 entries, and
// every index addresses an existing vertex.
func (m *Mesh) Validate() error {
	var errs error

	if m.VertexCount < 0 || m.TriangleCount < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: negative counts (vertices=%d, triangles=%d)",
			ErrMeshInvariant, m.VertexCount, m.TriangleCount))
	}

	for kind := Position; kind <= TexCoord; kind++ {
		data := m.Attribute(kind)
		if data == nil {
			continue
		}
		if want := m.VertexCount * kind.Components(); len(data) != want {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s has %d floats, want %d",
				ErrMeshInvariant, kind, len(data), want))
		}
	}

	if len(m.Indices) != m.TriangleCount*3 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d indices for %d triangles",
			ErrMeshInvariant, len(m.Indices), m.TriangleCount))
	}
	for i, idx := range m.Indices {
		if int(idx) >= m.VertexCount {
			errs = multierr.Append(errs, fmt.Errorf("%w: index %d is %d, vertex count %d",
				ErrMeshInvariant, i, idx, m.VertexCount))
			break
		}
	}

	return errs
}

// Model is the ordered set of meshes flattened from one asset.
// It owns all mesh memory; nothing is shared with the source document.
type Model struct {
	Path   string
	Meshes []Mesh
	Bounds Bounds
}

// VertexCount returns the total number of vertices over all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for i := range m.Meshes {
		n += m.Meshes[i].VertexCount
	}
	return n
}

// TriangleCount returns the total number of triangles over all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for i := range m.Meshes {
		n += m.Meshes[i].TriangleCount
	}
	return n
}

// Release drops every mesh's arrays and then the mesh slice.
// The Model reports zero meshes afterwards.
func (m *Model) Release() {
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		mesh.Positions = nil
		mesh.Normals = nil
		mesh.Tangents = nil
		mesh.TexCoords = nil
		mesh.Indices = nil
		mesh.VertexCount = 0
		mesh.TriangleCount = 0
	}
	m.Meshes = nil
	m.Bounds = Bounds{}
}

// computeBounds sets the model box to the union of the non-empty mesh boxes.
func (m *Model) computeBounds() {
	first := true
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		if mesh.VertexCount == 0 {
			continue
		}
		if first {
			m.Bounds = mesh.Bounds
			first = false
			continue
		}
		updateBounds(&m.Bounds, mesh.Bounds.Min)
		updateBounds(&m.Bounds, mesh.Bounds.Max)
	}
}
