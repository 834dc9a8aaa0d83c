package model

import (
	"encoding/binary"
	gomath "math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
)

// docBuilder assembles a single-buffer glTF document for tests.
type docBuilder struct {
	doc *gltf.Document
	buf []byte
}

func newDocBuilder() *docBuilder {
	return &docBuilder{
		doc: &gltf.Document{
			Asset:  gltf.Asset{Version: "2.0"},
			Scene:  ptr(0),
			Scenes: []*gltf.Scene{{Name: "scene"}},
		},
	}
}

func ptr(i int) *int {
	return &i
}

// view appends data (4-byte aligned) and returns a new bufferView index.
func (b *docBuilder) view(data []byte, stride int) int {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	offset := len(b.buf)
	b.buf = append(b.buf, data...)
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: len(data),
		ByteStride: stride,
	})
	return len(b.doc.BufferViews) - 1
}

// accessor adds an accessor over an existing view.
func (b *docBuilder) accessor(view, offset int, ct gltf.ComponentType, typ gltf.AccessorType, count int) int {
	b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
		BufferView:    ptr(view),
		ByteOffset:    offset,
		ComponentType: ct,
		Type:          typ,
		Count:         count,
	})
	return len(b.doc.Accessors) - 1
}

// floats adds a tightly packed float accessor.
func (b *docBuilder) floats(typ gltf.AccessorType, values ...float32) int {
	n := typ.Components()
	return b.accessor(b.view(float32Bytes(values...), 0), 0, gltf.ComponentFloat, typ, len(values)/n)
}

func (b *docBuilder) indicesU8(values ...uint8) int {
	return b.accessor(b.view(values, 0), 0, gltf.ComponentUbyte, gltf.AccessorScalar, len(values))
}

func (b *docBuilder) indicesU16(values ...uint16) int {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	return b.accessor(b.view(data, 0), 0, gltf.ComponentUshort, gltf.AccessorScalar, len(values))
}

func (b *docBuilder) indicesU32(values ...uint32) int {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], v)
	}
	return b.accessor(b.view(data, 0), 0, gltf.ComponentUint, gltf.AccessorScalar, len(values))
}

// sparse overlays values onto accessor acc at the given element indices.
func (b *docBuilder) sparse(acc int, indices []uint16, values ...float32) {
	idx := make([]byte, 2*len(indices))
	for i, v := range indices {
		binary.LittleEndian.PutUint16(idx[2*i:], v)
	}
	b.doc.Accessors[acc].Sparse = &gltf.Sparse{
		Count:   len(indices),
		Indices: gltf.SparseIndices{BufferView: b.view(idx, 0), ComponentType: gltf.ComponentUshort},
		Values:  gltf.SparseValues{BufferView: b.view(float32Bytes(values...), 0)},
	}
}

func (b *docBuilder) mesh(name string, prims ...*gltf.Primitive) int {
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: prims})
	return len(b.doc.Meshes) - 1
}

// root adds a node referenced by the first scene.
func (b *docBuilder) root(n *gltf.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	idx := len(b.doc.Nodes) - 1
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, idx)
	return idx
}

// child adds a node under parent.
func (b *docBuilder) child(parent int, n *gltf.Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	idx := len(b.doc.Nodes) - 1
	b.doc.Nodes[parent].Children = append(b.doc.Nodes[parent].Children, idx)
	return idx
}

// build finalizes the buffer and returns the in-memory document.
func (b *docBuilder) build() *gltf.Document {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	if len(b.buf) > 0 {
		b.doc.Buffers = []*gltf.Buffer{{ByteLength: len(b.buf), Data: b.buf}}
	}
	return b.doc
}

// save writes the document as a .glb file in a temp dir.
func (b *docBuilder) save(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.glb")
	if err := gltf.SaveBinary(b.build(), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func float32Bytes(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], gomath.Float32bits(v))
	}
	return data
}

// triangle is a unit right triangle in the XY plane.
var triangle = []float32{
	0, 0, 0,
	1, 0, 0,
	0, 1, 0,
}

// trianglePrimitive adds a non-indexed primitive over the unit triangle.
func (b *docBuilder) trianglePrimitive() *gltf.Primitive {
	return &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: b.floats(gltf.AccessorVec3, triangle...)},
	}
}

func approxEqual(a, b []float32, eps float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		d := a[i] - b[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}
