package model

import (
	"errors"
	"testing"

	"github.com/qmuntal/gltf"
	"go.uber.org/multierr"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *docBuilder)
		wantErr error
	}{
		{
			name: "valid",
			setup: func(b *docBuilder) {
				root := b.root(&gltf.Node{})
				b.child(root, &gltf.Node{Mesh: ptr(b.mesh("tri", b.trianglePrimitive()))})
			},
		},
		{
			name: "scene node out of range",
			setup: func(b *docBuilder) {
				b.doc.Scenes[0].Nodes = []int{4}
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "child out of range",
			setup: func(b *docBuilder) {
				b.root(&gltf.Node{Children: []int{7}})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "mesh out of range",
			setup: func(b *docBuilder) {
				b.root(&gltf.Node{Mesh: ptr(3)})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "attribute accessor out of range",
			setup: func(b *docBuilder) {
				prim := &gltf.Primitive{Attributes: map[string]int{gltf.POSITION: 9}}
				b.root(&gltf.Node{Mesh: ptr(b.mesh("bad", prim))})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "bufferView out of range",
			setup: func(b *docBuilder) {
				b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
					BufferView: ptr(5), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 1,
				})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "two parents",
			setup: func(b *docBuilder) {
				a := b.root(&gltf.Node{})
				c := b.root(&gltf.Node{})
				shared := b.child(a, &gltf.Node{})
				b.doc.Nodes[c].Children = append(b.doc.Nodes[c].Children, shared)
			},
			wantErr: ErrMultipleParents,
		},
		{
			name: "cycle",
			setup: func(b *docBuilder) {
				a := b.root(&gltf.Node{})
				c := b.child(a, &gltf.Node{})
				d := b.child(c, &gltf.Node{})
				// a -> c -> d -> c
				b.doc.Nodes[d].Children = []int{c}
				b.doc.Nodes[a].Children = nil
			},
			wantErr: ErrNodeCycle,
		},
		{
			name: "bufferView past end of buffer",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.BufferViews[0].ByteLength = 4096
			},
			wantErr: ErrBufferRange,
		},
		{
			name: "accessor past end of view",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.Accessors[0].Count = 4
			},
			wantErr: ErrBufferRange,
		},
		{
			name: "stride smaller than element",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.BufferViews[0].ByteStride = 8
			},
			wantErr: ErrStride,
		},
		{
			name: "negative accessor count",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.Accessors[0].Count = -1
			},
			wantErr: ErrInvalidCount,
		},
		{
			name: "negative accessor offset",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.Accessors[0].ByteOffset = -12
			},
			wantErr: ErrBufferRange,
		},
		{
			name: "empty accessor offset past view",
			setup: func(b *docBuilder) {
				b.trianglePrimitive()
				b.doc.Accessors[0].Count = 0
				b.doc.Accessors[0].ByteOffset = 64
			},
			wantErr: ErrBufferRange,
		},
		{
			name: "sparse substitution",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				b.sparse(prim.Attributes[gltf.POSITION], []uint16{1}, 5, 5, 5)
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
		},
		{
			name: "sparse bufferView out of range",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				b.sparse(prim.Attributes[gltf.POSITION], []uint16{1}, 5, 5, 5)
				b.doc.Accessors[0].Sparse.Values.BufferView = 9
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "sparse index past count",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				b.sparse(prim.Attributes[gltf.POSITION], []uint16{3}, 5, 5, 5)
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "sparse count above accessor count",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				b.sparse(prim.Attributes[gltf.POSITION], []uint16{0, 1, 2, 0}, make([]float32, 12)...)
			},
			wantErr: ErrInvalidCount,
		},
		{
			name: "sparse values past view",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				b.sparse(prim.Attributes[gltf.POSITION], []uint16{1}, 5, 5, 5)
				b.doc.Accessors[0].Sparse.Values.ByteOffset = 8
			},
			wantErr: ErrBufferRange,
		},
		{
			name: "attribute count mismatch",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				prim.Attributes[gltf.TEXCOORD_0] = b.floats(gltf.AccessorVec2, 0, 0, 1, 1)
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrCountMismatch,
		},
		{
			name: "float index accessor",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				prim.Indices = ptr(b.floats(gltf.AccessorScalar, 0, 1, 2))
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrIndexFormat,
		},
		{
			name: "vector index accessor",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				idx := b.indicesU16(0, 1, 2, 0)
				b.doc.Accessors[idx].Type = gltf.AccessorVec2
				b.doc.Accessors[idx].Count = 2
				prim.Indices = ptr(idx)
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrIndexFormat,
		},
		{
			name: "index count not a multiple of 3",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				prim.Indices = ptr(b.indicesU16(0, 1, 2, 0))
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrTriangleCount,
		},
		{
			name: "vertex count not a multiple of 3",
			setup: func(b *docBuilder) {
				prim := &gltf.Primitive{
					Attributes: map[string]int{gltf.POSITION: b.floats(gltf.AccessorVec3, 0, 0, 0, 1, 1, 1)},
				}
				b.root(&gltf.Node{Mesh: ptr(b.mesh("pair", prim))})
			},
			wantErr: ErrTriangleCount,
		},
		{
			name: "index past vertex count",
			setup: func(b *docBuilder) {
				prim := b.trianglePrimitive()
				prim.Indices = ptr(b.indicesU32(0, 1, 3))
				b.root(&gltf.Node{Mesh: ptr(b.mesh("tri", prim))})
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "lines may have any vertex count",
			setup: func(b *docBuilder) {
				prim := &gltf.Primitive{
					Attributes: map[string]int{gltf.POSITION: b.floats(gltf.AccessorVec3, 0, 0, 0, 1, 1, 1)},
					Mode:       gltf.PrimitiveLines,
				}
				b.root(&gltf.Node{Mesh: ptr(b.mesh("line", prim))})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newDocBuilder()
			tt.setup(b)
			err := ValidateDocument(b.build())

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument_Aggregates(t *testing.T) {
	b := newDocBuilder()
	b.root(&gltf.Node{Children: []int{10}, Mesh: ptr(10)})
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, 20)

	err := ValidateDocument(b.build())
	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("got %d aggregated errors, want 3: %v", got, err)
	}
}
