package model

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/exp/constraints"
)

// vector is a decoded float element of a vertex stream.
type vector interface {
	[2]float32 | [3]float32 | [4]float32
}

// decodeAccessor reads acc into a freshly allocated slice typed by its
// component and element type, e.g. [][3]float32 or []uint16. Byte stride,
// offsets and sparse substitution are applied by the modeler; an accessor
// without a bufferView reads as zeros.
//
// The modeler's Read* helpers decode through a pooled scratch buffer that is
// not cleared when there is no bufferView, so the raw reader is used with a
// nil buffer instead.
func decodeAccessor(doc *gltf.Document, acc *gltf.Accessor) (any, error) {
	if acc.Count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, acc.Count)
	}
	if acc.ByteOffset < 0 {
		return nil, fmt.Errorf("%w: byte offset %d", ErrBufferRange, acc.ByteOffset)
	}
	return modeler.ReadAccessor(doc, acc, nil)
}

// packVectors flattens decoded vectors into a tightly packed float32 array.
func packVectors[V vector](src []V) []float32 {
	var zero V
	n := len(zero)
	out := make([]float32, len(src)*n)
	for i, v := range src {
		for c := 0; c < n; c++ {
			out[i*n+c] = v[c]
		}
	}
	return out
}

// dequantize maps normalized unsigned pairs onto [0, 1].
func dequantize[T constraints.Unsigned](src [][2]T, denormalize func(T) float32) []float32 {
	out := make([]float32, 2*len(src))
	for i, v := range src {
		out[2*i] = denormalize(v[0])
		out[2*i+1] = denormalize(v[1])
	}
	return out
}

// widen copies unsigned indices of any width into a uint32 slice.
func widen[T constraints.Unsigned](src []T) []uint32 {
	out := make([]uint32, len(src))
	for i, v := range src {
		out[i] = uint32(v)
	}
	return out
}

// readFloats extracts a float stream as tightly packed float32 values.
// Normalized UNSIGNED_BYTE and UNSIGNED_SHORT pairs are dequantized.
func readFloats(doc *gltf.Document, acc *gltf.Accessor) ([]float32, error) {
	data, err := decodeAccessor(doc, acc)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case [][2]float32:
		return packVectors(v), nil
	case [][3]float32:
		return packVectors(v), nil
	case [][4]float32:
		return packVectors(v), nil
	case [][2]uint8:
		return dequantize(v, gltf.DenormalizeUbyte), nil
	case [][2]uint16:
		return dequantize(v, gltf.DenormalizeUshort), nil
	default:
		return nil, fmt.Errorf("unsupported float stream %T", data)
	}
}

// readIndices extracts an index stream widened to uint32.
func readIndices(doc *gltf.Document, acc *gltf.Accessor) ([]uint32, error) {
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("%w: element type must be SCALAR", ErrIndexFormat)
	}
	switch acc.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return nil, fmt.Errorf("%w: component type %s", ErrIndexFormat, acc.ComponentType)
	}

	data, err := decodeAccessor(doc, acc)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: decoded %T", ErrIndexFormat, data)
	}
}

// sequentialIndices returns 0..n-1 for primitives drawn without an index accessor.
func sequentialIndices(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// supportedLayout reports whether acc can feed the given stream.
func supportedLayout(kind AttributeKind, acc *gltf.Accessor) bool {
	switch kind {
	case Position, Normal:
		return acc.Type == gltf.AccessorVec3 && acc.ComponentType == gltf.ComponentFloat
	case Tangent:
		return acc.Type == gltf.AccessorVec4 && acc.ComponentType == gltf.ComponentFloat
	case TexCoord:
		if acc.Type != gltf.AccessorVec2 {
			return false
		}
		switch acc.ComponentType {
		case gltf.ComponentFloat:
			return true
		case gltf.ComponentUbyte, gltf.ComponentUshort:
			return acc.Normalized
		}
	}
	return false
}
