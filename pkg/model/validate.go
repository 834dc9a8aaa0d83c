package model

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/multierr"
)

// ValidateDocument checks the structural rules the flattener relies on and
// returns every violation found, combined into one error.
//
// References and data ranges are checked first; the rules that read index
// data only run once those pass.
func ValidateDocument(doc *gltf.Document) error {
	var errs error
	errs = multierr.Append(errs, validateReferences(doc))
	errs = multierr.Append(errs, validateHierarchy(doc))
	errs = multierr.Append(errs, validateRanges(doc))
	if errs != nil {
		return errs
	}
	if err := validateSparseIndices(doc); err != nil {
		return err
	}
	return validatePrimitives(doc)
}

func outOfRange(what string, idx, n int) error {
	return fmt.Errorf("%w: %s %d (have %d)", ErrIndexOutOfRange, what, idx, n)
}

func validateReferences(doc *gltf.Document) error {
	var errs error
	nodes, meshes := len(doc.Nodes), len(doc.Meshes)
	accessors, views, buffers := len(doc.Accessors), len(doc.BufferViews), len(doc.Buffers)

	for si, scene := range doc.Scenes {
		for _, n := range scene.Nodes {
			if n < 0 || n >= nodes {
				errs = multierr.Append(errs, fmt.Errorf("scene %d: %w", si, outOfRange("node", n, nodes)))
			}
		}
	}

	for ni, node := range doc.Nodes {
		for _, c := range node.Children {
			if c < 0 || c >= nodes {
				errs = multierr.Append(errs, fmt.Errorf("node %d: %w", ni, outOfRange("child", c, nodes)))
			}
		}
		if node.Mesh != nil && (*node.Mesh < 0 || *node.Mesh >= meshes) {
			errs = multierr.Append(errs, fmt.Errorf("node %d: %w", ni, outOfRange("mesh", *node.Mesh, meshes)))
		}
	}

	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			for name, a := range prim.Attributes {
				if a < 0 || a >= accessors {
					errs = multierr.Append(errs, fmt.Errorf("mesh %d primitive %d attribute %s: %w",
						mi, pi, name, outOfRange("accessor", a, accessors)))
				}
			}
			if prim.Indices != nil && (*prim.Indices < 0 || *prim.Indices >= accessors) {
				errs = multierr.Append(errs, fmt.Errorf("mesh %d primitive %d indices: %w",
					mi, pi, outOfRange("accessor", *prim.Indices, accessors)))
			}
		}
	}

	for ai, acc := range doc.Accessors {
		if acc.BufferView != nil && (*acc.BufferView < 0 || *acc.BufferView >= views) {
			errs = multierr.Append(errs, fmt.Errorf("accessor %d: %w", ai, outOfRange("bufferView", *acc.BufferView, views)))
		}
		if sp := acc.Sparse; sp != nil {
			if v := sp.Indices.BufferView; v < 0 || v >= views {
				errs = multierr.Append(errs, fmt.Errorf("accessor %d sparse indices: %w", ai, outOfRange("bufferView", v, views)))
			}
			if v := sp.Values.BufferView; v < 0 || v >= views {
				errs = multierr.Append(errs, fmt.Errorf("accessor %d sparse values: %w", ai, outOfRange("bufferView", v, views)))
			}
		}
	}

	for vi, view := range doc.BufferViews {
		if view.Buffer < 0 || view.Buffer >= buffers {
			errs = multierr.Append(errs, fmt.Errorf("bufferView %d: %w", vi, outOfRange("buffer", view.Buffer, buffers)))
		}
	}

	return errs
}

// validateHierarchy requires the node graph to be a forest: at most one
// parent per node and no cycles.
func validateHierarchy(doc *gltf.Document) error {
	var errs error
	n := len(doc.Nodes)
	parents := make([]int, n)
	for i := range parents {
		parents[i] = -1
	}

	for ni, node := range doc.Nodes {
		for _, c := range node.Children {
			if c < 0 || c >= n {
				continue
			}
			if parents[c] >= 0 {
				errs = multierr.Append(errs, fmt.Errorf("node %d: %w (%d and %d)", c, ErrMultipleParents, parents[c], ni))
				continue
			}
			parents[c] = ni
		}
	}

	const (
		unvisited = iota
		walking
		finished
	)
	state := make([]uint8, n)
	var path []int

	for i := 0; i < n; i++ {
		path = path[:0]
		j := i
		for j >= 0 && state[j] == unvisited {
			state[j] = walking
			path = append(path, j)
			j = parents[j]
		}
		if j >= 0 && state[j] == walking {
			errs = multierr.Append(errs, fmt.Errorf("node %d: %w", j, ErrNodeCycle))
		}
		for _, k := range path {
			state[k] = finished
		}
	}

	return errs
}

func validateRanges(doc *gltf.Document) error {
	var errs error

	for vi, view := range doc.BufferViews {
		if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
			continue
		}
		have := len(doc.Buffers[view.Buffer].Data)
		if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset+view.ByteLength > have {
			errs = multierr.Append(errs, fmt.Errorf("bufferView %d: %w: [%d, %d) of %d bytes",
				vi, ErrBufferRange, view.ByteOffset, view.ByteOffset+view.ByteLength, have))
		}
	}

	for ai, acc := range doc.Accessors {
		if acc.Count < 0 {
			errs = multierr.Append(errs, fmt.Errorf("accessor %d: %w: %d", ai, ErrInvalidCount, acc.Count))
			continue
		}
		size := gltf.SizeOfElement(acc.ComponentType, acc.Type)
		if size == 0 {
			errs = multierr.Append(errs, fmt.Errorf("accessor %d: unknown component or element type", ai))
			continue
		}
		if acc.BufferView != nil {
			if err := checkSpan(doc, *acc.BufferView, acc.ByteOffset, acc.Count, size); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("accessor %d: %w", ai, err))
			}
		}
		if acc.Sparse != nil {
			if err := checkSparseSpans(doc, acc, size); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("accessor %d sparse: %w", ai, err))
			}
		}
	}

	return errs
}

// checkSpan verifies that count elements of size bytes, starting offset bytes
// into the view and spaced by the view's stride, lie inside the view.
func checkSpan(doc *gltf.Document, view, offset, count, size int) error {
	if view < 0 || view >= len(doc.BufferViews) {
		return nil
	}
	bv := doc.BufferViews[view]
	if offset < 0 || offset > bv.ByteLength {
		return fmt.Errorf("%w: byte offset %d outside view of %d bytes", ErrBufferRange, offset, bv.ByteLength)
	}

	stride := bv.ByteStride
	if stride != 0 && stride < size {
		return fmt.Errorf("%w: stride %d, element %d bytes", ErrStride, stride, size)
	}
	if stride == 0 {
		stride = size
	}
	if count > 0 && offset+(count-1)*stride+size > bv.ByteLength {
		return fmt.Errorf("%w: last element ends at %d, view holds %d",
			ErrBufferRange, offset+(count-1)*stride+size, bv.ByteLength)
	}
	return nil
}

func checkSparseSpans(doc *gltf.Document, acc *gltf.Accessor, size int) error {
	sp := acc.Sparse
	if sp.Count < 1 || sp.Count > acc.Count {
		return fmt.Errorf("%w: %d substitutions for %d elements", ErrInvalidCount, sp.Count, acc.Count)
	}
	switch sp.Indices.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return fmt.Errorf("%w: sparse index component type %s", ErrIndexFormat, sp.Indices.ComponentType)
	}

	var errs error
	errs = multierr.Append(errs, checkSpan(doc, sp.Indices.BufferView, sp.Indices.ByteOffset,
		sp.Count, gltf.SizeOfElement(sp.Indices.ComponentType, gltf.AccessorScalar)))
	errs = multierr.Append(errs, checkSpan(doc, sp.Values.BufferView, sp.Values.ByteOffset, sp.Count, size))
	return errs
}

func validatePrimitives(doc *gltf.Document) error {
	var errs error

	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if err := validatePrimitive(doc, prim); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err))
			}
		}
	}

	return errs
}

func validatePrimitive(doc *gltf.Document, prim *gltf.Primitive) error {
	var errs error

	vertices := -1
	if pos, ok := prim.Attributes[gltf.POSITION]; ok {
		vertices = doc.Accessors[pos].Count
	}
	if vertices >= 0 {
		for name, a := range prim.Attributes {
			if count := doc.Accessors[a].Count; count != vertices {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s has %d elements, POSITION has %d",
					ErrCountMismatch, name, count, vertices))
			}
		}
	}

	triangles := prim.Mode == gltf.PrimitiveTriangles

	if prim.Indices == nil {
		if triangles && vertices > 0 && vertices%3 != 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %d vertices", ErrTriangleCount, vertices))
		}
		return errs
	}

	acc := doc.Accessors[*prim.Indices]
	if acc.Type != gltf.AccessorScalar {
		return multierr.Append(errs, fmt.Errorf("%w: element type must be SCALAR", ErrIndexFormat))
	}
	switch acc.ComponentType {
	case gltf.ComponentUbyte, gltf.ComponentUshort, gltf.ComponentUint:
	default:
		return multierr.Append(errs, fmt.Errorf("%w: component type must be unsigned", ErrIndexFormat))
	}
	if triangles && acc.Count%3 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d indices", ErrTriangleCount, acc.Count))
	}

	if vertices < 0 {
		return errs
	}
	indices, err := readIndices(doc, acc)
	if err != nil {
		return multierr.Append(errs, err)
	}
	for i, idx := range indices {
		if int(idx) >= vertices {
			errs = multierr.Append(errs, fmt.Errorf("%w: index %d is %d, vertex count %d",
				ErrIndexOutOfRange, i, idx, vertices))
			break
		}
	}

	return errs
}

// validateSparseIndices requires every sparse substitution to target an
// existing element of its accessor.
func validateSparseIndices(doc *gltf.Document) error {
	var errs error

	for ai, acc := range doc.Accessors {
		sp := acc.Sparse
		if sp == nil {
			continue
		}
		indices, err := readIndices(doc, &gltf.Accessor{
			BufferView:    &sp.Indices.BufferView,
			ByteOffset:    sp.Indices.ByteOffset,
			ComponentType: sp.Indices.ComponentType,
			Type:          gltf.AccessorScalar,
			Count:         sp.Count,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("accessor %d sparse: %w", ai, err))
			continue
		}
		for i, idx := range indices {
			if int(idx) >= acc.Count {
				errs = multierr.Append(errs, fmt.Errorf("accessor %d sparse: %w: index %d is %d, count %d",
					ai, ErrIndexOutOfRange, i, idx, acc.Count))
				break
			}
		}
	}

	return errs
}
