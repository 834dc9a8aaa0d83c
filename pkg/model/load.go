package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Faultbox/meshflat/pkg/formats"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Load flattens the binary glTF asset at path into a Model.
//
// The asset must parse, pass ValidateDocument, contain exactly one scene and
// use the GLB container. Any failure returns a *LoadError and no Model.
// Unsupported attributes are not failures: they are dropped and reported on
// the logger given with WithLogger.
func Load(path string, opts ...Option) (*Model, error) {
	o := newOptions(opts)
	log := o.logger.With(zap.String("path", path), zap.String("load_id", uuid.NewString()))

	encoding, err := formats.SniffFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: KindUnreadable, Err: err}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: KindParse, Err: err}
	}

	if err := ValidateDocument(doc); err != nil {
		return nil, &LoadError{Path: path, Kind: KindValidation, Err: err}
	}
	if n := len(doc.Scenes); n != 1 {
		return nil, &LoadError{Path: path, Kind: KindUnsupported, Err: fmt.Errorf("%w: found %d", ErrSceneCount, n)}
	}
	if encoding != formats.EncodingBinary {
		return nil, &LoadError{Path: path, Kind: KindUnsupported, Err: ErrNotBinary}
	}

	model, err := flatten(doc, o, log)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: KindValidation, Err: err}
	}
	model.Path = path
	return model, nil
}

// LoadAll loads each path in order and stops at the first failure.
func LoadAll(paths []string, opts ...Option) ([]*Model, error) {
	models := make([]*Model, 0, len(paths))
	for _, p := range paths {
		m, err := Load(p, opts...)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// CountTrianglePrimitives returns the number of triangle primitives over all
// mesh-bearing nodes, which is the number of meshes Load produces.
// Instanced meshes count once per referencing node.
func CountTrianglePrimitives(doc *gltf.Document) int {
	n := 0
	for _, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		for _, prim := range doc.Meshes[*node.Mesh].Primitives {
			if prim.Mode == gltf.PrimitiveTriangles {
				n++
			}
		}
	}
	return n
}

func flatten(doc *gltf.Document, o options, log *zap.Logger) (*Model, error) {
	slots := CountTrianglePrimitives(doc)
	log.Debug("loading meshes", zap.Int("count", slots))

	model := &Model{Meshes: make([]Mesh, 0, slots)}
	world := worldTransforms(doc)

	for ni, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		src := doc.Meshes[*node.Mesh]
		nlog := log.With(zap.Int("node", ni), zap.Int("mesh", *node.Mesh))
		nlog.Debug("processing node", zap.String("name", node.Name))

		bake := newBaker(world[ni], o.tangent)
		for pi, prim := range src.Primitives {
			plog := nlog.With(zap.Int("primitive", pi))
			if prim.Mode != gltf.PrimitiveTriangles {
				plog.Debug("skipping non-triangle primitive", zap.Int("mode", int(prim.Mode)))
				continue
			}

			mesh, err := buildMesh(doc, prim, bake, plog)
			if err != nil {
				return nil, fmt.Errorf("node %d primitive %d: %w", ni, pi, err)
			}
			mesh.Name = meshName(src, *node.Mesh, pi)
			mesh.Node = ni
			mesh.Primitive = pi
			model.Meshes = append(model.Meshes, mesh)
		}
	}

	model.computeBounds()
	return model, nil
}

func meshName(src *gltf.Mesh, index, prim int) string {
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("mesh%d", index)
	}
	return fmt.Sprintf("%s#%d", name, prim)
}

// buildMesh extracts and bakes one triangle primitive.
func buildMesh(doc *gltf.Document, prim *gltf.Primitive, bake baker, log *zap.Logger) (Mesh, error) {
	var mesh Mesh
	log.Debug("processing primitive", zap.Int("attributes", len(prim.Attributes)))

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		log.Warn("primitive has no POSITION attribute, emitting empty mesh")
		return emptyMesh(prim.Indices != nil), nil
	}
	posAcc := doc.Accessors[posIdx]
	if !supportedLayout(Position, posAcc) {
		log.Warn("unsupported POSITION layout, emitting empty mesh",
			zap.String("attribute", gltf.POSITION),
			zap.Int("component_type", int(posAcc.ComponentType)),
			zap.Int("type", int(posAcc.Type)))
		return emptyMesh(prim.Indices != nil), nil
	}

	positions, err := readFloats(doc, posAcc)
	if err != nil {
		return mesh, fmt.Errorf("reading POSITION: %w", err)
	}
	bake.positions(positions)
	mesh.Positions = positions
	mesh.VertexCount = posAcc.Count
	mesh.Mirrored = bake.mirrored()

	for _, name := range slices.Sorted(maps.Keys(prim.Attributes)) {
		if name == gltf.POSITION {
			continue
		}
		alog := log.With(zap.String("attribute", name))
		kind, known := attributeKind(name)
		if !known {
			if strings.HasPrefix(name, "TEXCOORD_") {
				alog.Debug("dropping extra texture coordinate set")
			} else {
				alog.Warn("skipping unsupported attribute")
			}
			continue
		}

		acc := doc.Accessors[prim.Attributes[name]]
		if !supportedLayout(kind, acc) {
			alog.Warn("skipping attribute with unsupported layout",
				zap.Int("component_type", int(acc.ComponentType)),
				zap.Int("type", int(acc.Type)),
				zap.Bool("normalized", acc.Normalized))
			continue
		}

		alog.Debug("processing attribute", zap.Int("count", acc.Count))
		data, err := readFloats(doc, acc)
		if err != nil {
			return mesh, fmt.Errorf("reading %s: %w", name, err)
		}

		switch kind {
		case Normal:
			bake.normals(data)
			mesh.Normals = data
		case Tangent:
			bake.tangents(data)
			mesh.Tangents = data
		case TexCoord:
			mesh.TexCoords = data
		}
	}

	if prim.Indices != nil {
		indices, err := readIndices(doc, doc.Accessors[*prim.Indices])
		if err != nil {
			return mesh, fmt.Errorf("reading indices: %w", err)
		}
		mesh.Indices = indices
		mesh.Indexed = true
	} else {
		mesh.Indices = sequentialIndices(mesh.VertexCount)
	}
	mesh.TriangleCount = len(mesh.Indices) / 3
	mesh.Bounds = boundsOf(mesh.Positions)

	return mesh, nil
}

// attributeKind maps a glTF semantic onto the streams a Mesh keeps.
func attributeKind(name string) (AttributeKind, bool) {
	switch name {
	case gltf.POSITION:
		return Position, true
	case gltf.NORMAL:
		return Normal, true
	case gltf.TANGENT:
		return Tangent, true
	case gltf.TEXCOORD_0:
		return TexCoord, true
	default:
		return 0, false
	}
}

func emptyMesh(indexed bool) Mesh {
	return Mesh{
		Positions: []float32{},
		Indices:   []uint32{},
		Indexed:   indexed,
	}
}
