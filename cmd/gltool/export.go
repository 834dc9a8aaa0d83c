package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshflat/internal/config"
	"github.com/Faultbox/meshflat/pkg/model"
	"gopkg.in/yaml.v3"
)

// Manifest describes the files written by export. Streams are raw
// little-endian arrays with no header, one file per stream.
type Manifest struct {
	Source      string         `yaml:"source"`
	TangentMode string         `yaml:"tangent_mode"`
	Bounds      BoundsEntry    `yaml:"bounds"`
	Meshes      []MeshManifest `yaml:"meshes"`
}

// MeshManifest describes one exported mesh.
type MeshManifest struct {
	Name      string        `yaml:"name"`
	Node      int           `yaml:"node"`
	Primitive int           `yaml:"primitive"`
	Vertices  int           `yaml:"vertices"`
	Triangles int           `yaml:"triangles"`
	Indexed   bool          `yaml:"indexed"`
	Mirrored  bool          `yaml:"mirrored,omitempty"`
	Bounds    BoundsEntry   `yaml:"bounds"`
	Streams   []StreamEntry `yaml:"streams"`
}

// BoundsEntry is an axis-aligned box.
type BoundsEntry struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// StreamEntry describes one .bin file.
type StreamEntry struct {
	Attribute  string `yaml:"attribute"`
	File       string `yaml:"file"`
	Type       string `yaml:"type"`
	Components int    `yaml:"components"`
	Count      int    `yaml:"count"`
	Bytes      int    `yaml:"bytes"`
}

func cmdExport(out io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	manifestName := fs.String("manifest", cfg.Export.Manifest, "Manifest file name inside the output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: gltool export [-manifest name] <file.glb> [outdir]")
	}

	src := fs.Arg(0)
	outDir := cfg.Export.OutputDir
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}

	opts, err := loadOptions(cfg)
	if err != nil {
		return err
	}
	m, err := model.Load(src, opts...)
	if err != nil {
		return err
	}
	defer m.Release()

	manifest, err := writeExport(m, outDir, *manifestName, cfg.Loader.TangentMode)
	if err != nil {
		return err
	}

	files := 0
	for _, mesh := range manifest.Meshes {
		files += len(mesh.Streams)
	}
	fmt.Fprintf(out, "Exported %d meshes (%d files) to %s\n", len(manifest.Meshes), files, outDir)
	return nil
}

// writeExport writes every stream of m into dir and then the manifest.
func writeExport(m *model.Model, dir, manifestName, tangentMode string) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path))
	manifest := &Manifest{
		Source:      m.Path,
		TangentMode: tangentMode,
		Bounds:      BoundsEntry{Min: m.Bounds.Min, Max: m.Bounds.Max},
		Meshes:      make([]MeshManifest, 0, len(m.Meshes)),
	}

	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		entry := MeshManifest{
			Name:      mesh.Name,
			Node:      mesh.Node,
			Primitive: mesh.Primitive,
			Vertices:  mesh.VertexCount,
			Triangles: mesh.TriangleCount,
			Indexed:   mesh.Indexed,
			Mirrored:  mesh.Mirrored,
			Bounds:    BoundsEntry{Min: mesh.Bounds.Min, Max: mesh.Bounds.Max},
		}

		// Stream order matches attribute locations 0..3 of the upload layer.
		for kind := model.Position; kind <= model.TexCoord; kind++ {
			data := mesh.Attribute(kind)
			if data == nil {
				continue
			}
			name := fmt.Sprintf("%s_%03d_%s.bin", stem, i, strings.ToLower(kind.String()))
			if err := writeStream(filepath.Join(dir, name), data); err != nil {
				return nil, err
			}
			entry.Streams = append(entry.Streams, StreamEntry{
				Attribute:  kind.String(),
				File:       name,
				Type:       "float32",
				Components: kind.Components(),
				Count:      mesh.VertexCount,
				Bytes:      4 * len(data),
			})
		}

		name := fmt.Sprintf("%s_%03d_indices.bin", stem, i)
		if err := writeStream(filepath.Join(dir, name), mesh.Indices); err != nil {
			return nil, err
		}
		entry.Streams = append(entry.Streams, StreamEntry{
			Attribute:  "INDICES",
			File:       name,
			Type:       "uint32",
			Components: 1,
			Count:      len(mesh.Indices),
			Bytes:      4 * len(mesh.Indices),
		})

		manifest.Meshes = append(manifest.Meshes, entry)
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), data, 0644); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return manifest, nil
}

// writeStream writes a slice as a raw little-endian array.
func writeStream[T float32 | uint32](path string, data []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
