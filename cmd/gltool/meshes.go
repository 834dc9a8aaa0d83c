package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/meshflat/internal/config"
	"github.com/Faultbox/meshflat/pkg/model"
)

func cmdMeshes(out io.Writer, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("meshes", flag.ContinueOnError)
	check := fs.Bool("check", false, "Verify mesh invariants after flattening")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: gltool meshes [-check] <file.glb>...")
	}

	opts, err := loadOptions(cfg)
	if err != nil {
		return err
	}
	models, err := model.LoadAll(fs.Args(), opts...)
	if err != nil {
		return err
	}

	for i, m := range models {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printModel(out, m)
		if *check {
			if err := checkModel(m); err != nil {
				return err
			}
		}
		m.Release()
	}
	return nil
}

func printModel(out io.Writer, m *model.Model) {
	fmt.Fprintf(out, "%s: %d meshes, %d vertices, %d triangles\n",
		m.Path, len(m.Meshes), m.VertexCount(), m.TriangleCount())
	fmt.Fprintf(out, "  bounds %v .. %v\n", m.Bounds.Min, m.Bounds.Max)

	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		indexed := "implicit"
		if mesh.Indexed {
			indexed = "indexed"
		}
		streams := streamList(mesh)
		if mesh.Mirrored {
			streams += " mirrored"
		}
		fmt.Fprintf(out, "  [%d] %-20s node=%-3d verts=%-7d tris=%-7d %-8s %s\n",
			i, mesh.Name, mesh.Node, mesh.VertexCount, mesh.TriangleCount, indexed, streams)
	}
}

// streamList names the streams a mesh carries, e.g. "POSITION,NORMAL".
func streamList(mesh *model.Mesh) string {
	var names []string
	for kind := model.Position; kind <= model.TexCoord; kind++ {
		if mesh.Has(kind) {
			names = append(names, kind.String())
		}
	}
	return strings.Join(names, ",")
}

func checkModel(m *model.Model) error {
	for i := range m.Meshes {
		if err := m.Meshes[i].Validate(); err != nil {
			return fmt.Errorf("%s mesh %d (%s): %w", m.Path, i, m.Meshes[i].Name, err)
		}
	}
	return nil
}
