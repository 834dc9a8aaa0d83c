package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/Faultbox/meshflat/pkg/formats"
	"github.com/Faultbox/meshflat/pkg/model"
	"github.com/qmuntal/gltf"
	"go.uber.org/multierr"
)

func cmdInfo(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: gltool info <file.glb>")
	}
	path := fs.Arg(0)

	encoding, err := formats.SniffFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "File:      %s\n", path)
	fmt.Fprintf(out, "Encoding:  %s\n", encoding)

	if encoding == formats.EncodingBinary {
		glb, err := formats.ParseGLBFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Version:   %d\n", glb.Header.Version)
		fmt.Fprintf(out, "Length:    %d bytes\n", glb.Header.Length)
		fmt.Fprintln(out, "Chunks:")
		for i, c := range glb.Chunks {
			fmt.Fprintf(out, "  %-3d %-6s %10d bytes @ %d\n", i, c.Type, c.Length, c.Offset)
		}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Scenes:      %d\n", len(doc.Scenes))
	fmt.Fprintf(out, "Nodes:       %d\n", len(doc.Nodes))
	fmt.Fprintf(out, "Meshes:      %d\n", len(doc.Meshes))
	fmt.Fprintf(out, "Accessors:   %d\n", len(doc.Accessors))
	fmt.Fprintf(out, "Buffers:     %d\n", len(doc.Buffers))

	if err := model.ValidateDocument(doc); err != nil {
		errs := multierr.Errors(err)
		fmt.Fprintf(out, "Validation:  %d problem(s)\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(out, "  - %v\n", e)
		}
		return nil
	}
	fmt.Fprintln(out, "Validation:  ok")
	fmt.Fprintf(out, "Triangle primitives: %d\n", model.CountTrianglePrimitives(doc))
	return nil
}
