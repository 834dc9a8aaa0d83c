// Package formats provides readers for binary 3D asset containers.
// GLB is the single-file binary encoding of glTF 2.0: a 12-byte header
// followed by a JSON chunk and an optional BIN chunk.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version")
	ErrTruncatedGLBData      = errors.New("truncated GLB data")
	ErrMissingJSONChunk      = errors.New("GLB missing JSON chunk")
)

const (
	// GLBMagic is "glTF" read as a little-endian uint32.
	GLBMagic uint32 = 0x46546C67
	// GLBVersion is the only container version this reader accepts.
	GLBVersion uint32 = 2

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

// GLBChunkType identifies a chunk inside a GLB container.
type GLBChunkType uint32

const (
	GLBChunkJSON GLBChunkType = 0x4E4F534A // "JSON"
	GLBChunkBIN  GLBChunkType = 0x004E4942 // "BIN\0"
)

// String returns the chunk type tag.
func (c GLBChunkType) String() string {
	switch c {
	case GLBChunkJSON:
		return "JSON"
	case GLBChunkBIN:
		return "BIN"
	default:
		return fmt.Sprintf("Unknown(0x%08X)", uint32(c))
	}
}

// Encoding is the on-disk encoding of a glTF asset.
type Encoding int

const (
	EncodingJSON   Encoding = iota // .gltf text, buffers referenced by URI
	EncodingBinary                 // .glb single-file container
)

// String returns a human-readable encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "JSON"
	case EncodingBinary:
		return "Binary"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// GLBHeader is the fixed 12-byte container header.
type GLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32 // total file length in bytes, header included
}

// GLBChunk describes one chunk of the container.
type GLBChunk struct {
	Type   GLBChunkType
	Offset int // offset of the chunk payload from the start of the file
	Length int
}

// GLB is a parsed container: header, chunk table and the raw JSON payload.
type GLB struct {
	Header GLBHeader
	Chunks []GLBChunk
	JSON   []byte
	BIN    []byte
}

// ReadGLBHeader reads and checks the container header.
func ReadGLBHeader(r io.Reader) (GLBHeader, error) {
	var h GLBHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, ErrTruncatedGLBData
		}
		return h, fmt.Errorf("reading GLB header: %w", err)
	}
	if h.Magic != GLBMagic {
		return h, ErrInvalidGLBMagic
	}
	if h.Version != GLBVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, h.Version)
	}
	return h, nil
}

// SniffFile reports whether the file at path is a GLB container.
// Anything that does not start with the GLB magic is treated as JSON;
// whether it actually parses is left to the glTF decoder.
func SniffFile(path string) (Encoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return EncodingJSON, err
	}
	defer f.Close()

	var magic [4]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return EncodingJSON, err
	}
	if n == len(magic) && binary.LittleEndian.Uint32(magic[:]) == GLBMagic {
		return EncodingBinary, nil
	}
	return EncodingJSON, nil
}

// ParseGLB parses a GLB container from data.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < glbHeaderSize {
		return nil, ErrTruncatedGLBData
	}

	r := bytes.NewReader(data)
	header, err := ReadGLBHeader(r)
	if err != nil {
		return nil, err
	}
	if int(header.Length) > len(data) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedGLBData, header.Length, len(data))
	}

	glb := &GLB{Header: header}
	offset := glbHeaderSize
	end := int(header.Length)

	for offset+glbChunkHeaderSize <= end {
		length := int(binary.LittleEndian.Uint32(data[offset:]))
		typ := GLBChunkType(binary.LittleEndian.Uint32(data[offset+4:]))
		payload := offset + glbChunkHeaderSize

		if length < 0 || payload+length > end {
			return nil, fmt.Errorf("parsing chunk %d: %w", len(glb.Chunks), ErrTruncatedGLBData)
		}

		glb.Chunks = append(glb.Chunks, GLBChunk{Type: typ, Offset: payload, Length: length})
		switch typ {
		case GLBChunkJSON:
			if glb.JSON == nil {
				glb.JSON = data[payload : payload+length]
			}
		case GLBChunkBIN:
			if glb.BIN == nil {
				glb.BIN = data[payload : payload+length]
			}
		}
		offset = payload + length
	}

	if len(glb.Chunks) == 0 || glb.Chunks[0].Type != GLBChunkJSON {
		return nil, ErrMissingJSONChunk
	}

	return glb, nil
}

// ParseGLBFile reads and parses a GLB file from disk.
func ParseGLBFile(path string) (*GLB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return ParseGLB(data)
}

// HasBIN returns true if the container carries an embedded binary buffer.
func (g *GLB) HasBIN() bool {
	return g.BIN != nil
}
