package model

import (
	"errors"
	"fmt"
)

// Load errors.
var (
	ErrSceneCount    = errors.New("asset must contain exactly one scene")
	ErrNotBinary     = errors.New("asset is not a binary glTF (GLB) container")
	ErrMeshInvariant = errors.New("mesh invariant violated")

	// Structural validation errors.
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrMultipleParents = errors.New("node has more than one parent")
	ErrNodeCycle       = errors.New("node graph contains a cycle")
	ErrBufferRange     = errors.New("data range exceeds buffer")
	ErrInvalidCount    = errors.New("invalid element count")
	ErrStride          = errors.New("byte stride smaller than element size")
	ErrCountMismatch   = errors.New("attribute count differs from POSITION")
	ErrIndexFormat     = errors.New("invalid index accessor format")
	ErrTriangleCount   = errors.New("triangle primitive element count is not a multiple of 3")
)

// ErrorKind classifies a fatal load failure.
type ErrorKind int

const (
	KindUnreadable  ErrorKind = iota // file missing or unreadable
	KindParse                        // malformed container or JSON
	KindValidation                   // structurally invalid document
	KindUnsupported                  // multi-scene or non-binary asset
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindUnreadable:
		return "unreadable"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// LoadError is returned by Load for every fatal failure. No Model is
// returned alongside it.
type LoadError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *LoadError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}
