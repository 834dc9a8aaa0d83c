package model

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TangentMode selects how TANGENT vectors are baked into world space.
type TangentMode int

const (
	// TangentLinear transforms xyz by the linear part of the world matrix,
	// renormalizes, and keeps w (handedness) as stored.
	TangentLinear TangentMode = iota
	// TangentLegacy treats the tangent as a homogeneous point with w=1, so
	// translation leaks into xyz. Kept for parity with older exports.
	TangentLegacy
)

// String returns the mode name accepted by ParseTangentMode.
func (m TangentMode) String() string {
	switch m {
	case TangentLinear:
		return "linear"
	case TangentLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseTangentMode parses "linear" or "legacy" (case-insensitive).
// An empty string selects TangentLinear.
func ParseTangentMode(s string) (TangentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return TangentLinear, nil
	case "legacy":
		return TangentLegacy, nil
	default:
		return TangentLinear, fmt.Errorf("unknown tangent mode %q (want linear or legacy)", s)
	}
}

// Option configures a Load call.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	tangent TangentMode
}

func newOptions(opts []Option) options {
	o := options{
		logger:  zap.NewNop(),
		tangent: TangentLinear,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger routes load diagnostics to l. A nil logger disables them.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

// WithTangentMode selects the tangent baking rule.
func WithTangentMode(m TangentMode) Option {
	return func(o *options) {
		o.tangent = m
	}
}
