// Package domain holds the error taxonomy shared by the augmentation packages.
//
// Every failure surfaced by the pipeline is an *OpError carrying an ErrorKind.
// Callers classify with errors.Is against the sentinels below or with IsKind.
//
// How each kind is treated:
//   - KindConfig, KindRange, KindInvalidGeometry: fail fast at construction or
//     on the first offending call
//   - KindIO: the image is skipped and the batch continues
//   - KindTransform: the variant is skipped and the remaining variants run
//   - KindTypeMismatch: aborts the unit and propagates to its caller
//   - KindMergePremature: merge was requested without a completed run
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrConfig          = errors.New("invalid configuration")
	ErrIO              = errors.New("image io failure")
	ErrTransform       = errors.New("transform failed")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrRangeViolation  = errors.New("value out of range")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrMergePremature  = errors.New("merge before completion")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindConfig          ErrorKind = "config"
	KindIO              ErrorKind = "io"
	KindTransform       ErrorKind = "transform"
	KindTypeMismatch    ErrorKind = "type_mismatch"
	KindRange           ErrorKind = "range_violation"
	KindInvalidGeometry ErrorKind = "invalid_geometry"
	KindMergePremature  ErrorKind = "merge_premature"
)

var sentinels = map[ErrorKind]error{
	KindConfig:          ErrConfig,
	KindIO:              ErrIO,
	KindTransform:       ErrTransform,
	KindTypeMismatch:    ErrTypeMismatch,
	KindRange:           ErrRangeViolation,
	KindInvalidGeometry: ErrInvalidGeometry,
	KindMergePremature:  ErrMergePremature,
}

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// IsKind helps callers classify errors without knowing which package raised them.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// Errorf builds an *OpError whose cause is a formatted message.
func Errorf(op string, kind ErrorKind, format string, args ...any) *OpError {
	return &OpError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches op and kind to err. A nil err stays nil.
func Wrap(op string, kind ErrorKind, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Path: path, Err: err}
}
