// Package snap decodes per-timestep simulation snapshot files into their
// named values.
package snap

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Coordinate keys every snapshot carries alongside its field variables.
const (
	KeyX = "x"
	KeyY = "y"
	KeyT = "t"
)

// ElemType identifies the numeric type a value was stored with.
type ElemType int

const (
	Float64 ElemType = iota
	Float32
)

// Value is one decoded snapshot entry: a scalar or a numeric array. Arrays
// are held as float64 regardless of the stored type; Elem records the stored
// type so the archive can be written back with matching precision.
type Value struct {
	Scalar float64
	Array  *sparse.DenseArray
	Elem   ElemType
}

// IsScalar reports whether the value is a scalar rather than an array.
func (v Value) IsScalar() bool {
	return v.Array == nil
}

// Snapshot is the decoded content of one snapshot file, keyed by the names
// the simulation stored its values under.
type Snapshot map[string]Value

// MissingKeyError reports a snapshot without a required entry.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("snapshot has no %q entry", e.Key)
}

// Scalar returns the scalar stored under key.
func (s Snapshot) Scalar(key string) (float64, error) {
	v, ok := s[key]
	if !ok {
		return 0, &MissingKeyError{Key: key}
	}
	if !v.IsScalar() {
		return 0, fmt.Errorf("entry %q is an array of shape %v, not a scalar", key, v.Array.Shape)
	}
	return v.Scalar, nil
}

// Array returns the array stored under key.
func (s Snapshot) Array(key string) (*sparse.DenseArray, error) {
	v, ok := s[key]
	if !ok {
		return nil, &MissingKeyError{Key: key}
	}
	if v.IsScalar() {
		return nil, fmt.Errorf("entry %q is a scalar, not an array", key)
	}
	return v.Array, nil
}
