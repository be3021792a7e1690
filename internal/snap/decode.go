package snap

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// decodeGroup reads every dataset in an opened HDF5 group into a Snapshot,
// skipping names for which internal returns true. Values that cannot be
// narrowed to a scalar or a numeric array are dropped.
func decodeGroup(nc api.Group, internal func(string) bool) (Snapshot, error) {
	s := make(Snapshot)
	for _, name := range nc.ListVariables() {
		if internal(name) {
			continue
		}
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		if val, ok := decodeValue(v.Values); ok {
			s[name] = val
		}
	}
	return s, nil
}

// decodeValue narrows an untyped value from the HDF5 layer. Strings,
// booleans, compound types and arrays of rank > 2 are not representable.
func decodeValue(raw interface{}) (Value, bool) {
	switch v := raw.(type) {
	case float64:
		return Value{Scalar: v}, true
	case float32:
		return Value{Scalar: float64(v), Elem: Float32}, true
	case []float64:
		return vector64(v)
	case []float32:
		return vector32(v)
	case [][]float64:
		return matrix64(v)
	case [][]float32:
		return matrix32(v)
	}
	return Value{}, false
}

func vector64(v []float64) (Value, bool) {
	if len(v) == 0 {
		return Value{}, false
	}
	if len(v) == 1 {
		return Value{Scalar: v[0]}, true
	}
	arr := sparse.ZerosDense(len(v))
	copy(arr.Elements, v)
	return Value{Array: arr}, true
}

func vector32(v []float32) (Value, bool) {
	if len(v) == 0 {
		return Value{}, false
	}
	if len(v) == 1 {
		return Value{Scalar: float64(v[0]), Elem: Float32}, true
	}
	arr := sparse.ZerosDense(len(v))
	for i, val := range v {
		arr.Elements[i] = float64(val)
	}
	return Value{Array: arr, Elem: Float32}, true
}

// matrix64 converts a 2-D dataset. MATLAB and Julia store arrays
// column-major while HDF5 reports row-major dims, so a stored (Nx, Ny)
// matrix arrives here as Ny rows of Nx values and is transposed back.
func matrix64(rows [][]float64) (Value, bool) {
	ny := len(rows)
	if ny == 0 || len(rows[0]) == 0 {
		return Value{}, false
	}
	nx := len(rows[0])
	if nx == 1 && ny == 1 {
		// 1x1 matrices are how MATLAB stores scalars.
		return Value{Scalar: rows[0][0]}, true
	}
	arr := sparse.ZerosDense(nx, ny)
	for j, row := range rows {
		for i, val := range row {
			arr.Set(val, i, j)
		}
	}
	return Value{Array: arr}, true
}

func matrix32(rows [][]float32) (Value, bool) {
	ny := len(rows)
	if ny == 0 || len(rows[0]) == 0 {
		return Value{}, false
	}
	nx := len(rows[0])
	if nx == 1 && ny == 1 {
		return Value{Scalar: float64(rows[0][0]), Elem: Float32}, true
	}
	arr := sparse.ZerosDense(nx, ny)
	for j, row := range rows {
		for i, val := range row {
			arr.Set(float64(val), i, j)
		}
	}
	return Value{Array: arr, Elem: Float32}, true
}
