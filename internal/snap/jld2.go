package snap

import (
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

// jld2Reader decodes Julia JLD2 snapshot files, which are plain HDF5
// containers with the stored values as root-level datasets.
type jld2Reader struct{}

func (jld2Reader) Read(path string) (Snapshot, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()
	return decodeGroup(nc, isJLD2Internal)
}

// isJLD2Internal reports whether name is JLD2 type metadata rather than a
// stored value.
func isJLD2Internal(name string) bool {
	return strings.HasPrefix(name, "_types")
}
