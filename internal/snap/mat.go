package snap

import (
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
)

// matReader decodes MATLAB v7.3 snapshot files. v7.3 files are HDF5
// containers with a 512-byte text userblock ahead of the superblock, which
// defeats the magic-byte probe in netcdf.Open, so the file goes straight to
// the HDF5 reader.
type matReader struct{}

func (matReader) Read(path string) (Snapshot, error) {
	nc, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()
	return decodeGroup(nc, isMatInternal)
}

// isMatInternal reports whether name is MATLAB bookkeeping rather than a
// stored matrix. The v7.3 writer keeps cell and string payloads under
// #-prefixed entries such as "#refs#".
func isMatInternal(name string) bool {
	return strings.HasPrefix(name, "#")
}
