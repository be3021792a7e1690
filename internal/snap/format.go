package snap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a snapshot serialization format.
type Format int

const (
	FormatMat Format = iota
	FormatJLD2
)

// String returns the format tag, which is also the file extension snapshot
// files of this format carry.
func (f Format) String() string {
	switch f {
	case FormatMat:
		return "mat"
	case FormatJLD2:
		return "jld2"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// UnsupportedFormatError reports a format tag with no registered reader.
type UnsupportedFormatError struct {
	Tag string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("snapshot format %q is not supported", e.Tag)
}

// ParseFormat resolves a format tag.
func ParseFormat(tag string) (Format, error) {
	switch tag {
	case "mat":
		return FormatMat, nil
	case "jld2":
		return FormatJLD2, nil
	}
	return 0, &UnsupportedFormatError{Tag: tag}
}

// FormatForPath derives the snapshot format from the path's extension.
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("path %q has no extension to derive a format from", path)
	}
	return ParseFormat(strings.TrimPrefix(ext, "."))
}

// Reader decodes one snapshot file into its named values.
type Reader interface {
	Read(path string) (Snapshot, error)
}

var readers = map[Format]Reader{
	FormatMat:  matReader{},
	FormatJLD2: jld2Reader{},
}

// Open decodes the snapshot at path using the reader registered for f.
func Open(path string, f Format) (Snapshot, error) {
	r, ok := readers[f]
	if !ok {
		return nil, &UnsupportedFormatError{Tag: f.String()}
	}
	s, err := r.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s snapshot %s: %w", f, path, err)
	}
	return s, nil
}
