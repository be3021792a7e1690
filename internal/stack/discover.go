package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtm0/snapstack/internal/snap"
)

// Discover lists the snapshot files in dir whose names start with prefix and
// carry the format's extension, in the lexicographic order of the directory
// listing. An empty result is not an error.
//
// Chronological aggregation order therefore depends on filenames sorting the
// same way as the snapshot times, which holds for zero-padded step numbers.
func Discover(dir string, f snap.Format, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot directory: %w", err)
	}
	suffix := "." + f.String()
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
