// Package stack aggregates a time-ordered series of snapshot files into one
// NetCDF archive indexed by (x, y, TIME).
package stack

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ctessum/sparse"

	"github.com/rtm0/snapstack/internal/ncarchive"
	"github.com/rtm0/snapstack/internal/snap"
)

// ShapeError reports a field whose stored shape disagrees with the grid in a
// snapshot after the field was accepted on the first snapshot's shape.
type ShapeError struct {
	Var  string
	Path string
	Got  []int
	Want []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("variable %q in %s has shape %v, want %v", e.Var, e.Path, e.Got, e.Want)
}

type openFunc func(path string, f snap.Format) (snap.Snapshot, error)

// Aggregator assembles per-variable (Nx, Ny, Nf) stacks from per-timestep
// snapshot files and writes them to a NetCDF archive.
type Aggregator struct {
	// Attrs are the coordinate attributes written to the archive.
	Attrs ncarchive.CoordAttrs

	logger *slog.Logger
	format snap.Format
	open   openFunc
}

// New creates an Aggregator for snapshot files of the given format.
func New(logger *slog.Logger, format snap.Format) *Aggregator {
	return &Aggregator{
		Attrs:  ncarchive.DefaultAttrs(),
		logger: logger,
		format: format,
		open:   snap.Open,
	}
}

// read decodes the snapshot at path, resolving the reader from the path's
// extension.
func (a *Aggregator) read(path string) (snap.Snapshot, error) {
	f, err := snap.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return a.open(path, f)
}

// Axes returns the 1-D coordinate axes stored in the snapshot at path. The
// snapshot holds full 2-D coordinate grids; the grid is assumed rectilinear
// (x constant along columns, y constant along rows), so the first column of
// the x grid and the first row of the y grid are the axes. The assumption is
// not verified, and later snapshots' axes are not compared against these.
func (a *Aggregator) Axes(path string) (x, y []float64, err error) {
	s, err := a.read(path)
	if err != nil {
		return nil, nil, err
	}
	xg, err := gridVar(s, snap.KeyX, path)
	if err != nil {
		return nil, nil, err
	}
	yg, err := gridVar(s, snap.KeyY, path)
	if err != nil {
		return nil, nil, err
	}
	x = make([]float64, xg.Shape[0])
	for i := range x {
		x[i] = xg.Get(i, 0)
	}
	y = make([]float64, yg.Shape[1])
	for j := range y {
		y[j] = yg.Get(0, j)
	}
	return x, y, nil
}

func gridVar(s snap.Snapshot, key, path string) (*sparse.DenseArray, error) {
	g, err := s.Array(key)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if len(g.Shape) != 2 {
		return nil, fmt.Errorf("snapshot %s: coordinate grid %q has shape %v, want a 2-D grid", path, key, g.Shape)
	}
	return g, nil
}

// Times returns each snapshot's scalar time value, in the order of paths.
func (a *Aggregator) Times(paths []string) ([]float64, error) {
	t := make([]float64, len(paths))
	for i, p := range paths {
		s, err := a.read(p)
		if err != nil {
			return nil, err
		}
		v, err := s.Scalar(snap.KeyT)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", p, err)
		}
		t[i] = v
	}
	return t, nil
}

// Aggregate stacks every field variable of the snapshots into a
// (nx, ny, nf) array, one time slice per snapshot. Candidate variables are
// the first snapshot's keys minus the coordinate keys; a candidate is
// accepted iff its shape in the first snapshot equals (nx, ny), otherwise it
// is excluded entirely with one warning. Each snapshot is re-opened once per
// accepted variable, keeping memory bounded at one stack plus one snapshot.
// An empty path list yields an empty map.
//
// An accepted variable whose shape disagrees in a later snapshot aborts the
// run with a ShapeError: the first-snapshot shape gate is kept from the
// original design, but a mid-stack mismatch cannot be written correctly and
// must not fail silently.
func (a *Aggregator) Aggregate(paths []string, nx, ny, nf int) (map[string]ncarchive.Field, error) {
	if len(paths) == 0 {
		return map[string]ncarchive.Field{}, nil
	}
	first, err := a.read(paths[0])
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(first))
	for name := range first {
		switch name {
		case snap.KeyX, snap.KeyY, snap.KeyT:
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fields := make(map[string]ncarchive.Field)
	for _, name := range names {
		val := first[name]
		if val.IsScalar() || !matchesGrid(val.Array.Shape, nx, ny) {
			a.logger.Warn("Skipping variable whose shape does not match the coordinate grid",
				"variable", name, "shape", shapeOf(val), "grid", []int{nx, ny})
			continue
		}
		out := sparse.ZerosDense(nx, ny, nf)
		for i, p := range paths {
			s := first
			if i > 0 {
				if s, err = a.read(p); err != nil {
					return nil, err
				}
			}
			slice, err := s.Array(name)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: %w", p, err)
			}
			if !matchesGrid(slice.Shape, nx, ny) {
				return nil, &ShapeError{Var: name, Path: p, Got: slice.Shape, Want: []int{nx, ny}}
			}
			for ix := 0; ix < nx; ix++ {
				for iy := 0; iy < ny; iy++ {
					out.Set(slice.Get(ix, iy), ix, iy, i)
				}
			}
		}
		fields[name] = ncarchive.Field{Data: out, Elem: val.Elem}
	}
	return fields, nil
}

func matchesGrid(shape []int, nx, ny int) bool {
	return len(shape) == 2 && shape[0] == nx && shape[1] == ny
}

func shapeOf(v snap.Value) []int {
	if v.IsScalar() {
		return nil
	}
	return v.Array.Shape
}

// Run aggregates every matching snapshot in dir into a NetCDF archive at
// outPath. A directory with no matching snapshots is a successful no-op:
// nothing is written and no error is returned.
func (a *Aggregator) Run(dir, prefix, outPath string) error {
	paths, err := Discover(dir, a.format, prefix)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		a.logger.Info("No snapshot files to aggregate",
			"dir", dir, "format", a.format.String(), "prefix", prefix)
		return nil
	}
	x, y, err := a.Axes(paths[0])
	if err != nil {
		return err
	}
	t, err := a.Times(paths)
	if err != nil {
		return err
	}
	fields, err := a.Aggregate(paths, len(x), len(y), len(t))
	if err != nil {
		return err
	}
	a.logger.Info("Writing archive", "path", outPath,
		"x", len(x), "y", len(y), "steps", len(t), "variables", len(fields))
	return ncarchive.Write(outPath, x, y, t, a.Attrs, fields)
}
