// Package ncarchive writes aggregated snapshot stacks to a NetCDF archive.
package ncarchive

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/rtm0/snapstack/internal/snap"
)

// Archive dimension names.
const (
	DimX    = "x"
	DimY    = "y"
	DimTime = "TIME"
)

// AttrSet is the fixed metadata attached to one coordinate variable.
type AttrSet struct {
	LongName string
	Units    string
}

// CoordAttrs holds the attribute sets for the three coordinate variables.
type CoordAttrs struct {
	X    AttrSet
	Y    AttrSet
	Time AttrSet
}

// DefaultAttrs returns the coordinate attributes written unless overridden.
func DefaultAttrs() CoordAttrs {
	return CoordAttrs{
		X:    AttrSet{LongName: "x-coordinate", Units: "m"},
		Y:    AttrSet{LongName: "y-coordinate", Units: "m"},
		Time: AttrSet{LongName: "time", Units: "years"},
	}
}

// Field is one aggregated variable: a (Nx, Ny, Nf) stack of per-snapshot
// slices plus the numeric type it was stored with in the snapshots.
type Field struct {
	Data *sparse.DenseArray
	Elem snap.ElemType
}

// Write creates the archive at path, replacing any existing file. It defines
// the x, y and TIME dimensions and coordinate variables, then one
// (x, y, TIME) variable per field. Fields are written in sorted name order
// so that repeated runs over identical inputs produce identical files.
func Write(path string, x, y, t []float64, attrs CoordAttrs, fields map[string]Field) (err error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old archive %s: %w", path, err)
	}

	h := cdf.NewHeader([]string{DimX, DimY, DimTime}, []int{len(x), len(y), len(t)})
	h.AddVariable(DimX, []string{DimX}, []float64{0})
	h.AddAttribute(DimX, "longname", attrs.X.LongName)
	h.AddAttribute(DimX, "units", attrs.X.Units)
	h.AddVariable(DimY, []string{DimY}, []float64{0})
	h.AddAttribute(DimY, "longname", attrs.Y.LongName)
	h.AddAttribute(DimY, "units", attrs.Y.Units)
	h.AddVariable(DimTime, []string{DimTime}, []float64{0})
	h.AddAttribute(DimTime, "longname", attrs.Time.LongName)
	h.AddAttribute(DimTime, "units", attrs.Time.Units)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch fields[name].Elem {
		case snap.Float32:
			h.AddVariable(name, []string{DimX, DimY, DimTime}, []float32{0})
		default:
			h.AddVariable(name, []string{DimX, DimY, DimTime}, []float64{0})
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("defining archive header for %s: %w", path, err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", path, err)
	}
	defer func() {
		if cerr := ff.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", path, err)
	}
	for name, axis := range map[string][]float64{DimX: x, DimY: y, DimTime: t} {
		if err := writeVar(f, name, axis); err != nil {
			return err
		}
	}
	for _, name := range names {
		fld := fields[name]
		if fld.Elem == snap.Float32 {
			data := make([]float32, len(fld.Data.Elements))
			for i, v := range fld.Data.Elements {
				data[i] = float32(v)
			}
			if err := writeVar(f, name, data); err != nil {
				return err
			}
			continue
		}
		if err := writeVar(f, name, fld.Data.Elements); err != nil {
			return err
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("finalizing archive %s: %w", path, err)
	}
	return nil
}

func writeVar(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	w := f.Writer(name, make([]int, len(end)), end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing variable %s: %w", name, err)
	}
	return nil
}
