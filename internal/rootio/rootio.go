// Package rootio reads the dimuon mass histograms out of a ROOT file.
package rootio

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
)

// HistPrefix is the key prefix of the per-category FEWZ mass histograms.
const HistPrefix = "histos/fewz_dimu_mass_"

var ErrNotFound = errors.New("histogram not found")

// HistName returns the full key of the category's histogram.
func HistName(category string) string {
	return HistPrefix + category
}

// File is an open ROOT file.
type File struct {
	path string
	f    *riofs.File
}

// Open opens the ROOT file at path for reading.
func Open(
	path string,
) (
	*File, error,
) {

	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &File{path: path, f: f}, nil
}

func (f *File) Path() string { return f.path }

// Histogram returns the category's mass histogram.
func (f *File) Histogram(
	category string,
) (
	*hbook.H1D, error,
) {

	name := HistName(category)

	obj, err := riofs.Dir(f.f).Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s: %v", ErrNotFound, name, f.path, err)
	}

	h, ok := obj.(rhist.H1)
	if !ok {
		return nil, fmt.Errorf("%s in %s: %T is not a 1D histogram", name, f.path, obj)
	}

	return rootcnv.H1D(h), nil
}

func (f *File) Close() error {
	return f.f.Close()
}
