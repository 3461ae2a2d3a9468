// Package pipeline runs the load, model, fit and report stages for each
// category of the FEWZ dimuon mass spectrum.
package pipeline

import (
	"errors"
	"fmt"
	"log"

	"go-hep.org/x/hep/hbook"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
	"github.com/HamletTheHamster/fewzfit/internal/report"
	"github.com/HamletTheHamster/fewzfit/internal/rootio"
	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// Stages of a category's processing, used to label errors.
const (
	StageLoad   = "load"
	StageModel  = "model"
	StageFit    = "fit"
	StageReport = "report"
)

// Source yields category histograms from an open input.
type Source interface {
	Histogram(category string) (*hbook.H1D, error)
	Close() error
}

// Opener opens the input file at path.
type Opener func(path string) (Source, error)

// OpenROOT opens a ROOT file with rootio.
func OpenROOT(path string) (Source, error) {
	f, err := rootio.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Reporter prints and renders one category's result.
type Reporter interface {
	Report(header string, o *report.Overlay, r *fit.Result) ([]string, error)
}

// StageError ties an error to the category and stage that produced it.
type StageError struct {
	Category string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("category %s: %s: %v", e.Category, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// SpectrumFitter owns the input handle and histogram of one category.
type SpectrumFitter struct {
	InFile   string
	Category string
	Log      *log.Logger

	src  Source
	hist *hbook.H1D
}

// NewSpectrumFitter opens path and loads the category's histogram.
func NewSpectrumFitter(
	open Opener,
	path, category string,
) (
	*SpectrumFitter, error,
) {

	src, err := open(path)
	if err != nil {
		return nil, err
	}

	h, err := src.Histogram(category)
	if err != nil {
		src.Close()
		return nil, err
	}

	return &SpectrumFitter{
		InFile:   path,
		Category: category,
		src:      src,
		hist:     h,
	}, nil
}

func (s *SpectrumFitter) Histogram() *hbook.H1D { return s.hist }

// Close releases the input handle.
func (s *SpectrumFitter) Close() error {
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}

// FitAndSave builds the model of the given kind, fits it to the histogram
// and hands the result to rep.
func (s *SpectrumFitter) FitAndSave(
	kind spectrum.Kind,
	fitter fit.Fitter,
	rep Reporter,
	strict bool,
) (
	*fit.Result, error,
) {

	x, err := spectrum.NewMassVariable(s.hist)
	if err != nil {
		return nil, s.fail(StageModel, err)
	}
	data, err := spectrum.NewDataset(x, s.hist)
	if err != nil {
		return nil, s.fail(StageModel, err)
	}
	model, err := spectrum.NewModel(kind, x)
	if err != nil {
		return nil, s.fail(StageModel, err)
	}

	res, err := fitter.Fit(model, data)
	if err != nil {
		return nil, s.fail(StageFit, err)
	}
	if !res.Converged {
		if strict {
			return res, s.fail(StageFit, fmt.Errorf("%w: status %s", fit.ErrNotConverged, res.Status))
		}
		s.logger().Printf("%s: fit status %s, reporting values as they are", s.Category, res.Status)
	}

	o := report.NewOverlay(s.Category, model, data, res)
	if _, err := rep.Report(s.InFile+" "+s.Category, o, res); err != nil {
		return res, s.fail(StageReport, err)
	}

	return res, nil
}

func (s *SpectrumFitter) logger() *log.Logger {
	if s.Log == nil {
		return log.Default()
	}
	return s.Log
}

func (s *SpectrumFitter) fail(stage string, err error) error {
	return &StageError{Category: s.Category, Stage: stage, Err: err}
}

// Runner processes categories one after the other.
type Runner struct {
	Open            Opener
	Input           string
	Kind            spectrum.Kind
	Fitter          fit.Fitter
	Reporter        Reporter
	Strict          bool
	ContinueOnError bool
	Log             *log.Logger
}

// Run processes each category in order. Without ContinueOnError it stops at
// the first failing category; with it, failures are logged and joined into
// the returned error.
func (r *Runner) Run(
	categories []string,
) (
	error,
) {

	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %v", spectrum.ErrUnknownKind, r.Kind)
	}

	logger := r.logger()

	var errs []error
	for _, category := range categories {
		err := r.runOne(category)
		if err == nil {
			continue
		}
		if !r.ContinueOnError {
			return err
		}
		logger.Printf("skipping %s: %v", category, err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (r *Runner) logger() *log.Logger {
	if r.Log == nil {
		return log.Default()
	}
	return r.Log
}

func (r *Runner) runOne(
	category string,
) (
	err error,
) {

	sf, err := NewSpectrumFitter(r.Open, r.Input, category)
	if err != nil {
		return &StageError{Category: category, Stage: StageLoad, Err: err}
	}
	sf.Log = r.logger()
	defer func() {
		if cerr := sf.Close(); err == nil && cerr != nil {
			err = &StageError{Category: category, Stage: StageLoad, Err: cerr}
		}
	}()

	_, err = sf.FitAndSave(r.Kind, r.Fitter, r.Reporter, r.Strict)
	return err
}
