// Package report prints fit results and renders data-plus-fit figures.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
)

var ErrUnknownRenderer = errors.New("unknown renderer")

// Renderer draws an overlay into an image file.
type Renderer interface {
	Render(o *Overlay, path string, logY bool) error
}

var renderers = map[string]func() Renderer{
	"gonum": func() Renderer { return NewPlotter() },
}

// Register makes a renderer available to NewRenderer under name. It is
// meant to be called from init.
func Register(name string, fn func() Renderer) {
	renderers[name] = fn
}

// NewRenderer returns the renderer registered under name. "gonum" is always
// available; "gnuplot" only in binaries built with -tags gnuplot.
func NewRenderer(
	name string,
) (
	Renderer, error,
) {

	if name == "" {
		name = "gonum"
	}
	if fn, ok := renderers[name]; ok {
		return fn(), nil
	}
	if name == "gnuplot" {
		return nil, fmt.Errorf("%w: %q (build with -tags gnuplot)", ErrUnknownRenderer, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

// CanvasName is the base name of a category's images.
func CanvasName(category string) string {
	return category + "_fewz_fit_c"
}

// ImagePaths returns the linear and log-y image paths for a category.
func ImagePaths(outDir, category string) (linear, logY string) {
	name := CanvasName(category)
	return filepath.Join(outDir, name+".png"), filepath.Join(outDir, name+"_log.png")
}

// Reporter prints a result block and saves the two images of a category.
type Reporter struct {
	Console  *Console
	Renderer Renderer
	OutDir   string
}

// Report prints r and renders o, returning the paths of the written images.
func (rep *Reporter) Report(
	header string,
	o *Overlay,
	r *fit.Result,
) (
	[]string, error,
) {

	if err := rep.Console.Print(header, r); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}

	// Make output folder if it doesn't already exist
	if err := os.MkdirAll(rep.OutDir, 0755); err != nil {
		return nil, err
	}

	linear, logY := ImagePaths(rep.OutDir, o.Category)

	if err := rep.Renderer.Render(o, linear, false); err != nil {
		return nil, err
	}
	if err := rep.Renderer.Render(o, logY, true); err != nil {
		return []string{linear}, err
	}

	return []string{linear, logY}, nil
}
