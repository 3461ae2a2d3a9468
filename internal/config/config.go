// Package config holds the fitter's run configuration.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
	"github.com/HamletTheHamster/fewzfit/internal/report"
	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

// DefaultCategories are the categories produced by categorize.
var DefaultCategories = []string{
	"Wide",
	"Narrow",
	"1Jet_Wide",
	"1Jet_Narrow",
	"Central_Central_Wide",
	"Central_Central_Narrow",
	"Central_Not_Central_Wide",
	"Central_Not_Central_Narrow",
}

// Config is read from the environment and then overridden by flags.
type Config struct {
	InputPath       string   `env:"FEWZFIT_INPUT" envDefault:"rootfiles/00111_overlay_fewz_dimu_mass_DY-FEWZ_MC_categories_3990.root"`
	Categories      []string `env:"FEWZFIT_CATEGORIES" envSeparator:","`
	Function        string   `env:"FEWZFIT_FUNCTION" envDefault:"double-exponential"`
	Method          string   `env:"FEWZFIT_METHOD" envDefault:"likelihood"`
	Renderer        string   `env:"FEWZFIT_RENDERER" envDefault:"gonum"`
	OutputDir       string   `env:"FEWZFIT_OUTPUT_DIR" envDefault:"img"`
	Strict          bool     `env:"FEWZFIT_STRICT"`
	ContinueOnError bool     `env:"FEWZFIT_CONTINUE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(c.Categories) == 0 {
		c.Categories = slices.Clone(DefaultCategories)
	}
	return c, nil
}

// Kind parses the function selector.
func (c Config) Kind() (spectrum.Kind, error) {
	return spectrum.ParseKind(c.Function)
}

// Validate checks every field that selects behaviour by name.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("config: input path is empty")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: no categories")
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("config: empty category name")
		}
	}
	if _, err := c.Kind(); err != nil {
		return fmt.Errorf("config: function: %w", err)
	}
	if _, err := fit.New(c.Method); err != nil {
		return fmt.Errorf("config: method: %w", err)
	}
	if _, err := report.NewRenderer(c.Renderer); err != nil {
		return fmt.Errorf("config: renderer: %w", err)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config: output directory is empty")
	}
	return nil
}
