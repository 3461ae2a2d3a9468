package cli

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-hep.org/x/hep/hbook"

	"github.com/HamletTheHamster/fewzfit/internal/config"
	"github.com/HamletTheHamster/fewzfit/internal/pipeline"
	"github.com/HamletTheHamster/fewzfit/internal/spectrum"
)

type memSource struct {
	hists map[string]*hbook.H1D
}

func (s memSource) Histogram(category string) (*hbook.H1D, error) {
	h, ok := s.hists[category]
	if !ok {
		return nil, os.ErrNotExist
	}
	return h, nil
}

func (memSource) Close() error { return nil }

// falling fills exp(-(5u - u²)), u = m/100, over 110-160 GeV.
func falling() *hbook.H1D {
	h := hbook.NewH1D(40, 110, 160)
	for _, bin := range h.Binning.Bins {
		u := bin.XMid() / 100
		h.Fill(bin.XMid(), math.Round(5e4*math.Exp(-(5*u-u*u))))
	}
	return h
}

func execute(t *testing.T, opens *int, args ...string) (string, string, error) {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	src := memSource{hists: map[string]*hbook.H1D{"Wide": falling(), "Narrow": falling()}}
	open := func(path string) (pipeline.Source, error) {
		*opens++
		return src, nil
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(cfg, open)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommandFitsCategories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "img")
	var opens int

	out, _, err := execute(t, &opens, "--categories", "Wide,Narrow", "--outdir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "program is running ...\n") {
		t.Errorf("output starts with %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, c := range []string{"Wide", "Narrow"} {
		if !strings.Contains(out, " "+c+"\n") {
			t.Errorf("no block for %s:\n%s", c, out)
		}
		for _, suffix := range []string{".png", "_log.png"} {
			if _, err := os.Stat(filepath.Join(dir, c+"_fewz_fit_c"+suffix)); err != nil {
				t.Error(err)
			}
		}
	}
	if opens != 2 {
		t.Errorf("opens = %d, want 2", opens)
	}
}

func TestRootCommandRejectsUnknownFunction(t *testing.T) {
	var opens int
	_, _, err := execute(t, &opens, "--function", "gaussian", "--outdir", t.TempDir())
	if !errors.Is(err, spectrum.ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
	if opens != 0 {
		t.Errorf("input opened %d times", opens)
	}
}

func TestRootCommandEnvDefaults(t *testing.T) {
	t.Setenv("FEWZFIT_CATEGORIES", "Narrow")
	t.Setenv("FEWZFIT_OUTPUT_DIR", filepath.Join(t.TempDir(), "env"))
	t.Setenv("FEWZFIT_METHOD", "chi2")

	var opens int
	out, _, err := execute(t, &opens)
	if err != nil {
		t.Fatal(err)
	}
	if opens != 1 || !strings.Contains(out, " Narrow\n") || strings.Contains(out, " Wide\n") {
		t.Errorf("opens=%d output:\n%s", opens, out)
	}
}

func TestRootCommandMissingCategory(t *testing.T) {
	var opens int
	_, _, err := execute(t, &opens, "--categories", "Wide,1Jet_Wide,Narrow", "--outdir", t.TempDir())

	var se *pipeline.StageError
	if !errors.As(err, &se) || se.Category != "1Jet_Wide" || se.Stage != pipeline.StageLoad {
		t.Fatalf("err = %v", err)
	}
	if opens != 2 {
		t.Errorf("opens = %d, want 2", opens)
	}

	_, logs, err := execute(t, &opens, "--categories", "Wide,1Jet_Wide,Narrow", "--outdir", t.TempDir(), "--continue")
	if err == nil || !strings.Contains(logs, "skipping 1Jet_Wide") {
		t.Fatalf("err = %v, logs = %q", err, logs)
	}
}
