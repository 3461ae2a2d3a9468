package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/HamletTheHamster/fewzfit/internal/fit"
)

var separator = strings.Repeat("=", 80)

// Console writes the per-category result block.
type Console struct {
	W io.Writer
}

// Print writes the floating parameters with five decimals and the
// chi-square per degree of freedom with three, between two separator lines.
func (c *Console) Print(
	header string,
	r *fit.Result,
) (
	error,
) {

	var b strings.Builder

	fmt.Fprintln(&b, separator)
	if header != "" {
		fmt.Fprintln(&b, header)
	}
	for _, e := range r.Floating() {
		line := fmt.Sprintf("%-8s:     %7.5f +/-%-7.5f %s", e.Name, e.Value, e.Error, e.Unit)
		fmt.Fprintln(&b, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(&b, "%-8s:     %7.3f\n", "chi2", r.ChiSquareNDF)
	if !r.Converged {
		fmt.Fprintf(&b, "%-8s:     %s (not converged)\n", "status", r.Status)
	}
	fmt.Fprintln(&b, separator)

	_, err := io.WriteString(c.W, b.String())
	return err
}
