// Package gnuplot renders overlays through a gnuplot process with glot.
//
// The renderer is only compiled with -tags gnuplot, since glot looks for
// the gnuplot binary when the program starts and panics if it is missing.
// Importing the package registers the "gnuplot" renderer with report.
package gnuplot
