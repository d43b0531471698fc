// Command vankampen computes a finite presentation of the fundamental
// group of a plane algebraic curve complement.
//
// Usage:
//
//	vankampen [flags] <prepare|segments|finish|solve>
//
// prepare isolates the discriminant's branch points and writes a
// resumable snapshot; segments tracks one branch point's monodromy
// braid (or all of them, concurrently, with -all); finish reads the
// snapshot and segment files back and assembles the presentation.
// solve runs all three stages in one process, for curves small enough
// not to need the split.
//
// Examples:
//
//	vankampen -curve cusp solve
//	vankampen -curve three-lines -name out prepare
//	vankampen -name out -all segments
//	vankampen -name out finish
//	vankampen -list
package main

import (
	"context"
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/vankampen"
	"github.com/cwbudde/vankampen/internal/curvealg"
	"github.com/cwbudde/vankampen/internal/freegroup"
	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

type curveEntry struct {
	name string
	doc  string
	make func() curvealg.Bivariate
}

var registry = []curveEntry{
	{"cusp", "y^2 - x^3, the simplest cuspidal curve", cuspCurve},
	{"three-lines", "(x+y)(x-y)(x+2y), three concurrent lines", threeLinesCurve},
	{"two-vertical", "x^2 - 1, two parallel vertical lines", twoVerticalCurve},
	{"nongeneric", "y(y-1)(y-x), the non-generic three-line arrangement", nongenericCurve},
	{"tacnode", "x^3 - y^2, the cusp with opposite sign, one branch point at x=0", tacnodeCurve},
	{"two-conics", "(x^2+y^2-1)(x^2+y^2-4), two disjoint concentric conics", twoConicsCurve},
}

func findCurve(name string) (curveEntry, bool) {
	for _, e := range registry {
		if e.name == name {
			return e, true
		}
	}
	return curveEntry{}, false
}

func main() {
	name := flag.String("name", "", "base name for snapshot/segment files (required for prepare/segments/finish)")
	curveName := flag.String("curve", "cusp", "named curve to use (see -list)")
	basepointRe := flag.Float64("base-re", 0, "real part of the base point")
	basepointIm := flag.Float64("base-im", -5, "imaginary part of the base point")
	idx := flag.Int("idx", 0, "branch point index for segments (ignored with -all)")
	all := flag.Bool("all", false, "segments: process every branch point concurrently")
	approx := flag.Bool("approx", false, "opt into the heuristic approximate monodromy follower")
	verbosity := flag.Int("v", 0, "trace verbosity: 0 silent, 1 phases, 2 detail")
	list := flag.Bool("list", false, "list available named curves")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vankampen [flags] <prepare|segments|finish|solve>\n\n")
		fmt.Fprintf(os.Stderr, "Computes a finite presentation of pi_1(C^2 - C) for a named plane curve.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vankampen -curve cusp solve\n")
		fmt.Fprintf(os.Stderr, "  vankampen -curve three-lines -name out prepare\n")
		fmt.Fprintf(os.Stderr, "  vankampen -name out -all segments\n")
		fmt.Fprintf(os.Stderr, "  vankampen -name out finish\n")
	}
	flag.Parse()

	if *list {
		printList()
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	entry, ok := findCurve(*curveName)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown curve %q (use -list to see available)\n", *curveName)
		os.Exit(1)
	}
	curve := entry.make()
	basepoint := complex(*basepointRe, *basepointIm)
	cfg := vankampen.ApplyOptions(
		vankampen.WithMonodromyApprox(*approx),
		vankampen.WithVerbosity(*verbosity),
	)
	tr := vankampen.NewTracer(os.Stderr, *verbosity)

	switch args[0] {
	case "prepare":
		requireName(*name)
		if _, err := vankampen.Prepare(*name, curve, basepoint, cfg, tr); err != nil {
			fail(err)
		}
	case "segments":
		requireName(*name)
		snap := readSnapshot(*name)
		if *all {
			ctx := context.Background()
			if _, err := vankampen.SegmentsConcurrent(ctx, *name, snap, curve, tr); err != nil {
				fail(err)
			}
			return
		}
		if _, err := vankampen.Segments(*name, snap, curve, *idx, tr); err != nil {
			fail(err)
		}
	case "finish":
		requireName(*name)
		snap := readSnapshot(*name)
		res, err := vankampen.Finish(*name, snap, nil, tr)
		if err != nil {
			fail(err)
		}
		printPresentation(res.Presentation)
	case "solve":
		res, err := solve(*name, curve, basepoint, cfg, tr)
		if err != nil {
			fail(err)
		}
		printPresentation(res.Presentation)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown subcommand %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// solve runs prepare, every segment, and finish in one process, using
// an in-memory snapshot and segment list instead of round-tripping
// through the gob files (name may still be empty; passing one writes
// the stage files too, so a solve run can be resumed from any stage
// later by the split subcommands).
func solve(name string, curve curvealg.Bivariate, basepoint complex128, cfg vankampen.Config, tr vankampen.Tracer) (*vankampen.Result, error) {
	snap, err := vankampen.Prepare(name, curve, basepoint, cfg, tr)
	if err != nil {
		return nil, err
	}
	segs, err := vankampen.SegmentsConcurrent(context.Background(), name, snap, curve, tr)
	if err != nil {
		return nil, err
	}
	return vankampen.Finish(name, snap, segs, tr)
}

func requireName(name string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "error: -name is required for this subcommand\n")
		os.Exit(2)
	}
}

func readSnapshot(name string) *vankampen.PrepSnapshot {
	var snap vankampen.PrepSnapshot
	f, err := os.Open(name + ".prep")
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		fail(err)
	}
	return &snap
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func printList() {
	for _, e := range registry {
		fmt.Printf("%-14s %s\n", e.name, e.doc)
	}
}

func printPresentation(p freegroup.Presentation) {
	fmt.Printf("rank %d, %d relators\n", p.Rank, len(p.Relators))
	for i := 1; i <= p.Rank; i++ {
		fmt.Printf("  generator g%d\n", i)
	}
	for _, r := range p.Relators {
		fmt.Printf("  %s = 1\n", relatorString(r))
	}
}

func relatorString(w freegroup.Word) string {
	if len(w.Gens) == 0 {
		return "1"
	}
	parts := make([]string, len(w.Gens))
	for i, g := range w.Gens {
		if g < 0 {
			parts[i] = fmt.Sprintf("g%d^-1", -g)
		} else {
			parts[i] = fmt.Sprintf("g%d", g)
		}
	}
	return strings.Join(parts, " ")
}

// poly builds a upoly.Poly over numfield.Scalar from ascending-degree
// real coefficients, the CLI's named curves being defined over the
// rationals.
func poly(coeffs ...float64) upoly.Poly {
	c := make([]numfield.Scalar, len(coeffs))
	for i, v := range coeffs {
		c[i] = numfield.FromComplex128(complex(v, 0))
	}
	return upoly.New(c)
}

func cuspCurve() curvealg.Bivariate {
	// y^2 - x^3, collected by power of y.
	return curvealg.New([]upoly.Poly{
		poly(0, 0, 0, -1),
		{},
		poly(1),
	})
}

func threeLinesCurve() curvealg.Bivariate {
	// (x+y)(x-y)(x+2y) = x^3 + 2x^2 y - x y^2 - 2y^3.
	return curvealg.New([]upoly.Poly{
		poly(0, 0, 0, 1),
		poly(0, 0, 2),
		poly(0, -1),
		poly(-2),
	})
}

func twoVerticalCurve() curvealg.Bivariate {
	// x^2 - 1, independent of y.
	return curvealg.New([]upoly.Poly{
		poly(-1, 0, 1),
	})
}

func nongenericCurve() curvealg.Bivariate {
	// y(y-1)(y-x), the x<->y relabeling of x(x-1)(x-y): three sheets
	// over generic x, branch points at x=0 and x=1.
	return curvealg.New([]upoly.Poly{
		poly(0),
		poly(0, 1),
		poly(-1, -1),
		poly(1),
	})
}

func tacnodeCurve() curvealg.Bivariate {
	// x^3 - y^2.
	return curvealg.New([]upoly.Poly{
		poly(0, 0, 0, 1),
		{},
		poly(-1),
	})
}

func twoConicsCurve() curvealg.Bivariate {
	// (x^2+y^2-1)(x^2+y^2-4) = (x^2-1)(x^2-4) + (2x^2-5) y^2 + y^4.
	c0 := poly(-1, 0, 1).Mul(poly(-4, 0, 1))
	return curvealg.New([]upoly.Poly{
		c0,
		{},
		poly(-5, 0, 2),
		{},
		poly(1),
	})
}
