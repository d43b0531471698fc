// Package vankampen computes a finite presentation of the fundamental
// group pi_1(C^2 - C) of a plane algebraic curve complement via the
// certified Zariski-Van Kampen braid-monodromy method: separate the
// discriminant's roots, build one loop per root, follow the curve's
// sheets along each loop to recover a braid, and feed the resulting
// braids through the Hurwitz action to a Van Kampen presentation.
package vankampen

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/cwbudde/vankampen/internal/braid"
	"github.com/cwbudde/vankampen/internal/curvealg"
	"github.com/cwbudde/vankampen/internal/freegroup"
	"github.com/cwbudde/vankampen/internal/lbraid"
	"github.com/cwbudde/vankampen/internal/loopgraph"
	"github.com/cwbudde/vankampen/internal/monodromy"
	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/rootfind"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// ErrNoBranchPoints is returned by Prepare when the discriminant has
// degree zero (no critical fibre, so there is no monodromy to compute),
// or when a curve with no y-dependence is the zero polynomial.
var ErrNoBranchPoints = errors.New("vankampen: curve has no finite branch points")

// ErrSegmentOutOfRange is returned by Segments when asked for a
// segment index outside [0, len(snapshot.Roots)).
var ErrSegmentOutOfRange = errors.New("vankampen: segment index out of range")

// ErrSelfCriticalBaseLine is returned by Prepare when the generic base
// height used to build the loops is itself critical for the curve
// (two discriminant roots share its real part): the caller must pick
// a different base height rather than have the library silently
// perturb the geometry underneath it.
var ErrSelfCriticalBaseLine = errors.New("vankampen: base line is critical for this curve, choose another base height")

// Config holds the tunable knobs of the pipeline, following the
// functional-options shape of dsp/core.ProcessorConfig.
type Config struct {
	// MonodromyApprox selects monodromy.ApproxFollower over the
	// certified default. Library-only opt-in: never set by
	// DefaultConfig.
	MonodromyApprox bool
	// NewtonLimit bounds Newton iterations per root refinement.
	NewtonLimit int
	// AdaptivityFactor is ApproxFollower's reject/accept threshold
	// divisor (spec's ADAPTIVITY_FACTOR, default 10): a tentative step
	// is rejected if any strand moves farther than dm[i]/AdaptivityFactor
	// and accepted-and-doubled if every strand moves less than
	// dm[i]/(2*AdaptivityFactor).
	AdaptivityFactor float64
	// ShrinkBraid runs braid.Word reduction eagerly after each
	// straight-line step of a loop in Segments instead of only once at
	// the end of the loop.
	ShrinkBraid bool
	// Safety is the separate_roots certification safety factor.
	Safety float64
	// Verbosity gates Tracer output: 0 silent, 1 phase markers, 2 detail.
	Verbosity int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the pipeline's default configuration: the
// certified follower, a conservative safety factor, and silent tracing.
func DefaultConfig() Config {
	return Config{
		MonodromyApprox:  false,
		NewtonLimit:      rootfind.DefaultNewtonLimit,
		AdaptivityFactor: monodromy.DefaultAdaptivityFactor,
		ShrinkBraid:      true,
		Safety:           100,
		Verbosity:        0,
	}
}

// WithMonodromyApprox opts into the heuristic approximate follower.
func WithMonodromyApprox(on bool) Option {
	return func(c *Config) { c.MonodromyApprox = on }
}

// WithNewtonLimit overrides the Newton iteration cap.
func WithNewtonLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.NewtonLimit = n
		}
	}
}

// WithAdaptivityFactor overrides the approximate follower's
// reject/accept threshold divisor.
func WithAdaptivityFactor(f float64) Option {
	return func(c *Config) {
		if f > 0 {
			c.AdaptivityFactor = f
		}
	}
}

// WithShrinkBraid toggles eager braid-word reduction.
func WithShrinkBraid(on bool) Option {
	return func(c *Config) { c.ShrinkBraid = on }
}

// WithSafety overrides the root-separation safety factor.
func WithSafety(s float64) Option {
	return func(c *Config) {
		if s > 0 {
			c.Safety = s
		}
	}
}

// WithVerbosity sets the Tracer's verbosity level.
func WithVerbosity(v int) Option {
	return func(c *Config) { c.Verbosity = v }
}

// ApplyOptions resolves a Config from zero or more Options applied to
// DefaultConfig.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Tracer is a nil-safe progress reporter gated by Config.Verbosity,
// matching cmd/wininfo's direct-to-stderr diagnostics rather than a
// logging framework.
type Tracer struct {
	W     io.Writer
	Level int
}

// NewTracer returns a Tracer writing to w at the given verbosity level.
// A nil w makes every Trace call a no-op.
func NewTracer(w io.Writer, level int) Tracer {
	return Tracer{W: w, Level: level}
}

// Trace writes a formatted message if level is at or below the
// tracer's configured verbosity.
func (t Tracer) Trace(level int, format string, args ...interface{}) {
	if t.W == nil || level > t.Level {
		return
	}
	fmt.Fprintf(t.W, format+"\n", args...)
}

// Result is the final output of the pipeline: the Van Kampen
// presentation, plus the data that produced it for inspection.
type Result struct {
	Presentation freegroup.Presentation
	Roots        []numfield.Scalar
	Braids       []braid.Word
}

// PrepSnapshot is the gob-encoded output of Prepare: the discriminant
// roots, the base point, the loop order and the sheet count, everything
// Segments needs to compute one branch point's braid independently of
// the others. The loop paths themselves are not stored; Segments
// rebuilds them from Roots and Basepoint.
type PrepSnapshot struct {
	Roots     []numfield.Scalar
	Basepoint numfield.Scalar
	Order     []int
	Degree    int
	Config    Config
}

// SegmentBraid is the gob-encoded output of one Segments call.
type SegmentBraid struct {
	Index            int
	Word             braid.Word
	ReflectionLength int
}

// Prepare runs the sequential, cheap part of the pipeline:
// it isolates the discriminant's roots and fixes the base point and
// loop order, writing a resumable snapshot to <name>.prep. The curve
// is given as a curvealg.Bivariate. Prepare returns
// ErrSelfCriticalBaseLine when two discriminant roots have equal real
// parts; it does not check basepoint itself against the roots.
func Prepare(name string, curve curvealg.Bivariate, basepoint complex128, cfg Config, tr Tracer) (*PrepSnapshot, error) {
	if curve.DegreeY() <= 0 {
		return prepareVertical(name, curve, cfg, tr)
	}
	tr.Trace(1, "prepare: isolating discriminant roots")
	var native curvealg.Native
	disc, err := curveDiscriminant(native, curve)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Prepare: %w", err)
	}
	if disc.Degree() <= 0 {
		return nil, ErrNoBranchPoints
	}
	// Non-nodal branch points (cusps, tacnodes, ...) make the
	// discriminant vanish to order >1 there; separate_roots needs the
	// distinct critical x-values, not one root per multiplicity, so
	// reduce to the squarefree part first. ErrNotSquarefree is
	// informational here, not a
	// failure: ordinary nodal curves already have a squarefree
	// discriminant and hit the fast path.
	disc, sfErr := upoly.MakeSquarefree(disc)
	if sfErr != nil && !errors.Is(sfErr, upoly.ErrNotSquarefree) {
		return nil, fmt.Errorf("vankampen: Prepare: %w", sfErr)
	}
	if sfErr != nil {
		tr.Trace(2, "prepare: discriminant had repeated roots (non-nodal branch point), reduced to %d distinct", disc.Degree())
	}
	roots, err := rootfind.SeparateRoots(disc, cfg.Safety)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Prepare: %w", err)
	}
	for i := range roots {
		for j := i + 1; j < len(roots); j++ {
			if roots[i].Re.Cmp(roots[j].Re) == 0 {
				return nil, ErrSelfCriticalBaseLine
			}
		}
	}
	tr.Trace(1, "prepare: %d branch points isolated", len(roots))

	complexRoots := make([]complex128, len(roots))
	for i, r := range roots {
		complexRoots[i] = r.Complex128()
	}
	loops, err := loopgraph.BuildLoops(complexRoots, basepoint)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Prepare: %w", err)
	}

	snap := &PrepSnapshot{
		Roots:     roots,
		Basepoint: numfield.FromComplex128(basepoint),
		Order:     loops.Order,
		Degree:    curve.DegreeY(),
		Config:    cfg,
	}
	if name != "" {
		if err := writeGob(name+".prep", snap); err != nil {
			return nil, fmt.Errorf("vankampen: Prepare: %w", err)
		}
	}
	return snap, nil
}

// prepareVertical handles the degenerate-but-valid case of a curve
// with no y-dependence at all: P(x,y) = Q(x), a union of k parallel
// vertical lines x = r_1, ..., x = r_k ("two parallel
// vertical lines"). There is no finite monodromy to compute — each
// vertical line is its own disjoint copy of the y-plane — so the
// snapshot carries zero branch points and the sheet count k directly
// in Degree; Finish's VKQuotient(k, nil) then yields the free group
// on k generators with no relators, exactly the expected F_k.
func prepareVertical(name string, curve curvealg.Bivariate, cfg Config, tr Tracer) (*PrepSnapshot, error) {
	var q upoly.Poly
	if len(curve.Y) > 0 {
		q = curve.Y[0]
	}
	if q.IsZero() {
		return nil, ErrNoBranchPoints
	}
	sf, sfErr := upoly.MakeSquarefree(q)
	if sfErr != nil && !errors.Is(sfErr, upoly.ErrNotSquarefree) {
		return nil, fmt.Errorf("vankampen: Prepare: %w", sfErr)
	}
	lines, err := rootfind.SeparateRoots(sf, cfg.Safety)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Prepare: %w", err)
	}
	tr.Trace(1, "prepare: curve has no y-dependence, %d parallel vertical lines", len(lines))
	snap := &PrepSnapshot{
		Degree: len(lines),
		Config: cfg,
	}
	if name != "" {
		if err := writeGob(name+".prep", snap); err != nil {
			return nil, fmt.Errorf("vankampen: Prepare: %w", err)
		}
	}
	return snap, nil
}

func curveDiscriminant(n curvealg.Native, curve curvealg.Bivariate) (upoly.Poly, error) {
	// The discriminant as a polynomial in x is the resultant of the
	// curve and its y-derivative; resultantOverX computes it from
	// per-fiber Sylvester resultants at integer base points, recovered
	// as a polynomial in x by interpolation.
	dy := n.DerivativeY(curve)
	return resultantOverX(curve, dy)
}

// resultantOverX computes Res_y(P, Q) for bivariate P, Q given as
// y-coefficient grids over x. It evaluates the univariate Sylvester
// resultant of the fibers P(x0, y), Q(x0, y) at the integer base
// points x0 = 0, 1, ..., bound and recovers the exact Scalar
// coefficients by Lagrange interpolation, the same technique
// monodromy.ProtectionPolynomial uses over big.Rat. bound is the
// Sylvester-matrix degree bound deg_y(Q)*deg_x(P) + deg_y(P)*deg_x(Q).
// The fibers are taken at their actual degree, so a base point where
// a leading y-coefficient vanishes is not treated specially.
func resultantOverX(p, q curvealg.Bivariate) (upoly.Poly, error) {
	degP, degQ := p.DegreeY(), q.DegreeY()
	if degP <= 0 || degQ < 0 {
		return upoly.Poly{}, curvealg.ErrDegenerateCurve
	}
	dxP, dxQ := 0, 0
	for _, c := range p.Y {
		if c.Degree() > dxP {
			dxP = c.Degree()
		}
	}
	for _, c := range q.Y {
		if c.Degree() > dxQ {
			dxQ = c.Degree()
		}
	}
	bound := degQ*dxP + degP*dxQ
	if bound < 1 {
		bound = 1
	}
	pts := make([]numfield.Scalar, bound+1)
	vals := make([]numfield.Scalar, bound+1)
	for i := 0; i <= bound; i++ {
		x := numfield.NewInt(int64(i))
		pts[i] = x
		pf := p.Fiber(x)
		qf := q.Fiber(x)
		if qf.IsZero() {
			vals[i] = numfield.Zero()
			continue
		}
		r, err := upoly.Resultant(pf, qf)
		if err != nil {
			return upoly.Poly{}, err
		}
		vals[i] = r
	}
	return interpolateScalar(pts, vals), nil
}

func interpolateScalar(pts, vals []numfield.Scalar) upoly.Poly {
	n := len(pts)
	coeffs := make([]numfield.Scalar, n)
	for i := range coeffs {
		coeffs[i] = numfield.Zero()
	}
	for i := 0; i < n; i++ {
		term := []numfield.Scalar{numfield.One()}
		denom := numfield.One()
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			term = mulLinear(term, pts[j])
			diff := pts[i].Sub(pts[j])
			denom = denom.Mul(diff)
		}
		scale, err := vals[i].Div(denom)
		if err != nil {
			continue
		}
		for k, c := range term {
			coeffs[k] = coeffs[k].Add(c.Mul(scale))
		}
	}
	return upoly.New(coeffs)
}

func mulLinear(term []numfield.Scalar, root numfield.Scalar) []numfield.Scalar {
	out := make([]numfield.Scalar, len(term)+1)
	for i := range out {
		out[i] = numfield.Zero()
	}
	for i, c := range term {
		out[i+1] = out[i+1].Add(c)
		out[i] = out[i].Sub(c.Mul(root))
	}
	return out
}

// Segments computes the braid monodromy contribution of a single
// branch point (an independent, parallelisable unit), writing
// <name>.seg.<idx> if name is non-empty. curve is the same defining
// polynomial passed to Prepare.
func Segments(name string, snap *PrepSnapshot, curve curvealg.Bivariate, idx int, tr Tracer) (*SegmentBraid, error) {
	if idx < 0 || idx >= len(snap.Roots) {
		return nil, ErrSegmentOutOfRange
	}
	tr.Trace(2, "segments: branch point %d", idx)

	complexRoots := make([]complex128, len(snap.Roots))
	for i, r := range snap.Roots {
		complexRoots[i] = r.Complex128()
	}
	basepoint := snap.Basepoint.Complex128()
	loops, err := loopgraph.BuildLoops(complexRoots, basepoint)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Segments: %w", err)
	}
	path := loops.Paths[idx]
	if len(path) < 2 {
		return nil, fmt.Errorf("vankampen: Segments: %w", ErrSegmentOutOfRange)
	}
	// path is now a genuine closed loop (basepoint, out along the
	// handle, once counter-clockwise around the Voronoi cell of this
	// branch point, back along the handle to the basepoint): the
	// circle component itself keeps every vertex off the
	// discriminant, so the monodromy followers below are walked
	// straight through to the end with no setback.

	curveAt := func(t numfield.Scalar) upoly.Poly {
		return curve.Fiber(t)
	}
	var follower monodromy.Follower
	if snap.Config.MonodromyApprox {
		follower = monodromy.NewApproxFollower(snap.Config.AdaptivityFactor)
	} else {
		follower = monodromy.NewCertifiedFollower()
	}

	startFiber := curveAt(numfield.FromComplex128(path[0]))
	startRoots, err := rootfind.SeparateRoots(startFiber, snap.Config.Safety)
	if err != nil {
		return nil, fmt.Errorf("vankampen: Segments: %w", err)
	}

	sheets := startRoots
	mon := braid.New(len(sheets))
	word := mon.Identity()
	var rawGens []int
	for i := 0; i+1 < len(path); i++ {
		t0 := numfield.FromComplex128(path[i])
		t1 := numfield.FromComplex128(path[i+1])
		v1 := make([]complex128, len(sheets))
		for k, s := range sheets {
			v1[k] = s.Complex128()
		}
		next, err := follower.Track(curveAt, t0, t1, sheets)
		if err != nil {
			return nil, fmt.Errorf("vankampen: Segments: %w", err)
		}
		v2 := make([]complex128, len(next))
		for k, s := range next {
			v2[k] = s.Complex128()
		}
		step, err := lbraid.LBraidToWord(v1, v2, mon)
		if err != nil {
			return nil, fmt.Errorf("vankampen: Segments: %w", err)
		}
		if snap.Config.ShrinkBraid {
			word = word.Mul(step)
		} else {
			rawGens = append(rawGens, step.Gens...)
		}
		sheets = next
	}
	if !snap.Config.ShrinkBraid {
		// Skip per-step free reduction and reduce once at the end,
		// trading peak word length for fewer reduce() passes.
		word = mon.Identity().Mul(braid.Word{N: mon.N, Gens: rawGens})
	}

	sb := &SegmentBraid{Index: idx, Word: word, ReflectionLength: word.ReflectionLength()}
	if name != "" {
		if err := writeGob(fmt.Sprintf("%s.seg.%d", name, idx), sb); err != nil {
			return nil, fmt.Errorf("vankampen: Segments: %w", err)
		}
	}
	return sb, nil
}

// SegmentsConcurrent runs Segments for every branch point in snap,
// fanning the n independent computations out over a bounded worker
// pool sized to GOMAXPROCS, since segment
// computations are mutually independent. It returns the results
// ordered by branch point index, or the first error encountered
// (cancelling the remaining work via ctx).
func SegmentsConcurrent(ctx context.Context, name string, snap *PrepSnapshot, curve curvealg.Bivariate, tr Tracer) ([]*SegmentBraid, error) {
	n := len(snap.Roots)
	out := make([]*SegmentBraid, n)
	errs := make([]error, n)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var firstErr error
	var errOnce sync.Once

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					errs[idx] = ctx.Err()
					continue
				default:
				}
				sb, err := Segments(name, snap, curve, idx, tr)
				out[idx] = sb
				errs[idx] = err
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					cancel()
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Finish collects the per-branch-point braids (reading <name>.seg.<i>
// files if segs is nil) and builds the Van Kampen presentation, the
// final, cheap assembly step.
func Finish(name string, snap *PrepSnapshot, segs []*SegmentBraid, tr Tracer) (*Result, error) {
	numBranch := len(snap.Roots)
	if segs == nil {
		segs = make([]*SegmentBraid, numBranch)
		for i := 0; i < numBranch; i++ {
			var sb SegmentBraid
			if err := readGob(fmt.Sprintf("%s.seg.%d", name, i), &sb); err != nil {
				return nil, fmt.Errorf("vankampen: Finish: %w", err)
			}
			segs[i] = &sb
		}
	}
	tr.Trace(1, "finish: assembling presentation from %d branch points", numBranch)

	braids := make([]braid.Word, len(snap.Order))
	for i, idx := range snap.Order {
		braids[i] = segs[idx].Word
	}

	// n is the number of finite sheets (free-group rank), not the
	// number of branch points: each segment's tracked braid already
	// carries its own strand count in Word.N, which for every curve
	// whose leading y-coefficient is a nonzero constant (the common
	// case, and the only one curvealg.Native models) equals
	// snap.Degree throughout. DBVKQuotient's extra relator at infinity
	// only applies when that is not so.
	n := snap.Degree
	if len(braids) > 0 {
		n = braids[0].N
	}
	var presentation freegroup.Presentation
	if snap.Degree > n {
		presentation = freegroup.DBVKQuotient(n, braids, snap.Degree)
	} else {
		presentation = freegroup.VKQuotient(n, braids)
	}
	presentation = presentation.Simplify()

	return &Result{
		Presentation: presentation,
		Roots:        snap.Roots,
		Braids:       braids,
	}, nil
}

func writeGob(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(v)
}

func readGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
