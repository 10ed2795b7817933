// 27 Dec 2019, double precision 14 Oct 2026
// Package simplex provides a simplex (Nelder and Mead) optimizer.
// Using J.A. Nelder, R. Mead, Comp. J., 7, 308-313
// J.C. Lagarias, J.A. Reeds, M.H. Wright, and P.E. Wright
// Press, W.H., Teukolsky, S.A., Vetterling, W.T., Flannery, B.P.,
// Numerical Recipes in C., Cambridge University Press, 1992
// The structure with the amotry() function comes from numerical recipes,
// but the formulae for moving the highest point around are taken from
// the primary references.
// It has a couple of frills.
//  1. It scrambles the order of coordinates in the original simplex.
//     This minimises the effect of passenger (unimportant) coordinates.
//  2. It allows a vector of minimum and maximum values. Moves beyond
//     these are rejected. This is done by wrapping the cost function
//     so it returns +Inf out of bounds.
//  3. Restarts. Each restart builds a new simplex around the best
//     point, with half the spread of the one before.
//
// The tolerance is on the relative spread of cost values at the
// vertices, the criterion from numerical recipes.
package simplex

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	randSeed         = 1637 // default seed for permuting
	alpha    float64 = 1
	beta     float64 = -1 / 2.
	gamma    float64 = -2
)

// IniType says how the first simplex is built.
type IniType uint8

const (
	IniPntScatter IniType = iota // spread is a fraction of each parameter
	IniPntSpread                 // spread is given for each parameter by Span
)

var (
	ErrBounds  = errors.New("simplex: starting point outside bounds")
	ErrDim     = errors.New("simplex: wrong dimensions")
	ErrMaxEval = errors.New("simplex: too many function evaluations")
)

// CostFun is the function to be minimised.
type CostFun func(x []float64) (float64, error)

// SplxCtrl holds the settings for a simplex run.
type SplxCtrl struct {
	maxstep   int       // cycles of the simplex, per start
	maxeval   int       // cap on cost function calls over all starts
	lower     []float64 // bounds on the parameters
	upper     []float64
	iniPrm    []float64
	span      []float64 // spread of initial points, for IniPntSpread
	seed      int64     // Seed for random number generator
	scatter   float64   // Spread around initial simplex points
	cost      CostFun   // the function to be optimised
	tol       float64
	iniType   IniType
	noPermute bool // turn off permuting of simplex at setup
	logger    *slog.Logger
}

// Result comes back from Run.
type Result struct {
	BestPrm   []float64 // best params found
	Cost      float64   // cost at BestPrm
	NCycle    int       // cycles in the last start
	NEval     int       // calls to the cost function, all starts
	Converged bool      // the last start met the tolerance
}

// NewSplxCtrl gives us a structure with default values.
// The cost function must be specified. iniPrm is copied.
func NewSplxCtrl(cost CostFun, iniPrm []float64, maxstep int) *SplxCtrl {
	return &SplxCtrl{
		cost:    cost,
		iniPrm:  append([]float64(nil), iniPrm...),
		maxstep: maxstep,
		maxeval: math.MaxInt,
		tol:     1e-10,
		seed:    randSeed,
		scatter: 0.1, // 10 % scatter means original +/- 5 %
	}
}

func (s *SplxCtrl) MaxEval(i int)          { s.maxeval = i }
func (s *SplxCtrl) Seed(i int64)           { s.seed = i }
func (s *SplxCtrl) Nopermute()             { s.noPermute = true }
func (s *SplxCtrl) Tol(f float64)          { s.tol = f }
func (s *SplxCtrl) Scatter(f float64)      { s.scatter = f }
func (s *SplxCtrl) IniType(t IniType)      { s.iniType = t }
func (s *SplxCtrl) Logger(lg *slog.Logger) { s.logger = lg }

func (s *SplxCtrl) checkDim(x []float64, what string) error {
	if len(x) != len(s.iniPrm) {
		return fmt.Errorf("%w: %s has %d elements, want %d", ErrDim, what, len(x), len(s.iniPrm))
	}
	return nil
}

// Span sets the spread of initial points for each parameter and
// switches to IniPntSpread.
func (s *SplxCtrl) Span(span []float64) error {
	if err := s.checkDim(span, "span"); err != nil {
		return err
	}
	s.span = append([]float64(nil), span...)
	s.iniType = IniPntSpread
	return nil
}

// Lower sets lower bounds. If you bound one parameter, you have to
// give values for all. Use -Inf for the free ones.
func (s *SplxCtrl) Lower(lower []float64) error {
	if err := s.checkDim(lower, "lower bounds"); err != nil {
		return err
	}
	s.lower = append([]float64(nil), lower...)
	return nil
}

// Upper is like Lower.
func (s *SplxCtrl) Upper(upper []float64) error {
	if err := s.checkDim(upper, "upper bounds"); err != nil {
		return err
	}
	s.upper = append([]float64(nil), upper...)
	return nil
}

// inBounds is true if x violates no bounds.
func (s *SplxCtrl) inBounds(x []float64) bool {
	for i, v := range x {
		if s.lower != nil && v < s.lower[i] {
			return false
		}
		if s.upper != nil && v > s.upper[i] {
			return false
		}
	}
	return true
}

// splx is really just a dense matrix, one row per vertex.
type splx struct {
	*mat.Dense
}

// iniPoints fills the simplex with values around prm.
// Each coordinate runs evenly from prm - spread/2 to prm + spread/2,
// then the values in each column are permuted. Some permutations
// leave all the points on a line (or plane), so we check the volume
// and draw again if it is zero.
func (s *SplxCtrl) iniPoints(splx splx, prm []float64, scale float64, rng *rand.Rand) {
	const maxTry = 100
	nparam := len(prm)
	npoint := nparam + 1
	cols := make([][]float64, nparam)
	vol := 1.0 // volume of a box with the spreads as sides
	for i := range cols {
		var spread float64
		if s.iniType == IniPntSpread {
			spread = s.span[i] * scale
		} else {
			spread = prm[i] * s.scatter * scale
		}
		if spread == 0 { // zero parameter, so no scatter
			spread = s.scatter * scale
		}
		vol *= math.Abs(spread)
		incrmt := spread / float64(nparam)
		start := prm[i] - spread/2
		cols[i] = make([]float64, npoint)
		for j := range cols[i] {
			cols[i][j] = start + float64(j)*incrmt
		}
	}
	for try := 0; try < maxTry; try++ {
		for ip, col := range cols {
			if s.noPermute { // for debugging, we may want to use
				splx.SetCol(ip, col) // simplex unpermuted
				continue
			}
			for j, val := range rng.Perm(npoint) {
				splx.Set(val, ip, col[j])
			}
		}
		if s.noPermute || !flat(splx, vol) {
			return
		}
	}
}

// flat is true if the simplex has no volume, relative to vol.
func flat(splx splx, vol float64) bool {
	npoint, nparam := splx.Dims()
	edges := mat.NewDense(nparam, nparam, nil)
	v0 := splx.RawRowView(0)
	for k := 1; k < npoint; k++ {
		for i, v := range splx.RawRowView(k) {
			edges.Set(k-1, i, v-v0[i])
		}
	}
	return math.Abs(mat.Det(edges)) <= 1e-9*vol
}

// sWk holds the scratch arrays for sums and ranks.
type sWk struct {
	cost   CostFun   // wrapped cost function
	y      []float64 // y values at each simplex point
	cntrd  []float64 // centroid of all points, except worst
	ptrial []float64 // trial point used in amotry
	rank   []int     // vertices sorted from worst to best
	neval  int
}

const (
	yesImprove uint8 = iota // reflection or expansion improved worst point
	noImprove
)

func (sWk *sWk) init(ndim int, cost CostFun) {
	npnt := ndim + 1
	sWk.y = make([]float64, npnt)
	sWk.rank = make([]int, npnt)
	sWk.cntrd = make([]float64, ndim)
	sWk.ptrial = make([]float64, ndim)
	sWk.cost = func(x []float64) (float64, error) {
		sWk.neval++
		return cost(x)
	}
}

// amotry moves the worst vertex by reflection, expansion or 1D contraction
// as determined by fac.
func amotry(splx splx, fac float64, sWk *sWk) (uint8, error) {
	ihi := sWk.rank[0]
	worst := splx.RawRowView(ihi)
	for i := range sWk.ptrial {
		sWk.ptrial[i] = (1+fac)*sWk.cntrd[i] - fac*worst[i]
	}
	ytry, err := sWk.cost(sWk.ptrial)
	if err != nil {
		return noImprove, err
	}
	if !(ytry < sWk.y[ihi]) { // ties and NaN are not progress
		return noImprove, nil
	}
	copy(worst, sWk.ptrial)
	sWk.y[ihi] = ytry
	return yesImprove, nil
}

// centroid updates the simplex centroid. This is the middle of the points,
// but excluding the worst (highest)
func (sWk *sWk) centroid(splx splx) {
	ndim := len(sWk.cntrd)
	for i := 0; i < ndim; i++ {
		var sum float64
		for _, r := range sWk.rank[1:] {
			sum += splx.At(r, i)
		}
		sWk.cntrd[i] = sum / float64(ndim)
	}
}

// contract brings all points halfway towards the lowest point
func contract(splx splx, sWk *sWk) {
	npoint := len(sWk.rank)
	pntLow := splx.RawRowView(sWk.rank[npoint-1]) // best point
	for _, ix := range sWk.rank[:npoint-1] {
		row := splx.RawRowView(ix)
		for j, val := range pntLow {
			row[j] = (row[j] + val) / 2.0
		}
	}
}

// setupFirstStep calculates values at the initial simplex vertices.
func (sWk *sWk) setupFirstStep(splx splx) error {
	for i := range sWk.y {
		var err error
		if sWk.y[i], err = sWk.cost(splx.RawRowView(i)); err != nil {
			return fmt.Errorf("initialising simplex: %w", err)
		}
		sWk.rank[i] = i
	}
	return nil
}

// updateContract updates the function values at all vertices, except
// the best one, which was not changed during contraction
func (sWk *sWk) updateContract(splx splx) error {
	ilo := sWk.rank[len(sWk.rank)-1]
	for i := range sWk.y {
		if i == ilo {
			continue
		}
		var err error
		if sWk.y[i], err = sWk.cost(splx.RawRowView(i)); err != nil {
			return fmt.Errorf("after contraction: %w", err)
		}
	}
	return nil
}

// sortRank puts the worst vertex first and the best last.
func (sWk *sWk) sortRank() {
	sort.Slice(sWk.rank, func(i, j int) bool {
		return sWk.y[sWk.rank[i]] > sWk.y[sWk.rank[j]]
	})
}

// converged returns true if we have converged. Use the criterion
// from the implementation in numerical recipes.
func (sWk *sWk) converged(tol float64) bool {
	const tiny = 1e-10 // as in numerical recipes, stops us chasing zero
	yhi := sWk.y[sWk.rank[0]]
	ylo := sWk.y[sWk.rank[len(sWk.rank)-1]]
	if math.IsInf(yhi, 1) {
		return false
	}
	rtol := (2 * math.Abs(yhi-ylo)) / (math.Abs(yhi) + math.Abs(ylo) + tiny)
	return rtol < tol
}

// onerun is the inner call to the simplex. It is called once per
// start, with a fresh simplex each time.
// It returns the number of cycles and whether it converged.
func (s *SplxCtrl) onerun(sWk *sWk, splx splx) (int, bool, error) {
	if err := sWk.setupFirstStep(splx); err != nil {
		return 0, false, err
	}
	npnt := len(sWk.rank)
	for n := 0; n < s.maxstep; n++ {
		sWk.sortRank()
		ilo := sWk.rank[npnt-1] // best point
		ihi := sWk.rank[0]      // worst (hi) point
		if sWk.converged(s.tol) {
			return n, true, nil
		}
		if sWk.neval >= s.maxeval {
			return n, false, ErrMaxEval
		}
		sWk.centroid(splx)
		tRes, err := amotry(splx, alpha, sWk)
		if err != nil {
			return n, false, err
		}
		if tRes == yesImprove {
			if sWk.y[ihi] > sWk.y[ilo] {
				continue // just accept and move on
			} // next, try extend
			if _, err = amotry(splx, gamma, sWk); err != nil {
				return n, false, err
			}
			continue
		}
		// 1D contract and then general contract
		if tRes, err = amotry(splx, beta, sWk); err != nil {
			return n, false, err
		}
		if tRes == yesImprove {
			continue // 1 point contraction worked
		}
		contract(splx, sWk) // last option, general contraction
		if err := sWk.updateContract(splx); err != nil {
			return n, false, err
		}
	}
	sWk.sortRank()
	return s.maxstep, sWk.converged(s.tol), nil
}

// Run does maxstart starts of the simplex. Each one begins from the
// best point of the one before.
func (s *SplxCtrl) Run(maxstart int) (Result, error) {
	ndim := len(s.iniPrm)
	res := Result{BestPrm: append([]float64(nil), s.iniPrm...)}
	if ndim == 0 {
		return res, fmt.Errorf("%w: no parameters", ErrDim)
	}
	if s.iniType == IniPntSpread && s.span == nil {
		return res, fmt.Errorf("%w: IniPntSpread without Span", ErrDim)
	}
	if !s.inBounds(s.iniPrm) {
		return res, ErrBounds
	}
	cost := s.cost
	if s.lower != nil || s.upper != nil {
		cost = func(x []float64) (float64, error) {
			if !s.inBounds(x) {
				return math.Inf(1), nil
			}
			return s.cost(x)
		}
	}
	var sWk sWk
	sWk.init(ndim, cost)
	rng := rand.New(rand.NewSource(s.seed))
	splx := splx{mat.NewDense(ndim+1, ndim, nil)}
	scale := 1.0
	for mr := 0; mr < maxstart; mr++ {
		s.iniPoints(splx, res.BestPrm, scale, rng)
		ncycle, ok, err := s.onerun(&sWk, splx)
		res.NEval = sWk.neval
		if err != nil && !errors.Is(err, ErrMaxEval) {
			return res, err
		}
		best := sWk.rank[len(sWk.rank)-1]
		if mr == 0 || sWk.y[best] <= res.Cost { // a restart cut short may be worse
			copy(res.BestPrm, splx.RawRowView(best))
			res.Cost = sWk.y[best]
		}
		res.NCycle = ncycle
		res.Converged = ok
		if err != nil {
			return res, err
		}
		if s.logger != nil {
			s.logger.Debug("simplex start done", "start", mr, "cycles", ncycle,
				"cost", res.Cost, "converged", ok)
		}
		scale /= 2.
	}
	return res, nil
}
