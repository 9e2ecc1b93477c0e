package vision

import "math"

// cell is a (col, row) position in a ProximalGrid.
type cell struct{ col, row int }

func at(col, row int) cell { return cell{col, row} }

func (p ProximalGrid) value(c cell) float64 { return p[c.col][c.row] }

// probe is a single "this part of the stroke is missing" test.
type probe struct {
	at     cell
	limit  float64
	strict bool // value < limit instead of value <= limit
	exact  bool // value == 0
}

func zero(c cell) probe                    { return probe{at: c, exact: true} }
func atMost(c cell, limit float64) probe   { return probe{at: c, limit: limit} }
func lessThan(c cell, limit float64) probe { return probe{at: c, limit: limit, strict: true} }

func (pr probe) hit(p ProximalGrid) bool {
	v := p.value(pr.at)
	switch {
	case pr.exact:
		return v == 0
	case pr.strict:
		return v < pr.limit
	default:
		return v <= pr.limit
	}
}

// anyZero builds one single-probe group per cell: the figure is absent if
// any of the cells is exactly zero.
func anyZero(cells ...cell) [][]probe {
	groups := make([][]probe, len(cells))
	for i, c := range cells {
		groups[i] = []probe{zero(c)}
	}
	return groups
}

type weights [3]float64

var (
	weakWeights   = weights{0.5, 0.8, 0.5}
	mediumWeights = weights{1, 1.1, 1}
	strongWeights = weights{1.1, 1.3, 1.1}
	barWeights    = weights{0.75, 1, 0.75}
	roofWeights   = weights{0.3, 0.5, 0.3}
)

// flankFloor separates medium from strong evidence on the flanking cells.
const flankFloor = 0.4

// term is a weighted sum over three cells plus a fifth of the bonus cells.
type term struct {
	cells [3]cell
	w     weights
	bonus []cell
}

func (t term) eval(p ProximalGrid) float64 {
	v := t.w[0]*p.value(t.cells[0]) + t.w[1]*p.value(t.cells[1]) + t.w[2]*p.value(t.cells[2])
	if len(t.bonus) == 0 {
		return v
	}
	var extra float64
	for _, c := range t.bonus {
		extra += p.value(c)
	}
	return v + extra/5.0
}

// path is one reading of a stroke, with a term for each evidence tier.
type path struct {
	weak, medium, strong term
}

// stroke builds a path over three core cells. Flank cells feed the bonus
// of the medium and strong tiers.
func stroke(a, b, c cell, flank ...cell) path {
	core := [3]cell{a, b, c}
	return path{
		weak:   term{cells: core, w: weakWeights},
		medium: term{cells: core, w: mediumWeights, bonus: flank},
		strong: term{cells: core, w: strongWeights, bonus: flank},
	}
}

func (pa path) weakAs(w weights) path {
	pa.weak.w = w
	return pa
}

func (pa path) mediumCells(a, b, c cell) path {
	pa.medium.cells = [3]cell{a, b, c}
	return pa
}

func (pa path) strongBonus(cells ...cell) path {
	pa.strong.bonus = cells
	return pa
}

type tier int

const (
	weakTier tier = iota
	mediumTier
	strongTier
)

func (pa path) term(t tier) term {
	switch t {
	case weakTier:
		return pa.weak
	case mediumTier:
		return pa.medium
	default:
		return pa.strong
	}
}

// figure is one declarative feature detector.
//
// A figure scores zero when every probe of any absent group hits. Otherwise
// the weak tier applies when there is no weak gate or a weak gate cell is
// exactly zero, the medium tier when a medium gate cell is below flankFloor,
// and the strong tier in all other cases. The score is the best path.
type figure struct {
	feature    Feature
	absent     [][]probe
	weakGate   []cell
	mediumGate []cell // defaults to weakGate
	paths      []path
}

func (f *figure) eval(p ProximalGrid) float64 {
	for _, group := range f.absent {
		if allHit(p, group) {
			return 0.0
		}
	}

	t := strongTier
	mediumGate := f.mediumGate
	if mediumGate == nil {
		mediumGate = f.weakGate
	}
	switch {
	case len(f.weakGate) == 0 || anyCell(p, f.weakGate, func(v float64) bool { return v == 0 }):
		t = weakTier
	case anyCell(p, mediumGate, func(v float64) bool { return v < flankFloor }):
		t = mediumTier
	}

	best := f.paths[0].term(t).eval(p)
	for _, pa := range f.paths[1:] {
		best = math.Max(best, pa.term(t).eval(p))
	}
	return best
}

func allHit(p ProximalGrid, group []probe) bool {
	for _, pr := range group {
		if !pr.hit(p) {
			return false
		}
	}
	return len(group) > 0
}

func anyCell(p ProximalGrid, cells []cell, pred func(float64) bool) bool {
	for _, c := range cells {
		if pred(p.value(c)) {
			return true
		}
	}
	return false
}

// figures is the detector table. Coordinates are (col, row).
//
// Some strong-tier bonuses and one medium-tier cell reach into a neighbouring
// column (C, K, S) and the rising diagonal gates its medium tier on the grid
// corners (E). These entries are kept as tuned.
var figures = []figure{
	{
		feature:  BottomBar,
		absent:   anyZero(at(1, 4), at(3, 4)),
		weakGate: []cell{at(0, 4), at(4, 4)},
		paths:    []path{stroke(at(1, 4), at(2, 4), at(3, 4), at(0, 4), at(4, 4))},
	},
	{
		feature:  TopBar,
		absent:   anyZero(at(1, 0), at(2, 0), at(3, 0)),
		weakGate: []cell{at(0, 0), at(4, 0)},
		paths:    []path{stroke(at(1, 0), at(2, 0), at(3, 0), at(0, 0), at(4, 0))},
	},
	{
		feature:  RightVertical,
		absent:   anyZero(at(3, 1), at(3, 3)),
		weakGate: []cell{at(3, 0), at(3, 4)},
		paths: []path{
			stroke(at(3, 1), at(3, 2), at(3, 3), at(3, 0), at(3, 4)).
				strongBonus(at(3, 0), at(4, 4)),
		},
	},
	{
		feature:  CenterVertical,
		absent:   anyZero(at(2, 1), at(2, 3)),
		weakGate: []cell{at(2, 0), at(2, 4)},
		paths:    []path{stroke(at(2, 1), at(2, 2), at(2, 3), at(2, 0), at(2, 4))},
	},
	{
		feature: RisingDiagonal,
		absent: [][]probe{
			{atMost(at(2, 3), 0.2), atMost(at(3, 1), 0.2)},
			{atMost(at(1, 3), 0.2), atMost(at(3, 1), 0.2)},
		},
		weakGate:   []cell{at(2, 4), at(3, 0)},
		mediumGate: []cell{at(0, 4), at(4, 0)},
		paths: []path{
			stroke(at(2, 3), at(2, 2), at(3, 1), at(2, 4), at(3, 0)),
			stroke(at(1, 3), at(2, 2), at(3, 1), at(1, 4), at(3, 0)),
		},
	},
	{
		feature:  CenterBar,
		absent:   anyZero(at(1, 2), at(3, 2)),
		weakGate: []cell{at(0, 2), at(4, 2)},
		paths: []path{
			stroke(at(1, 2), at(2, 2), at(3, 2), at(0, 2), at(4, 2)).weakAs(barWeights),
		},
	},
	{
		feature: LeftFork,
		absent:  anyZero(at(1, 0), at(1, 1)),
		paths:   []path{stroke(at(1, 0), at(1, 1), at(1, 2))},
	},
	{
		feature: LeftLeg,
		absent:  anyZero(at(1, 3), at(1, 4)),
		paths: []path{
			stroke(at(1, 2), at(1, 3), at(1, 4)),
			stroke(at(0, 2), at(0, 3), at(0, 4)),
		},
	},
	{
		feature: TopLeftRoof,
		absent:  anyZero(at(0, 0), at(1, 0), at(2, 0)),
		paths:   []path{stroke(at(0, 0), at(1, 0), at(2, 0))},
	},
	{
		feature:  LeftCurve,
		absent:   anyZero(at(1, 1), at(1, 3)),
		weakGate: []cell{at(2, 0), at(2, 4)},
		paths:    []path{stroke(at(1, 1), at(1, 2), at(1, 3), at(2, 0), at(2, 4))},
	},
	{
		feature:  CenterRightCurve,
		absent:   anyZero(at(2, 1), at(2, 3)),
		weakGate: []cell{at(3, 0), at(3, 4)},
		paths: []path{
			stroke(at(2, 1), at(2, 2), at(2, 3), at(3, 0), at(3, 4)).
				strongBonus(at(3, 0), at(2, 4)),
		},
	},
	{
		feature: TopCenterRoof,
		absent: append([][]probe{{atMost(at(2, 0), 0.2)}},
			anyZero(at(1, 0), at(2, 0), at(3, 0))...),
		paths: []path{stroke(at(1, 0), at(2, 0), at(3, 0)).weakAs(roofWeights)},
	},
	{
		feature: RightLeg,
		absent:  anyZero(at(3, 3), at(3, 4)),
		paths: []path{
			stroke(at(3, 2), at(3, 3), at(3, 4)),
			stroke(at(4, 2), at(4, 3), at(4, 4)),
		},
	},
	{
		feature: FallingDiagonal,
		absent: [][]probe{
			{atMost(at(1, 1), 0.2)},
			{lessThan(at(2, 2), 0.4)},
			{atMost(at(3, 3), 0.2)},
		},
		weakGate: []cell{at(1, 0), at(3, 4)},
		paths:    []path{stroke(at(1, 1), at(2, 2), at(3, 3), at(1, 0), at(3, 4))},
	},
	{
		feature: MidHighCenterRoof,
		absent: append([][]probe{{atMost(at(2, 1), 0.2)}},
			anyZero(at(1, 1), at(2, 1), at(3, 1))...),
		paths: []path{stroke(at(1, 1), at(2, 1), at(3, 1)).weakAs(roofWeights)},
	},
	{
		feature: RightFork,
		absent:  anyZero(at(3, 0), at(3, 1)),
		paths:   []path{stroke(at(3, 0), at(3, 1), at(3, 2))},
	},
	{
		feature: TopLeftCurve,
		paths:   []path{stroke(at(0, 1), at(0, 0), at(1, 0))},
	},
	{
		feature:  FarLeftVertical,
		absent:   anyZero(at(0, 1), at(0, 3)),
		weakGate: []cell{at(0, 0), at(0, 4)},
		paths:    []path{stroke(at(0, 1), at(0, 2), at(0, 3), at(0, 0), at(0, 4))},
	},
	{
		feature:  FarRightVertical,
		absent:   anyZero(at(4, 1), at(4, 3)),
		weakGate: []cell{at(4, 0), at(4, 4)},
		paths: []path{
			stroke(at(4, 1), at(4, 2), at(4, 3), at(4, 0), at(4, 4)).
				mediumCells(at(4, 1), at(4, 2), at(0, 3)).
				strongBonus(at(4, 0), at(0, 4)),
		},
	},
}
