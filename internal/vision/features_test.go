package vision

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridWith returns a ProximalGrid with the given (col,row) cells set.
func gridWith(values map[[2]int]float64) ProximalGrid {
	var p ProximalGrid
	for c, v := range values {
		p[c[0]][c[1]] = v
	}
	return p
}

func row(r int, v float64) map[[2]int]float64 {
	m := make(map[[2]int]float64)
	for c := 0; c < 5; c++ {
		m[[2]int{c, r}] = v
	}
	return m
}

func column(c int, v float64) map[[2]int]float64 {
	m := make(map[[2]int]float64)
	for r := 0; r < 5; r++ {
		m[[2]int{c, r}] = v
	}
	return m
}

func TestDetectFeatures_AllZero(t *testing.T) {
	s := DetectFeatures(ProximalGrid{})
	for _, f := range Features() {
		assert.Zero(t, s[f], "feature %s", f)
	}
}

func TestDetectFeatures_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		var p ProximalGrid
		for col := 0; col < 5; col++ {
			for row := 0; row < 5; row++ {
				if rng.Intn(3) > 0 {
					p[col][row] = rng.Float64() * 1.2
				}
			}
		}
		s := DetectFeatures(p)
		for _, f := range Features() {
			require.GreaterOrEqual(t, s[f], 0.0, "feature %s", f)
		}
	}
}

func TestBottomBar_Tiers(t *testing.T) {
	tests := []struct {
		name   string
		values map[[2]int]float64
		want   float64
	}{
		{"strong", row(4, 1), 1.1 + 1.3 + 1.1 + 2.0/5},
		{"weak when a flank is empty", merge(row(4, 1), map[[2]int]float64{{0, 4}: 0}), 0.5 + 0.8 + 0.5},
		{"medium when a flank is faint", merge(row(4, 1), map[[2]int]float64{{0, 4}: 0.2}), 1 + 1.1 + 1 + 1.2/5},
		{"absent without both ends of the core", merge(row(4, 1), map[[2]int]float64{{3, 4}: 0}), 0},
		{"centre may be empty", merge(row(4, 1), map[[2]int]float64{{2, 4}: 0}), 1.1 + 1.1 + 2.0/5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(gridWith(tt.values), BottomBar)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTopBar_NeedsCentre(t *testing.T) {
	p := gridWith(merge(row(0, 1), map[[2]int]float64{{2, 0}: 0}))
	assert.Zero(t, Detect(p, TopBar))
}

func TestCenterBar_WeakWeights(t *testing.T) {
	p := gridWith(merge(row(2, 1), map[[2]int]float64{{4, 2}: 0}))
	assert.InDelta(t, 0.75+1+0.75, Detect(p, CenterBar), 1e-9)
}

func TestRightVertical_StrongBonusReadsNextColumn(t *testing.T) {
	values := column(3, 1)
	values[[2]int{4, 4}] = 0.5

	got := Detect(gridWith(values), RightVertical)

	assert.InDelta(t, 1.1+1.3+1.1+(1+0.5)/5, got, 1e-9)
}

func TestCenterRightCurve_StrongBonus(t *testing.T) {
	values := merge(column(2, 1), map[[2]int]float64{{3, 0}: 0.6, {3, 4}: 0.9, {2, 4}: 0.3})

	got := Detect(gridWith(values), CenterRightCurve)

	assert.InDelta(t, 1.1+1.3+1.1+(0.6+0.3)/5, got, 1e-9)
}

func TestFarRightVertical_MediumTier(t *testing.T) {
	values := merge(column(4, 1), map[[2]int]float64{{4, 0}: 0.2, {0, 3}: 0.6})

	got := Detect(gridWith(values), FarRightVertical)

	assert.InDelta(t, 1+1.1+0.6+(0.2+1)/5, got, 1e-9)
}

func TestFarRightVertical_StrongBonus(t *testing.T) {
	values := merge(column(4, 1), map[[2]int]float64{{0, 4}: 0.5})

	got := Detect(gridWith(values), FarRightVertical)

	assert.InDelta(t, 1.1+1.3+1.1+(1+0.5)/5, got, 1e-9)
}

func TestRisingDiagonal_BestOfTwoPaths(t *testing.T) {
	values := map[[2]int]float64{
		{2, 3}: 0.9, {2, 2}: 0.9, {3, 1}: 0.9, {2, 4}: 0.9, {3, 0}: 0.9,
		{1, 3}: 1.0, {1, 4}: 0.5,
		{0, 4}: 0.6, {4, 0}: 0.6,
	}
	assert.InDelta(t, 3.54, Detect(gridWith(values), RisingDiagonal), 1e-9)

	// A faint corner drops to the medium tier.
	values[[2]int{0, 4}] = 0.1
	assert.InDelta(t, 3.17, Detect(gridWith(values), RisingDiagonal), 1e-9)

	// Both starting cells faint and the upper cell faint: absent.
	values[[2]int{2, 3}] = 0.2
	values[[2]int{1, 3}] = 0.1
	values[[2]int{3, 1}] = 0.2
	assert.Zero(t, Detect(gridWith(values), RisingDiagonal))
}

func TestFallingDiagonal_Thresholds(t *testing.T) {
	values := map[[2]int]float64{{1, 1}: 0.5, {2, 2}: 0.5, {3, 3}: 0.5}
	assert.InDelta(t, 0.25+0.4+0.25, Detect(gridWith(values), FallingDiagonal), 1e-9)

	values[[2]int{2, 2}] = 0.39
	assert.Zero(t, Detect(gridWith(values), FallingDiagonal))
}

func TestRoofs_CentreShortCircuit(t *testing.T) {
	top := gridWith(map[[2]int]float64{{1, 0}: 1, {2, 0}: 0.2, {3, 0}: 1})
	assert.Zero(t, Detect(top, TopCenterRoof))

	top = gridWith(map[[2]int]float64{{1, 0}: 1, {2, 0}: 0.3, {3, 0}: 1})
	assert.InDelta(t, 0.3+0.15+0.3, Detect(top, TopCenterRoof), 1e-9)

	mid := gridWith(map[[2]int]float64{{1, 1}: 1, {2, 1}: 0.2, {3, 1}: 1})
	assert.Zero(t, Detect(mid, MidHighCenterRoof))
}

func TestLegs_BestColumn(t *testing.T) {
	values := map[[2]int]float64{{1, 3}: 0.1, {1, 4}: 0.1, {0, 2}: 1, {0, 3}: 1, {0, 4}: 1}
	assert.InDelta(t, 1.8, Detect(gridWith(values), LeftLeg), 1e-9)

	values = map[[2]int]float64{{3, 3}: 0.1, {3, 4}: 0.1, {4, 2}: 1, {4, 3}: 1, {4, 4}: 1}
	assert.InDelta(t, 1.8, Detect(gridWith(values), RightLeg), 1e-9)
}

func TestTopLeftCurve_FixedSum(t *testing.T) {
	p := gridWith(map[[2]int]float64{{0, 1}: 0.4, {0, 0}: 0.5, {1, 0}: 0.6})
	assert.InDelta(t, 0.2+0.4+0.3, Detect(p, TopLeftCurve), 1e-9)
}

func TestFeature_Names(t *testing.T) {
	assert.Equal(t, "A", BottomBar.Letter())
	assert.Equal(t, "S", FarRightVertical.Letter())
	assert.Equal(t, "center_vertical", CenterVertical.String())
	assert.Len(t, Features(), NumFeatures)
	assert.Len(t, figures, NumFeatures)
}

func merge(ms ...map[[2]int]float64) map[[2]int]float64 {
	out := make(map[[2]int]float64)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
