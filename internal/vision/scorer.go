package vision

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// NumDigits is the number of digit classes.
const NumDigits = 10

// DigitScores holds one non-negative likelihood per digit, indexed by digit.
type DigitScores [NumDigits]float64

// Map returns the scores keyed by digit ("0".."9").
func (d DigitScores) Map() map[string]float64 {
	m := make(map[string]float64, NumDigits)
	for i, v := range d {
		m[strconv.Itoa(i)] = v
	}
	return m
}

// MarshalJSON encodes the scores as an object keyed by digit.
func (d DigitScores) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// Predict returns the digit with the highest score. Ties go to the lower
// digit.
func Predict(d DigitScores) int {
	return floats.MaxIdx(d[:])
}

// absencePenalty is what each confidently-absent feature adds to countOff.
// Features common in an 8 weigh more; the far verticals do not count.
var absencePenalty = [NumFeatures]float64{
	BottomBar:         1.2,
	TopBar:            1.2,
	RightVertical:     1.2,
	CenterVertical:    1,
	RisingDiagonal:    1,
	CenterBar:         1.2,
	LeftFork:          1.2,
	LeftLeg:           1.2,
	TopLeftRoof:       1.2,
	LeftCurve:         1,
	CenterRightCurve:  1,
	TopCenterRoof:     1.2,
	RightLeg:          1.2,
	FallingDiagonal:   1.2,
	MidHighCenterRoof: 1.2,
	RightFork:         1,
	TopLeftCurve:      0.2,
}

// CountOff tallies absencePenalty over the features that scored zero.
func CountOff(f FeatureScores) float64 {
	var count float64
	for _, feat := range Features() {
		if f.Absent(feat) {
			count += absencePenalty[feat]
		}
	}
	return count
}

// Dampen returns f with the overlapping features reduced. A centre-right
// curve is pulled down by a centre vertical, and the rising diagonal by the
// average of the two verticals; neither drops below half its value.
func Dampen(f FeatureScores) FeatureScores {
	k, d, e, c := f[CenterRightCurve], f[CenterVertical], f[RisingDiagonal], f[RightVertical]
	f[CenterRightCurve] = math.Max(k/2.0, k-d)
	f[RisingDiagonal] = math.Max(e/2.0, e-(c+d)/2.0)
	return f
}

// terms names the adjusted feature scores the digit formulas read.
type terms struct {
	a, b, c, d, e, f, g, h, i, j, k, l, m, n, o, p, q, r, s float64
}

func termsOf(f FeatureScores) terms {
	return terms{
		a: f[BottomBar], b: f[TopBar], c: f[RightVertical], d: f[CenterVertical],
		e: f[RisingDiagonal], f: f[CenterBar], g: f[LeftFork], h: f[LeftLeg],
		i: f[TopLeftRoof], j: f[LeftCurve], k: f[CenterRightCurve], l: f[TopCenterRoof],
		m: f[RightLeg], n: f[FallingDiagonal], o: f[MidHighCenterRoof], p: f[RightFork],
		q: f[TopLeftCurve], r: f[FarLeftVertical], s: f[FarRightVertical],
	}
}

func pos(v float64) float64 { return math.Max(0, v) }

// digitFormulas gives each digit a weighted sum of the features it usually
// has, minus the ones it usually lacks.
var digitFormulas = [NumDigits]func(t terms) float64{
	0: func(t terms) float64 {
		return ((t.a+t.b+t.c+t.j)/4.0+(t.a+t.b+t.c+t.e+t.j)/5.0)/2.0 + (t.j+t.k+t.l+t.m)/5.0 + 0.6*(t.r+t.s) -
			0.7*(t.f*1.3+t.k+t.n+pos(1-t.j)+pos(1-1.7*t.p))
	},
	1: func(t terms) float64 {
		return (t.a+math.Max(t.d, t.j))/1.3 - (0.7 * (2*t.f + t.e + 1.1*t.k + t.q))
	},
	2: func(t terms) float64 {
		return (((t.a*1.8+t.e+t.b+t.i)/4.0)+((t.a*1.8+t.k*1.5+t.b+t.i)/4.0))/2.0 + 0.35*t.q + 0.5*t.l -
			(0.5 * (t.f + t.j + pos(0.25-t.q) + pos(1-1.3*t.a)))
	},
	3: func(t terms) float64 {
		return ((t.l+t.i)*1.5+(math.Max(t.c, t.d)+t.f+1.4*t.k)/4.0+t.m)/2.0 -
			(0.8 * (t.g*2 + t.h + t.j + pos(0.3-(t.l+t.o+t.c)) + pos(1-2.2*t.c)))
	},
	4: func(t terms) float64 {
		return (math.Max(t.c, t.d)+math.Max(t.f, t.o)+t.g+t.p)/3.0 -
			(0.7 * (t.j + t.h + t.l*1.3 + pos(1-t.c) + pos(1-1.3*t.g)))
	},
	5: func(t terms) float64 {
		return (((t.a+t.b+t.f+1.5*t.g)/6.0)+((t.a+t.b+t.f+t.g+t.i*2+t.m)/8.0)+t.l*3)/2.0 + t.o*0.6 -
			(0.7 * (pos(0.5-1.2*t.a) + pos(1-1.4*t.g) + pos(1-2*t.f) + t.e + t.d + 1.6*t.j + t.h*1.3 + 0.5*t.p))
	},
	6: func(t terms) float64 {
		return (t.a+t.b+t.f+t.g+t.h+t.j+t.m)/5.8 -
			0.7*(0.7*t.p+t.e+t.k+t.o+pos(1-1.4*math.Max(t.h, t.j)))
	},
	7: func(t terms) float64 {
		return (t.b+math.Max(t.c, t.e)+0.9*t.k)/3.0 - (0.7 * (3*t.a + t.g*2 + t.j + pos(1-1.3*t.b)))
	},
	8: func(t terms) float64 {
		return (t.a+t.b+t.c+t.d+t.e+t.f*2+t.g*2+t.h+t.i+t.j+t.k+t.l+0.7*t.n+1.5*t.o+t.p)/16.5 -
			(0.7 * pos(1-1.1*(t.g+t.h)))
	},
	9: func(t terms) float64 {
		return (t.b+t.l+t.f+t.g+math.Max(t.c, t.d))/4.5 + 0.6*(t.o+t.p) -
			(0.7 * (t.a + t.e + t.h + t.i + pos(1-1.3*t.b) + pos(0.5-1.3*t.o) + pos(1-2*t.l)))
	},
}

// Scores is the full output of ScoreDigits.
type Scores struct {
	Features   FeatureScores `json:"features"`
	Adjusted   FeatureScores `json:"adjusted_features"`
	CountOff   float64       `json:"count_off"`
	Digits     DigitScores   `json:"digits"`
	Prediction int           `json:"prediction"`
}

// ScoreDigits turns feature scores into digit scores and a prediction.
func ScoreDigits(f FeatureScores) Scores {
	countOff := CountOff(f)
	adjusted := Dampen(f)
	t := termsOf(adjusted)

	var d DigitScores
	for digit, formula := range digitFormulas {
		d[digit] = math.Max(formula(t), 0)
	}
	correct(&d, t, countOff)

	return Scores{
		Features:   f,
		Adjusted:   adjusted,
		CountOff:   countOff,
		Digits:     d,
		Prediction: Predict(d),
	}
}

// correct applies the post-hoc rules in order. Each rule reads the scores
// left by the previous one.
func correct(d *DigitScores, t terms, countOff float64) {
	// An 8 shares most features with other digits; too many missing rules it out.
	if countOff > 8 {
		d[8] = 0.0
	}

	// 0, 5 and 6 together with a centre bar look like an 8.
	if sum := d[6] + d[0] + d[5]; sum > d[8]*1.5 && t.f > 0.1 {
		d[8] += sum * 0.24
	}

	if t.g+t.p > 0.9 {
		d[1] = 0
	}

	leftVertical := t.g+t.h > 0.9
	rightVertical := t.m+t.p > 1
	if leftVertical {
		d[3] = 0
		d[5] = 0
		d[7] = 0
	} else if rightVertical {
		d[5] *= 0.7
		d[6] = 0
	}

	if t.r+t.s > 0.9 {
		d[1] = 0
		d[2] = 0
		d[3] = 0
		d[7] = 0
	}

	// A slashed zero: only the "/" diagonal, no "\".
	if d[8] > d[0] && t.e > 0.5 && t.n < 0.2 {
		d[0] += d[8] * 0.5
	}
}
