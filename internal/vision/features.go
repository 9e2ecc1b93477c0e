package vision

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Feature identifies one of the nineteen stroke detectors.
type Feature int

const (
	BottomBar         Feature = iota // A
	TopBar                           // B
	RightVertical                    // C
	CenterVertical                   // D
	RisingDiagonal                   // E: NE to SW
	CenterBar                        // F
	LeftFork                         // G
	LeftLeg                          // H
	TopLeftRoof                      // I
	LeftCurve                        // J
	CenterRightCurve                 // K
	TopCenterRoof                    // L
	RightLeg                         // M
	FallingDiagonal                  // N: NW to SE
	MidHighCenterRoof                // O
	RightFork                        // P
	TopLeftCurve                     // Q
	FarLeftVertical                  // R
	FarRightVertical                 // S

	NumFeatures = 19
)

var featureNames = [NumFeatures]string{
	"bottom_bar",
	"top_bar",
	"right_vertical",
	"center_vertical",
	"rising_diagonal",
	"center_bar",
	"left_fork",
	"left_leg",
	"top_left_roof",
	"left_curve",
	"center_right_curve",
	"top_center_roof",
	"right_leg",
	"falling_diagonal",
	"mid_high_center_roof",
	"right_fork",
	"top_left_curve",
	"far_left_vertical",
	"far_right_vertical",
}

// Letter returns the single-letter tag (A..S) of the feature.
func (f Feature) Letter() string {
	if f < 0 || f >= NumFeatures {
		return "?"
	}
	return string(rune('A' + int(f)))
}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

// Features lists every feature in letter order.
func Features() []Feature {
	out := make([]Feature, NumFeatures)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// FeatureScores holds one non-negative score per feature.
type FeatureScores [NumFeatures]float64

// Absent reports whether f scored exactly zero.
func (s FeatureScores) Absent(f Feature) bool {
	return s[f] == 0
}

// Map returns the scores keyed by feature name.
func (s FeatureScores) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, v := range s {
		m[Feature(i).String()] = v
	}
	return m
}

// MarshalJSON encodes the scores as an object keyed by feature name.
func (s FeatureScores) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// DetectFeatures scores every feature on p.
func DetectFeatures(p ProximalGrid) FeatureScores {
	var s FeatureScores
	for i := range figures {
		s[figures[i].feature] = figures[i].eval(p)
	}
	return s
}

// Detect scores a single feature on p.
func Detect(p ProximalGrid, f Feature) float64 {
	for i := range figures {
		if figures[i].feature == f {
			return figures[i].eval(p)
		}
	}
	return 0
}
