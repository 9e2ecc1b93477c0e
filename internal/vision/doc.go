// Package vision classifies a hand-drawn digit from a square on/off bitmap.
//
// The classifier is a fixed, hand-tuned pipeline with no training step:
//
//  1. FindBounds locates the smallest square region containing every active
//     cell and clamps it into the grid.
//  2. Downsample reduces that region to a 5x5 ProximalGrid of activation
//     values, weighting each active cell by how many active neighbours it has.
//  3. DetectFeatures evaluates nineteen stroke detectors (bars, verticals,
//     diagonals, curves, forks, roofs) over the 5x5 grid.
//  4. ScoreDigits combines the feature scores into ten digit likelihoods,
//     applies correction rules, and picks the best digit.
//
// # Coordinate System
//
// Grids are addressed as (col, row) with (0, 0) at the top-left corner,
// matching the imaging package. ProximalGrid is indexed [col][row].
//
// # Input
//
// A Canvas stands in for the drawing surface. Canvas.Snapshot returns either
// NoBoard (nothing drawn) or a Board holding an immutable copy of the grid:
//
//	switch s := canvas.Snapshot().(type) {
//	case vision.NoBoard:
//	    // show nothing
//	case vision.Board:
//	    res, err := vision.Classify(s)
//	    ...
//	}
//
// # Thread Safety
//
// Every stage is a pure function. Classify may be called concurrently on
// different boards; a Board is never mutated after it is captured.
//
// # Errors
//
// ErrEmptyInput is returned when a grid has no active cell. The caller is
// expected to avoid that case. ErrInvalidBoxGeometry signals a bounding box
// that failed its square/in-bounds post-condition and should never occur.
package vision
