package vision

import "errors"

var (
	// ErrEmptyInput is returned when a grid contains no active cell.
	ErrEmptyInput = errors.New("vision: nothing drawn")

	// ErrInvalidBoxGeometry is returned when a squared and clamped bounding
	// box is not square or leaves the grid.
	ErrInvalidBoxGeometry = errors.New("vision: invalid bounding box geometry")
)
