package vision

// Result is everything one classification produces.
type Result struct {
	Prediction int           `json:"prediction"`
	Box        BoundingBox   `json:"bounding_box"`
	Grid       ProximalGrid  `json:"proximal_grid"`
	Features   FeatureScores `json:"features"`
	Adjusted   FeatureScores `json:"adjusted_features"`
	CountOff   float64       `json:"count_off"`
	Digits     DigitScores   `json:"digits"`
}

// Classify runs the full pipeline on a captured board.
func Classify(b Board) (*Result, error) {
	if b.grid == nil {
		return nil, ErrEmptyInput
	}
	return classify(b.grid)
}

// ClassifyGrid captures g and classifies it. It fails with ErrEmptyInput
// when g has no active cell.
func ClassifyGrid(g *RawGrid) (*Result, error) {
	b, err := NewBoard(g)
	if err != nil {
		return nil, err
	}
	return classify(b.grid)
}

// ClassifySnapshot classifies a Board and reports ErrEmptyInput for NoBoard.
func ClassifySnapshot(s Snapshot) (*Result, error) {
	switch s := s.(type) {
	case Board:
		return Classify(s)
	default:
		return nil, ErrEmptyInput
	}
}

// Simplify runs only the first two stages and returns the bounding box,
// the cropped region and its 5x5 simplification.
func Simplify(b Board) (BoundingBox, *RawGrid, ProximalGrid, error) {
	if b.grid == nil {
		return BoundingBox{}, nil, ProximalGrid{}, ErrEmptyInput
	}
	box, err := FindBounds(b.grid)
	if err != nil {
		return BoundingBox{}, nil, ProximalGrid{}, err
	}
	region, err := Crop(b.grid, box)
	if err != nil {
		return BoundingBox{}, nil, ProximalGrid{}, err
	}
	return box, region, Downsample(region), nil
}

func classify(g *RawGrid) (*Result, error) {
	box, _, grid, err := Simplify(Board{grid: g})
	if err != nil {
		return nil, err
	}
	scores := ScoreDigits(DetectFeatures(grid))
	return &Result{
		Prediction: scores.Prediction,
		Box:        box,
		Grid:       grid,
		Features:   scores.Features,
		Adjusted:   scores.Adjusted,
		CountOff:   scores.CountOff,
		Digits:     scores.Digits,
	}, nil
}
