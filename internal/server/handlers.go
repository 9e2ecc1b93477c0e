package server

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/digit-vision-mcp/internal/imaging"
	"github.com/ironsheep/digit-vision-mcp/internal/ocr"
	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "digit_classify_grid").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// argError marks a failure to decode or validate tool arguments.
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; any other tool failure returns -32000 with the
// error text as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	entry := s.log.WithFields(logrus.Fields{
		"call_id": uuid.NewString(),
		"tool":    params.Name,
	})
	start := time.Now()

	result, err := s.executeTool(entry, params.Name, params.Arguments)
	entry = entry.WithField("duration", time.Since(start))
	if err != nil {
		entry.WithError(err).Warn("tool call failed")
		var ae *argError
		if errors.As(err, &ae) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	entry.Debug("tool call complete")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(log *logrus.Entry, name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Classification
	case "digit_classify_image":
		return s.handleClassifyImage(log, args)
	case "digit_classify_grid":
		return s.handleClassifyGrid(log, args)
	case "digit_bounds":
		return s.handleBounds(args)

	// Drawing canvas
	case "digit_canvas_draw":
		return s.handleCanvasDraw(args)
	case "digit_canvas_clear":
		return s.handleCanvasClear(args)
	case "digit_canvas_classify":
		return s.handleCanvasClassify(log)

	// Visual output and cross-checks
	case "digit_render":
		return s.handleRender(args)
	case "digit_ocr_crosscheck":
		return s.handleOCRCrosscheck(log, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// decodeArgs unmarshals and validates tool arguments into v.
func (s *Server) decodeArgs(args jsoniter.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = jsoniter.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argError{fmt.Errorf("invalid arguments: %w", err)}
	}
	if err := s.validate.Struct(v); err != nil {
		return &argError{fmt.Errorf("invalid arguments: %w", err)}
	}
	return nil
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path" validate:"required"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args jsoniter.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// RasterArgs are the optional rasterizing overrides shared by image tools.
type RasterArgs struct {
	Resolution int      `json:"resolution" validate:"omitempty,min=5,max=400"`
	Mode       string   `json:"mode" validate:"omitempty,oneof=threshold contrast"`
	Threshold  int      `json:"threshold" validate:"omitempty,min=1,max=255"`
	Contrast   *float64 `json:"contrast" validate:"omitempty,min=0,max=100"`
}

// options merges the arguments over the configured defaults.
func (a RasterArgs) options(s *Server) imaging.RasterOptions {
	opts := imaging.RasterOptions{
		Resolution: s.cfg.Resolution,
		Mode:       imaging.RasterMode(s.cfg.RasterMode),
		Threshold:  uint8(s.cfg.Threshold),
		Contrast:   s.cfg.Contrast,
	}
	if a.Resolution != 0 {
		opts.Resolution = a.Resolution
	}
	if a.Mode != "" {
		opts.Mode = imaging.RasterMode(a.Mode)
	}
	if a.Threshold != 0 {
		opts.Threshold = uint8(a.Threshold)
	}
	if a.Contrast != nil {
		opts.Contrast = *a.Contrast
	}
	return opts
}

// rasterize loads path and converts it to a canvas.
func (s *Server) rasterize(path string, ra RasterArgs) (image.Image, *vision.Canvas, imaging.RasterOptions, error) {
	opts := ra.options(s)
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, opts, err
	}
	canvas, err := imaging.Rasterize(img, opts)
	if err != nil {
		return nil, nil, opts, err
	}
	return img, canvas, opts, nil
}

// === Classification Handlers ===

type classifyImageArgs struct {
	Path string `json:"path" validate:"required"`
	RasterArgs
}

// ImageClassification is a Result plus how the image was read.
type ImageClassification struct {
	Path   string                `json:"path"`
	Raster imaging.RasterOptions `json:"raster"`
	Active int                   `json:"active_cells"`
	*vision.Result
}

func (s *Server) handleClassifyImage(log *logrus.Entry, args jsoniter.RawMessage) (interface{}, error) {
	var a classifyImageArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	_, canvas, opts, err := s.rasterize(a.Path, a.RasterArgs)
	if err != nil {
		return nil, err
	}

	snap := canvas.Snapshot()
	res, err := vision.ClassifySnapshot(snap)
	if err != nil {
		return nil, err
	}
	log.WithField("prediction", res.Prediction).Debug("classified image")

	return &ImageClassification{
		Path:   a.Path,
		Raster: opts,
		Active: snap.(vision.Board).Grid().Active(),
		Result: res,
	}, nil
}

type gridArgs struct {
	Rows []string `json:"rows" validate:"required,min=1,dive,required"`
}

func (a gridArgs) grid() (*vision.RawGrid, error) {
	g, err := vision.ParseRawGrid(a.Rows)
	if err != nil {
		return nil, &argError{err}
	}
	return g, nil
}

func (s *Server) handleClassifyGrid(log *logrus.Entry, args jsoniter.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	g, err := a.grid()
	if err != nil {
		return nil, err
	}

	res, err := vision.ClassifyGrid(g)
	if err != nil {
		return nil, err
	}
	log.WithField("prediction", res.Prediction).Debug("classified grid")
	return res, nil
}

// BoundsResult shows the bounding box before and after squaring.
type BoundsResult struct {
	GridSize int                `json:"grid_size"`
	Tight    vision.BoundingBox `json:"tight"`
	Square   vision.BoundingBox `json:"square"`
	Side     int                `json:"side"`
	Region   []string           `json:"region"`
}

func (s *Server) handleBounds(args jsoniter.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	g, err := a.grid()
	if err != nil {
		return nil, err
	}

	tight, err := vision.TightBounds(g)
	if err != nil {
		return nil, err
	}
	square, err := vision.FindBounds(g)
	if err != nil {
		return nil, err
	}
	region, err := vision.Crop(g, square)
	if err != nil {
		return nil, err
	}

	return &BoundsResult{
		GridSize: g.Size(),
		Tight:    tight,
		Square:   square,
		Side:     square.Side(),
		Region:   region.Rows(),
	}, nil
}

// === Canvas Handlers ===

// Point is a canvas cell.
type Point struct {
	Col int `json:"col" validate:"min=0"`
	Row int `json:"row" validate:"min=0"`
}

type canvasDrawArgs struct {
	Points []Point `json:"points" validate:"required,min=1,dive"`
	Erase  bool    `json:"erase"`
	Brush  string  `json:"brush" validate:"omitempty,oneof=plus pixel"`
}

// CanvasState summarizes the drawing surface.
type CanvasState struct {
	Size   int      `json:"size"`
	Active int      `json:"active_cells"`
	Rows   []string `json:"rows,omitempty"`
}

func (s *Server) canvasState(withRows bool) *CanvasState {
	st := &CanvasState{Size: s.canvas.Size()}
	if b, ok := s.canvas.Snapshot().(vision.Board); ok {
		g := b.Grid()
		st.Active = g.Active()
		if withRows {
			st.Rows = g.Rows()
		}
	}
	return st
}

func (s *Server) handleCanvasDraw(args jsoniter.RawMessage) (interface{}, error) {
	var a canvasDrawArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.canvas.Size()
	for _, p := range a.Points {
		if p.Col >= n || p.Row >= n {
			return nil, &argError{fmt.Errorf("point (%d,%d) outside %dx%d canvas", p.Col, p.Row, n, n)}
		}
	}
	for _, p := range a.Points {
		if a.Brush == "pixel" {
			s.canvas.Plot(p.Col, p.Row, !a.Erase)
		} else {
			s.canvas.Paint(p.Col, p.Row, !a.Erase)
		}
	}
	return s.canvasState(false), nil
}

type canvasClearArgs struct {
	Resolution int `json:"resolution" validate:"omitempty,min=5,max=400"`
}

func (s *Server) handleCanvasClear(args jsoniter.RawMessage) (interface{}, error) {
	var a canvasClearArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Resolution != 0 && a.Resolution != s.canvas.Size() {
		s.canvas = vision.NewCanvas(a.Resolution)
	} else {
		s.canvas.Clear()
	}
	return s.canvasState(false), nil
}

func (s *Server) handleCanvasClassify(log *logrus.Entry) (interface{}, error) {
	s.mu.Lock()
	snap := s.canvas.Snapshot()
	s.mu.Unlock()

	res, err := vision.ClassifySnapshot(snap)
	if err != nil {
		return nil, err
	}
	log.WithField("prediction", res.Prediction).Debug("classified canvas")
	return res, nil
}

// === Render Handler ===

type renderArgs struct {
	Path     string   `json:"path" validate:"required_without=Rows,excluded_with=Rows"`
	Rows     []string `json:"rows" validate:"omitempty,dive,required"`
	CellSize int      `json:"cell_size" validate:"omitempty,min=1,max=64"`
	Labels   bool     `json:"labels"`
	NoLines  bool     `json:"no_lines"`
	RasterArgs
}

// RenderOutput holds every picture of one classification.
type RenderOutput struct {
	Prediction int                   `json:"prediction"`
	Box        vision.BoundingBox    `json:"bounding_box"`
	Board      *imaging.RenderResult `json:"board"`
	Proximal   *imaging.RenderResult `json:"proximal_grid"`
	Scores     *imaging.ChartResult  `json:"scores_chart"`
	Source     *imaging.CropResult   `json:"source_crop,omitempty"`
}

func (s *Server) handleRender(args jsoniter.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		board vision.Board
		img   image.Image
		opts  imaging.RasterOptions
	)
	if a.Path != "" {
		var canvas *vision.Canvas
		var err error
		img, canvas, opts, err = s.rasterize(a.Path, a.RasterArgs)
		if err != nil {
			return nil, err
		}
		snap, ok := canvas.Snapshot().(vision.Board)
		if !ok {
			return nil, vision.ErrEmptyInput
		}
		board = snap
	} else {
		g, err := gridArgs{Rows: a.Rows}.grid()
		if err != nil {
			return nil, err
		}
		if board, err = vision.NewBoard(g); err != nil {
			return nil, err
		}
	}

	box, region, proximal, err := vision.Simplify(board)
	if err != nil {
		return nil, err
	}
	scores := vision.ScoreDigits(vision.DetectFeatures(proximal))

	ropts := imaging.DefaultRenderOptions()
	if a.CellSize != 0 {
		ropts.CellSize = a.CellSize
	}
	ropts.Labels = a.Labels
	ropts.Lines = !a.NoLines

	out := &RenderOutput{Prediction: scores.Prediction, Box: box}
	if out.Board, err = imaging.RenderBoard(region, ropts); err != nil {
		return nil, err
	}
	if out.Proximal, err = imaging.RenderProximal(proximal, ropts); err != nil {
		return nil, err
	}
	if out.Scores, err = imaging.RenderScores(scores.Digits, scores.Prediction); err != nil {
		return nil, err
	}
	if img != nil {
		if out.Source, err = imaging.CropDigitPNG(img, box, opts.Resolution, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// === OCR Handler ===

type crosscheckArgs struct {
	Path string `json:"path" validate:"required"`
	RasterArgs
}

// Crosscheck compares the feature classifier with Tesseract.
type Crosscheck struct {
	Classifier int                `json:"classifier"`
	OCR        *ocr.DigitReading  `json:"ocr"`
	Agree      bool               `json:"agree"`
	Box        vision.BoundingBox `json:"bounding_box"`
}

func (s *Server) handleOCRCrosscheck(log *logrus.Entry, args jsoniter.RawMessage) (interface{}, error) {
	var a crosscheckArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	img, canvas, opts, err := s.rasterize(a.Path, a.RasterArgs)
	if err != nil {
		return nil, err
	}
	res, err := vision.ClassifySnapshot(canvas.Snapshot())
	if err != nil {
		return nil, err
	}

	// A little context around the glyph helps Tesseract.
	margin := img.Bounds().Dx() / 20
	crop, err := imaging.CropDigit(img, res.Box, opts.Resolution, margin)
	if err != nil {
		return nil, err
	}
	reading, err := ocr.RecognizeDigit(crop)
	if err != nil {
		return nil, err
	}

	agree := reading.Digit == res.Prediction
	log.WithFields(logrus.Fields{
		"prediction": res.Prediction,
		"ocr":        reading.Digit,
		"agree":      agree,
	}).Debug("cross-checked image")

	return &Crosscheck{
		Classifier: res.Prediction,
		OCR:        reading,
		Agree:      agree,
		Box:        res.Box,
	}, nil
}
