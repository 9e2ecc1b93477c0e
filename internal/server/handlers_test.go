package server

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/digit-vision-mcp/internal/imaging"
	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// call runs a tool through handleToolsCall and returns the response.
func call(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: raw})
	require.NoError(t, err)
	return s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
}

// result decodes the text block of a successful tool response.
func result(t *testing.T, resp *MCPResponse) map[string]interface{} {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &m))
	return m
}

func requireCode(t *testing.T, resp *MCPResponse, code int) *MCPError {
	t.Helper()
	require.NotNil(t, resp.Error)
	assert.Equal(t, code, resp.Error.Code, "message %q data %v", resp.Error.Message, resp.Error.Data)
	return resp.Error
}

// thickLoop returns a 50x50 text drawing of a square ring three cells wide.
func thickLoop() []string {
	rows := make([]string, vision.DefaultResolution)
	for row := range rows {
		var b strings.Builder
		for col := 0; col < vision.DefaultResolution; col++ {
			in := col >= 10 && col < 40 && row >= 10 && row < 40
			edge := col < 13 || col > 36 || row < 13 || row > 36
			if in && edge {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[row] = b.String()
	}
	return rows
}

// verticalLine returns an n x n text drawing of one centre column.
func verticalLine(n int) []string {
	rows := make([]string, n)
	for row := range rows {
		rows[row] = strings.Repeat(".", n/2) + "#" + strings.Repeat(".", n-n/2-1)
	}
	return rows
}

func blank(n int) []string {
	rows := make([]string, n)
	for row := range rows {
		rows[row] = strings.Repeat(".", n)
	}
	return rows
}

// barImage writes a 200x200 white PNG with a black vertical bar.
func barImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	bar := image.Rect(96, 0, 104, 200)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if image.Pt(x, y).In(bar) {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "bar.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestClassifyGrid(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		rows []string
		want int
	}{
		{"thick loop", thickLoop(), 0},
		{"vertical line", verticalLine(vision.DefaultResolution), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := result(t, call(t, s, "digit_classify_grid", map[string]interface{}{"rows": tt.rows}))
			assert.Equal(t, float64(tt.want), res["prediction"])
			assert.Len(t, res["proximal_grid"], vision.ProximalSize)
		})
	}
}

func TestClassifyGrid_Errors(t *testing.T) {
	s := New()

	t.Run("nothing drawn", func(t *testing.T) {
		e := requireCode(t, call(t, s, "digit_classify_grid", map[string]interface{}{"rows": blank(10)}), codeToolFailed)
		assert.Contains(t, e.Data, "nothing drawn")
	})

	invalid := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing rows", map[string]interface{}{}},
		{"empty rows", map[string]interface{}{"rows": []string{}}},
		{"not square", map[string]interface{}{"rows": []string{"#..", "..."}}},
		{"ragged", map[string]interface{}{"rows": []string{"#.", "..."}}},
		{"wrong type", map[string]interface{}{"rows": "#"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, call(t, s, "digit_classify_grid", tt.args), codeInvalidParams)
		})
	}
}

func TestUnknownTool(t *testing.T) {
	e := requireCode(t, call(t, New(), "image_rotate", map[string]interface{}{}), codeToolFailed)
	assert.Contains(t, e.Data, "unknown tool: image_rotate")
}

func TestBounds(t *testing.T) {
	rows := blank(10)
	rows[2] = "#" + rows[2][1:]
	rows[7] = "#" + rows[7][1:]

	s := New()
	out, err := s.executeTool(s.log.WithField("test", true), "digit_bounds",
		jsoniter.RawMessage(`{"rows":`+mustMarshalJSON(rows)+`}`))
	require.NoError(t, err)

	b := out.(*BoundsResult)
	assert.Equal(t, 10, b.GridSize)
	assert.Equal(t, vision.BoundingBox{Left: 0, Right: 0, Top: 2, Bottom: 7}, b.Tight)
	assert.Equal(t, vision.BoundingBox{Left: 0, Right: 5, Top: 2, Bottom: 7}, b.Square)
	assert.Equal(t, 6, b.Side)
	require.Len(t, b.Region, 6)
	assert.Equal(t, "#.....", b.Region[0])
	assert.Equal(t, "#.....", b.Region[5])
}

func TestCanvas(t *testing.T) {
	s := New()

	points := make([]Point, vision.DefaultResolution)
	for row := range points {
		points[row] = Point{Col: 25, Row: row}
	}
	st := result(t, call(t, s, "digit_canvas_draw", map[string]interface{}{"points": points}))
	assert.Equal(t, float64(vision.DefaultResolution), st["size"])
	assert.Equal(t, float64(3*vision.DefaultResolution), st["active_cells"])

	res := result(t, call(t, s, "digit_canvas_classify", nil))
	assert.Equal(t, float64(1), res["prediction"])

	result(t, call(t, s, "digit_canvas_clear", map[string]interface{}{}))
	e := requireCode(t, call(t, s, "digit_canvas_classify", nil), codeToolFailed)
	assert.Contains(t, e.Data, "nothing drawn")

	st = result(t, call(t, s, "digit_canvas_clear", map[string]interface{}{"resolution": 20}))
	assert.Equal(t, float64(20), st["size"])
	assert.Equal(t, float64(0), st["active_cells"])
}

func TestCanvasDraw_PixelAndErase(t *testing.T) {
	s := New()

	st := result(t, call(t, s, "digit_canvas_draw", map[string]interface{}{
		"points": []Point{{Col: 5, Row: 5}, {Col: 9, Row: 9}},
		"brush":  "pixel",
	}))
	assert.Equal(t, float64(2), st["active_cells"])

	st = result(t, call(t, s, "digit_canvas_draw", map[string]interface{}{
		"points": []Point{{Col: 5, Row: 5}},
		"brush":  "pixel",
		"erase":  true,
	}))
	assert.Equal(t, float64(1), st["active_cells"])
}

func TestCanvasDraw_Errors(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no points", map[string]interface{}{}},
		{"outside", map[string]interface{}{"points": []Point{{Col: 50, Row: 0}}}},
		{"negative", map[string]interface{}{"points": []Point{{Col: -1, Row: 0}}}},
		{"bad brush", map[string]interface{}{"points": []Point{{Col: 1, Row: 1}}, "brush": "spray"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, call(t, s, "digit_canvas_draw", tt.args), codeInvalidParams)
		})
	}
	assert.Equal(t, 0, s.canvasState(false).Active, "rejected calls leave the canvas alone")

	requireCode(t, call(t, s, "digit_canvas_clear", map[string]interface{}{"resolution": 2}), codeInvalidParams)
}

func TestClassifyImage(t *testing.T) {
	s := New()
	path := barImage(t)

	res := result(t, call(t, s, "digit_classify_image", map[string]interface{}{"path": path}))
	assert.Equal(t, float64(1), res["prediction"])
	assert.Equal(t, path, res["path"])
	assert.Greater(t, res["active_cells"], float64(0))

	raster := res["raster"].(map[string]interface{})
	assert.Equal(t, "threshold", raster["mode"])
	assert.Equal(t, float64(50), raster["resolution"])
}

func TestClassifyImage_Errors(t *testing.T) {
	s := New()
	path := barImage(t)

	invalid := []map[string]interface{}{
		{},
		{"path": path, "mode": "sepia"},
		{"path": path, "resolution": 1},
		{"path": path, "threshold": 300},
		{"path": path, "contrast": 101.0},
	}
	for _, args := range invalid {
		requireCode(t, call(t, s, "digit_classify_image", args), codeInvalidParams)
	}

	e := requireCode(t, call(t, s, "digit_classify_image", map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing.png"),
	}), codeToolFailed)
	assert.NotEmpty(t, e.Data)
}

func TestRender_Rows(t *testing.T) {
	s := New()
	out, err := s.executeTool(s.log.WithField("test", true), "digit_render",
		jsoniter.RawMessage(`{"rows":`+mustMarshalJSON(thickLoop())+`,"cell_size":4,"labels":true}`))
	require.NoError(t, err)

	r := out.(*RenderOutput)
	assert.Equal(t, 0, r.Prediction)
	assert.Equal(t, "image/png", r.Board.MimeType)
	assert.Equal(t, vision.ProximalSize*4, r.Proximal.Width)
	assert.NotEmpty(t, r.Scores.ImageBase64)
	assert.Nil(t, r.Source)
}

func TestRender_Path(t *testing.T) {
	s := New()
	res := result(t, call(t, s, "digit_render", map[string]interface{}{"path": barImage(t)}))
	assert.Equal(t, float64(1), res["prediction"])
	assert.Contains(t, res, "source_crop")
}

func TestRender_Errors(t *testing.T) {
	s := New()

	requireCode(t, call(t, s, "digit_render", map[string]interface{}{}), codeInvalidParams)
	requireCode(t, call(t, s, "digit_render", map[string]interface{}{
		"path": "/tmp/x.png",
		"rows": verticalLine(5),
	}), codeInvalidParams)
	requireCode(t, call(t, s, "digit_render", map[string]interface{}{
		"rows":      verticalLine(5),
		"cell_size": 65,
	}), codeInvalidParams)

	e := requireCode(t, call(t, s, "digit_render", map[string]interface{}{"rows": blank(5)}), codeToolFailed)
	assert.Contains(t, e.Data, "nothing drawn")
}

func TestOCRCrosscheck_MissingFile(t *testing.T) {
	s := New()
	requireCode(t, call(t, s, "digit_ocr_crosscheck", map[string]interface{}{}), codeInvalidParams)
	requireCode(t, call(t, s, "digit_ocr_crosscheck", map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing.png"),
	}), codeToolFailed)
}

func TestImageLoad(t *testing.T) {
	s := New()
	path := barImage(t)

	res := result(t, call(t, s, "image_load", map[string]interface{}{"path": path}))
	assert.Equal(t, float64(200), res["width"])
	assert.Equal(t, float64(200), res["height"])
	assert.Equal(t, true, res["square"])
	assert.Equal(t, 1, s.cache.Len())

	// A reload picks up a file that changed on disk.
	require.NoError(t, os.WriteFile(path, []byte("no longer a png"), 0o644))
	result(t, call(t, s, "image_load", map[string]interface{}{"path": path}))
	requireCode(t, call(t, s, "image_load", map[string]interface{}{"path": path, "reload": true}), codeToolFailed)
	assert.Zero(t, s.cache.Len())

	requireCode(t, call(t, s, "image_load", map[string]interface{}{}), codeInvalidParams)
}

func TestRasterArgs_Options(t *testing.T) {
	s := New()
	contrast := 40.0

	assert.Equal(t, imaging.DefaultRasterOptions(), RasterArgs{}.options(s))

	got := RasterArgs{Resolution: 20, Mode: "contrast", Threshold: 90, Contrast: &contrast}.options(s)
	assert.Equal(t, imaging.RasterOptions{
		Resolution: 20,
		Mode:       imaging.ModeContrast,
		Threshold:  90,
		Contrast:   40,
	}, got)
}
