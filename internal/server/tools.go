package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var rowsProperty = map[string]interface{}{
	"type":        "array",
	"items":       map[string]interface{}{"type": "string"},
	"description": "Square drawing, one string per row, top row first. '#', '1', 'X', 'x' or '*' mark ink; any other character is blank.",
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to a PNG, JPEG or GIF of a single hand-drawn digit",
}

// withRaster adds the optional rasterizing properties to props.
func withRaster(props map[string]interface{}) map[string]interface{} {
	props["resolution"] = map[string]interface{}{
		"type":        "integer",
		"description": "Canvas side in cells the image is reduced to (5-400). Default from DIGIT_MCP_RESOLUTION, normally 50",
	}
	props["mode"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"threshold", "contrast"},
		"description": "threshold: darker than the threshold is ink. contrast: far from the border lightness is ink, for light-on-dark drawings",
	}
	props["threshold"] = map[string]interface{}{
		"type":        "integer",
		"description": "Luminance level 1-255 for threshold mode. Default 128",
	}
	props["contrast"] = map[string]interface{}{
		"type":        "number",
		"description": "Lab lightness distance 0-100 for contrast mode. Default 25",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file into the cache and return its dimensions and format. Later digit_* calls on the same path reuse the decoded image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop any cached copy and read the file again, e.g. after the drawing was edited",
					},
				},
				"required": []string{"path"},
			},
		},

		// Classification
		{
			Name:        "digit_classify_image",
			Description: "Recognize a hand-drawn digit 0-9 in an image. Returns the prediction, all ten digit scores, the 19 stroke feature scores, the 5x5 simplified grid and the bounding box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withRaster(map[string]interface{}{
					"path": pathProperty,
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "digit_classify_grid",
			Description: "Recognize a digit drawn as a square text grid. Returns the same detail as digit_classify_image. Fails with 'nothing drawn' when the grid has no ink.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rows": rowsProperty,
				},
				"required": []string{"rows"},
			},
		},
		{
			Name:        "digit_bounds",
			Description: "Show how a drawing is framed: the tight bounding box, the squared box that is actually used and the cropped region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rows": rowsProperty,
				},
				"required": []string{"rows"},
			},
		},

		// Drawing canvas
		{
			Name:        "digit_canvas_draw",
			Description: "Paint (or erase) cells on the server's drawing canvas. The default brush also touches the four neighbours of each point, like a finger on a touch screen.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"col": map[string]interface{}{"type": "integer"},
								"row": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"col", "row"},
						},
						"description": "Cells to paint, column then row from the top-left",
					},
					"erase": map[string]interface{}{
						"type":        "boolean",
						"description": "Clear the cells instead of painting them",
					},
					"brush": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"plus", "pixel"},
						"description": "plus (default) paints a cell and its neighbours; pixel paints only the cell",
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "digit_canvas_clear",
			Description: "Erase the drawing canvas, optionally resizing it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"resolution": map[string]interface{}{
						"type":        "integer",
						"description": "New canvas side (5-400). Omit to keep the current size",
					},
				},
			},
		},
		{
			Name:        "digit_canvas_classify",
			Description: "Recognize the digit currently drawn on the canvas.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Visual output
		{
			Name:        "digit_render",
			Description: "Render what the classifier sees as base64 PNGs: the cropped drawing with its five downsampling bands, the 5x5 simplified grid and a bar chart of the digit scores. Give either path or rows.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withRaster(map[string]interface{}{
					"path": pathProperty,
					"rows": rowsProperty,
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels per grid cell (1-64). Default 16",
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Print each 5x5 cell's value as a percentage",
					},
					"no_lines": map[string]interface{}{
						"type":        "boolean",
						"description": "Omit cell and band lines",
					},
				}),
			},
		},
		{
			Name:        "digit_ocr_crosscheck",
			Description: "Classify an image and ask Tesseract OCR for a second opinion on the same crop. Requires Tesseract to be installed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withRaster(map[string]interface{}{
					"path": pathProperty,
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
