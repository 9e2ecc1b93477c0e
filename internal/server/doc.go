// Package server implements the MCP (Model Context Protocol) server for
// hand-drawn digit recognition.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - initialize: protocol handshake
//   - notifications/initialized: acknowledged silently
//   - tools/list: enumerate tools
//   - tools/call: run a tool
//   - ping: health check
//
// Unknown methods get -32601, malformed JSON -32700, bad tool arguments
// -32602 and failing tools -32000 with the error text in data.
//
// # Available Tools
//
// Classification:
//   - digit_classify_image: rasterize an image file and classify it
//   - digit_classify_grid: classify a square text grid
//   - digit_bounds: show the tight and squared bounding boxes
//
// Drawing canvas (server-side state):
//   - digit_canvas_draw: paint or erase points with the plus brush
//   - digit_canvas_clear: erase or resize the canvas
//   - digit_canvas_classify: classify the canvas
//
// Visual output:
//   - digit_render: cropped board, 5x5 grid and score chart as PNGs
//   - digit_ocr_crosscheck: compare the prediction with Tesseract
//
// Files:
//   - image_load: cache an image and report its metadata
//
// An empty drawing is reported as the tool error "nothing drawn", never as a
// prediction.
//
// # Response Format
//
// Tool results are JSON inside an MCP text content block:
//
//	{
//	  "content": [{"type": "text", "text": "{\"prediction\": 7, ...}"}]
//	}
//
// # Logging
//
// Every tools/call gets a random call_id that appears on all of its log
// entries. Logs go to the configured logrus logger, never to stdout.
package server
