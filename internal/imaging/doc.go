// Package imaging turns image files into classifier input and classifier state
// back into images.
//
// Rasterize is the bridge from a photo, scan or exported sketch to a
// vision.Canvas: the picture is flattened onto white, padded to a square with
// its own border colour, box-filtered down to the canvas resolution and split
// into ink and paper. Two separation modes exist:
//
//   - threshold: luminance below a level is ink (dark pen on light paper)
//   - contrast: Lab lightness far from the border's lightness is ink, which
//     also handles chalk on a blackboard
//
// RenderProximal and RenderBoard go the other way, drawing the 5x5 proximal
// grid or a boolean board as an upscaled PNG. CropDigit maps a canvas bounding
// box back to source pixels so the same region can be shown or handed to OCR.
//
// # Coordinate System
//
// Pixel and cell coordinates are 0-based with (0,0) at the top-left; x (or
// column) grows rightward and y (or row) grows downward. Canvas column x is
// pixel column x of the downscaled image.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Everything else is stateless.
package imaging
