// Package ocr asks Tesseract (via gosseract/v2) what digit a drawing shows.
//
// It exists as a second opinion next to the feature-based classifier: the
// server crops the drawing to its bounding box and compares the two answers.
//
// # Prerequisites
//
// Tesseract and its English data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Reading Digits
//
// RecognizeDigit runs Tesseract in single-character mode with a whitelist of
// 0-9. Hand-drawn strokes are often thin or touch the crop edge, so the image
// is framed in white and upscaled first. A reading with Digit -1 means
// Tesseract saw no digit, which is common for sketchy input and not an error.
package ocr
