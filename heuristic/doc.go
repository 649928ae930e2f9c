// Package heuristic provides local, deterministic fallbacks for when a
// remote AI call fails or returns unusable output: keyword extraction by
// stop-word filtering and frequency ranking, title synthesis from OCR
// text, and content-type classification by regex pattern voting.
//
// Everything here is a pure function over text. Nothing in this package
// performs I/O or talks to a model.
package heuristic
