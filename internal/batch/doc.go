// Package batch counts objects in many image files.
//
// A Runner loads each file, runs detection.Process on it and writes the
// annotated image plus the debug masks next to the input (or into an
// output directory). Files are processed by a fixed number of workers;
// outcomes come back in input order and one bad file never stops the rest.
//
// # Output Files
//
// For an input "photos/coins.jpg" the runner writes:
//   - photos/coins_result.jpg: annotated copy of the input
//   - photos/coins_mask_combined.png: final binary mask
//   - photos/coins_mask_dark.png: dark-object mask (advanced mode only)
//   - photos/coins_mask_light.png: light-object mask (advanced mode only)
//
// Mask files are skipped when the runner is built WithSaveMasks(false).
package batch
