// Package segment turns a photograph into a label grid in which every
// discrete object owns its own region.
//
// The work is split into stages that each allocate their output and never
// modify their inputs:
//
//   - Mask synthesis: several foreground detectors (global Otsu, local
//     Gaussian-weighted thresholds, edge blobs) are combined with a
//     fixed-order OR into one binary Mask.
//   - Morphological cleaning: opening with a small ellipse followed by two
//     closings of growing size removes speckle and fills pinholes.
//   - Watershed separation: seeds are placed on the peaks of the Euclidean
//     distance field and grown over the color image with a priority flood;
//     pixels where two basins meet become boundary cells.
//
// # Coordinate System
//
// Masks, distance fields and label grids are row-major with (0,0) at the
// top-left corner, matching the images produced by the imaging package.
//
// # Error Handling
//
// Nil or empty images fail with ErrInvalidInput. Parameter sets that cannot
// be run fail with ErrInvalidParams. An empty or full mask is not an error:
// it produces a background-only grid and zero objects.
package segment
