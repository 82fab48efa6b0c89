// Package detection counts and draws the objects found by the segment
// package.
//
// Count walks the object labels of a watershed label grid in ascending
// order, traces each region's outer contour and keeps the regions whose
// contour area exceeds a minimum. Annotate draws the result onto a copy of
// the source image; Process runs segmentation, counting and annotation in
// one call.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Measurements
//
// Contours run through pixel centers, so a solid n x n square has contour
// area (n-1)². Centroids are whole pixels and always fall inside their
// contour.
//
// # Annotation
//
// Outlines cycle through a fixed 10-color palette by object index. Indexes
// and the total count are drawn with the fixed 7x13 bitmap face from
// golang.org/x/image/font/basicfont.
package detection
