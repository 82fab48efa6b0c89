// Package imaging provides the image plumbing shared by the object counting
// pipeline and the MCP server.
//
// It covers decoding and saving image files (with an in-memory cache for the
// server), reducing color images to a smoothed intensity grid, Canny edge
// detection and cropping. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// Images returned by Reduce, ToGray and Canny always have their origin at
// (0,0), even when the source is a sub-image.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless, never modify their inputs, and can be called concurrently.
//
// # Error Handling
//
// Nil, empty, missing and undecodable images are reported with errors that
// wrap ErrInvalidInput, so callers can test for them with errors.Is.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
