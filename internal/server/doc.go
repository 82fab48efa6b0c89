// Package server implements the MCP (Model Context Protocol) server for the
// object counter.
//
// This package provides a JSON-RPC 2.0 server that exposes object counting
// through the MCP protocol, so an assistant can count coins, seeds or sweets
// in a photograph and inspect individual objects.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load image and get metadata
//   - count_objects: Count objects, optionally returning the annotated image
//   - object_masks: Return the binary masks behind the count
//   - object_crop: Crop one counted object by index
//   - image_edge_detect: Canny edge map of the smoothed image
//
// The counting tools accept mode, backend, min_area, canny_low and
// canny_high to override the server's pipeline parameters for a single call.
// An explicit zero is honored; omitted arguments keep the configured value.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithParams(cfg.Pipeline), server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
