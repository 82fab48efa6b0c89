// Package cvbackend runs the object counting pipeline through OpenCV via
// gocv. It is compiled only with the "opencv" build tag:
//
//	go build -tags opencv ./...
//
// The Segmenter it provides satisfies segment.Segmenter. internal/backend
// returns it when Params.Backend is "opencv", which is how the command line
// (-backend opencv, pipeline.backend) and the MCP server reach it. Stage parameters come from the same segment.Params. Unlike the
// pure Go pipeline, OpenCV's watershed marks the image frame as boundary.
package cvbackend
