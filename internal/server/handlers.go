package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/object-counter/internal/backend"
	"github.com/ironsheep/object-counter/internal/detection"
	"github.com/ironsheep/object-counter/internal/imaging"
	"github.com/ironsheep/object-counter/internal/segment"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "count_objects").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Runs the imaging or counting function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "count_objects":
		return s.handleCountObjects(args)
	case "object_masks":
		return s.handleObjectMasks(args)
	case "object_crop":
		return s.handleObjectCrop(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Counting Handlers ===

// pipelineArgs are the overrides shared by the counting tools. Absent
// fields keep the base parameters; an explicit zero is a real value.
type pipelineArgs struct {
	Path      string   `json:"path"`
	Mode      string   `json:"mode"`
	Backend   string   `json:"backend"`
	MinArea   *float64 `json:"min_area"`
	CannyLow  *float64 `json:"canny_low"`
	CannyHigh *float64 `json:"canny_high"`
}

// params resolves the effective pipeline parameters for a call. Without a
// mode the server's configured parameters are used as the base. Switching
// mode keeps the configured backend.
func (a pipelineArgs) params(base segment.Params) (segment.Params, error) {
	p := base
	if a.Mode != "" && a.Mode != base.Mode {
		var err error
		if p, err = segment.ParamsForMode(a.Mode); err != nil {
			return p, err
		}
		p.Backend = base.Backend
	}
	if a.Backend != "" {
		p.Backend = a.Backend
	}
	if a.MinArea != nil {
		p = p.WithMinArea(*a.MinArea)
	}
	if a.CannyLow != nil || a.CannyHigh != nil {
		low, high := p.CannyLow, p.CannyHigh
		if a.CannyLow != nil {
			low = *a.CannyLow
		}
		if a.CannyHigh != nil {
			high = *a.CannyHigh
		}
		p = p.WithCanny(low, high)
	}
	return p, p.Validate()
}

// process loads the image and runs the full counting pipeline on it.
func (s *Server) process(a pipelineArgs, opts detection.AnnotateOptions) (image.Image, *detection.Outcome, segment.Params, error) {
	p, err := a.params(s.params)
	if err != nil {
		return nil, nil, p, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, p, err
	}
	seg, err := backend.New(p, s.logger)
	if err != nil {
		return nil, nil, p, err
	}
	out, err := detection.Process(img, seg, opts)
	if err != nil {
		return nil, nil, p, err
	}
	return img, out, p, nil
}

type countObjectsArgs struct {
	pipelineArgs
	IncludeImage    bool `json:"include_image"`
	IncludeContours bool `json:"include_contours"`
}

// CountResult is the count_objects response.
type CountResult struct {
	Count       int                   `json:"count"`
	Mode        string                `json:"mode"`
	Backend     string                `json:"backend"`
	MinArea     float64               `json:"min_area"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Boundaries  int                   `json:"boundary_pixels"`
	Detections  []detection.Detection `json:"detections"`
	ImageBase64 string                `json:"image_base64,omitempty"`
	MimeType    string                `json:"mime_type,omitempty"`
}

func (s *Server) handleCountObjects(args json.RawMessage) (interface{}, error) {
	var a countObjectsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	img, out, p, err := s.process(a.pipelineArgs, detection.DefaultAnnotateOptions())
	if err != nil {
		return nil, err
	}

	dets := make([]detection.Detection, len(out.Result.Detections))
	copy(dets, out.Result.Detections)
	if !a.IncludeContours {
		for i := range dets {
			dets[i].Contour = nil
		}
	}

	b := img.Bounds()
	res := &CountResult{
		Count:      out.Result.Count,
		Mode:       p.Mode,
		Backend:    p.Backend,
		MinArea:    p.MinArea,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Boundaries: out.Segmentation.Grid.CountState(segment.CellBoundary),
		Detections: dets,
	}
	if a.IncludeImage {
		encoded, err := imaging.EncodePNGBase64(out.Annotated)
		if err != nil {
			return nil, fmt.Errorf("failed to encode annotated image: %w", err)
		}
		res.ImageBase64 = encoded
		res.MimeType = "image/png"
	}
	return res, nil
}

type objectMasksArgs struct {
	pipelineArgs
	Masks []string `json:"masks"`
}

// MaskImage is one encoded mask in the object_masks response.
type MaskImage struct {
	Name             string `json:"name"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	ForegroundPixels int    `json:"foreground_pixels"`
	ImageBase64      string `json:"image_base64"`
	MimeType         string `json:"mime_type"`
}

// MasksResult is the object_masks response.
type MasksResult struct {
	Mode  string      `json:"mode"`
	Masks []MaskImage `json:"masks"`
}

func (s *Server) handleObjectMasks(args json.RawMessage) (interface{}, error) {
	var a objectMasksArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	_, out, p, err := s.process(a.pipelineArgs, detection.AnnotateOptions{})
	if err != nil {
		return nil, err
	}

	available := map[string]segment.Mask{"combined": out.Masks.Combined}
	order := []string{"combined"}
	if out.Masks.HasSplit() {
		available["dark"] = out.Masks.Dark
		available["light"] = out.Masks.Light
		order = append(order, "dark", "light")
	}

	names := a.Masks
	if len(names) == 0 {
		names = order
	}

	res := &MasksResult{Mode: p.Mode, Masks: make([]MaskImage, 0, len(names))}
	for _, name := range names {
		m, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("mask %q not available in %s mode", name, p.Mode)
		}
		encoded, err := imaging.EncodePNGBase64(m.ToGray())
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s mask: %w", name, err)
		}
		res.Masks = append(res.Masks, MaskImage{
			Name:             name,
			Width:            m.Width,
			Height:           m.Height,
			ForegroundPixels: m.Count(),
			ImageBase64:      encoded,
			MimeType:         "image/png",
		})
	}
	return res, nil
}

type objectCropArgs struct {
	pipelineArgs
	Index   int     `json:"index"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

// ObjectCropResult is the object_crop response.
type ObjectCropResult struct {
	Object detection.Detection `json:"object"`
	*imaging.CropResult
}

func (s *Server) handleObjectCrop(args json.RawMessage) (interface{}, error) {
	var a objectCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, out, _, err := s.process(a.pipelineArgs, detection.AnnotateOptions{})
	if err != nil {
		return nil, err
	}
	if a.Index < 1 || a.Index > out.Result.Count {
		return nil, fmt.Errorf("object index %d out of range (found %d objects)", a.Index, out.Result.Count)
	}

	det := out.Result.Detections[a.Index-1]
	rect := image.Rect(det.Bounds.X1, det.Bounds.Y1, det.Bounds.X2, det.Bounds.Y2).Add(img.Bounds().Min)
	crop, err := imaging.Crop(img, rect, padding, a.Scale)
	if err != nil {
		return nil, err
	}
	det.Contour = nil
	return &ObjectCropResult{Object: det, CropResult: crop}, nil
}

// === Edge Handler ===

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = 50
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = 150
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}
