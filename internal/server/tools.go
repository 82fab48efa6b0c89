package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool's path argument.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// pipelineProperties are the optional overrides accepted by every tool that
// runs the counting pipeline.
func pipelineProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty,
		"mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"advanced", "simple"},
			"description": "Pipeline variant. 'advanced' (default) builds separate masks for dark and light objects; 'simple' ORs five detectors",
		},
		"backend": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"go", "opencv"},
			"description": "Segmentation backend. Default is the server's configured one; 'opencv' needs a server built with -tags opencv",
		},
		"min_area": map[string]interface{}{
			"type":        "number",
			"description": "Minimum contour area in square pixels for a region to be counted. Default depends on mode (50 advanced, 100 simple)",
		},
		"canny_low": map[string]interface{}{
			"type":        "number",
			"description": "Low Canny hysteresis threshold. Default depends on mode (30 advanced, 50 simple)",
		},
		"canny_high": map[string]interface{}{
			"type":        "number",
			"description": "High Canny hysteresis threshold. Default depends on mode (80 advanced, 150 simple)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	count := pipelineProperties()
	count["include_image"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the annotated image as base64 PNG. Default false",
		"default":     false,
	}
	count["include_contours"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return each object's contour points. Default false",
		"default":     false,
	}

	masks := pipelineProperties()
	masks["masks"] = map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "string",
			"enum": []string{"combined", "dark", "light"},
		},
		"description": "Which masks to return. Default all available (dark and light exist only in advanced mode)",
	}

	crop := pipelineProperties()
	crop["index"] = map[string]interface{}{
		"type":        "integer",
		"description": "1-based object index as reported by count_objects",
	}
	crop["padding"] = map[string]interface{}{
		"type":        "integer",
		"description": "Pixels added around the object's bounding box. Default 10",
		"default":     10,
	}
	crop["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "count_objects",
			Description: "Count the distinct objects (coins, seeds, sweets...) lying on a plain background. Touching objects are separated by watershed. Returns the count and each object's index, centroid, area and bounding box.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": count,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "object_masks",
			Description: "Return the binary foreground masks the counter built, as base64 PNG (white = object). Use this to see why objects were merged or missed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": masks,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "object_crop",
			Description: "Crop one counted object (by its 1-based index) with some padding and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": crop,
				"required":   []string{"path", "index"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection on the smoothed grayscale image and return the edge map as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold. Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold. Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
