package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the frame image file",
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "number"},
		"y": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scan_detect_document",
			Description: "Find the document outline in a frame. Returns the four corners ordered top-left, top-right, bottom-right, bottom-left and the outline's share of the frame area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"min_document_area": map[string]interface{}{
						"type":        "number",
						"description": "Smallest accepted outline area as a fraction of the frame. Default 0.2",
						"default":     0.2,
					},
					"max_document_area": map[string]interface{}{
						"type":        "number",
						"description": "Largest accepted outline area as a fraction of the frame. Default 0.95",
						"default":     0.95,
					},
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with the detected outline drawn on it as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_quality",
			Description: "Score a single frame for sharpness (Laplacian variance) and lighting (brightness, contrast and clipping), each 0-100.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_rectify",
			Description: "Perspective-correct the document in a frame into an upright image. Uses the given corners, or detects them when omitted. Returns base64-encoded PNG unless output_path is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"corners": map[string]interface{}{
						"type":        "array",
						"description": "Four document corners in any order",
						"items":       pointSchema,
						"minItems":    4,
						"maxItems":    4,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the PNG to instead of returning it inline",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_replay",
			Description: "Run a complete capture session over frames in order, as if they came from a camera. Returns per-frame scores, capture state and every automatic capture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Frame image files in stream order",
						"items":       map[string]interface{}{"type": "string"},
					},
					"interval_ms": map[string]interface{}{
						"type":        "integer",
						"description": "Milliseconds between frames. Default 100",
						"default":     100,
					},
					"config": map[string]interface{}{
						"type":        "object",
						"description": "Configuration overrides, same fields as scan_default_config",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory to write captured PNGs to",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "scan_default_config",
			Description: "Return the default scanner configuration.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
