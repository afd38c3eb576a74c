package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/quality"
	"github.com/ironsheep/docscan/internal/rectify"
	"github.com/ironsheep/docscan/internal/scanner"
)

// errInvalidParams marks argument errors so they map to -32602.
var errInvalidParams = errors.New("invalid params")

// errNoDocument is returned by tools that need a document outline when none
// was given or found.
var errNoDocument = errors.New("no document detected")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_detect_document").
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
// Argument errors return -32602; execution errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidParams) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailure, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "scan_detect_document":
		return s.handleDetectDocument(args)
	case "scan_quality":
		return s.handleQuality(args)
	case "scan_rectify":
		return s.handleRectify(args)
	case "scan_replay":
		return s.handleReplay(args)
	case "scan_default_config":
		return config.DefaultConfig(), nil
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidParams, name)
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

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

func (s *Server) loadFrame(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidParams)
	}
	return s.cache.Load(path)
}

// detect finds the document in img at processing resolution and returns
// its corners in img's coordinates.
func (s *Server) detect(img image.Image, cfg *config.Config) (*detection.Quadrilateral, error) {
	small, sx, sy := imaging.Downscale(img, cfg.MaxProcessingWidth)
	d := detection.NewDetector(s.ops, cfg.DetectionOptions(), s.logger)
	q, ok, err := d.Detect(small)
	if err != nil || !ok {
		return nil, err
	}
	q.Corners = q.Corners.Scale(sx, sy)
	return &q, nil
}

// === Detection ===

type detectArgs struct {
	Path            string   `json:"path"`
	MinDocumentArea *float64 `json:"min_document_area"`
	MaxDocumentArea *float64 `json:"max_document_area"`
	Annotate        bool     `json:"annotate"`
}

type detectResult struct {
	Found          bool           `json:"found"`
	Corners        *geometry.Quad `json:"corners,omitempty"`
	AreaRatio      float64        `json:"area_ratio"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	AnnotatedImage string         `json:"annotated_image_base64,omitempty"`
}

// annotationThickness is the outline width drawn by scan_detect_document.
const annotationThickness = 3

func (s *Server) handleDetectDocument(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	cfg := *s.cfg
	if a.MinDocumentArea != nil {
		cfg.MinDocumentArea = *a.MinDocumentArea
	}
	if a.MaxDocumentArea != nil {
		cfg.MaxDocumentArea = *a.MaxDocumentArea
	}
	_ = cfg.Validate()

	q, err := s.detect(img, &cfg)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	result := detectResult{Width: b.Dx(), Height: b.Dy()}
	if q != nil {
		result.Found = true
		result.Corners = &q.Corners
		result.AreaRatio = q.AreaRatio
		if a.Annotate {
			marked := imaging.Annotate(img, q.Corners, scanner.ColorReady, annotationThickness)
			if result.AnnotatedImage, err = imaging.EncodePNGBase64(marked); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// === Quality ===

type pathArgs struct {
	Path string `json:"path"`
}

type qualityResult struct {
	Sharpness         int     `json:"sharpness"`
	Lighting          int     `json:"lighting"`
	LaplacianVariance float64 `json:"laplacian_variance"`
	quality.LightingStats
}

func (s *Server) handleQuality(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	s.ops.Reset()
	small, _, _ := imaging.Downscale(img, s.cfg.MaxProcessingWidth)
	gray, err := s.ops.Grayscale(small)
	if err != nil {
		return nil, err
	}
	m, err := quality.NewScorer(s.ops, s.cfg.QualityOptions()).Measure(gray)
	if err != nil {
		return nil, err
	}
	return qualityResult{
		Sharpness:         m.Sharpness,
		Lighting:          m.Lighting,
		LaplacianVariance: m.LaplacianVariance,
		LightingStats:     m.Stats,
	}, nil
}

// === Rectification ===

type rectifyArgs struct {
	Path       string           `json:"path"`
	Corners    []geometry.Point `json:"corners"`
	OutputPath string           `json:"output_path"`
}

type rectifyResult struct {
	ID          string        `json:"id"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Corners     geometry.Quad `json:"corners"`
	ImageBase64 string        `json:"image_base64,omitempty"`
	OutputPath  string        `json:"output_path,omitempty"`
}

func (s *Server) handleRectify(args json.RawMessage) (interface{}, error) {
	var a rectifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Corners) != 0 && len(a.Corners) != 4 {
		return nil, fmt.Errorf("%w: corners must hold 4 points, got %d", errInvalidParams, len(a.Corners))
	}
	img, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	var corners geometry.Quad
	if len(a.Corners) == 4 {
		corners = geometry.OrderCorners([4]geometry.Point(a.Corners))
	} else {
		q, err := s.detect(img, s.cfg)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, errNoDocument
		}
		corners = q.Corners
	}

	res, err := rectify.New(s.ops, s.logger).Rectify(img, corners.Points(), quality.Scores{}, time.Now())
	if err != nil {
		return nil, err
	}

	out := rectifyResult{ID: res.ID, Width: res.Width, Height: res.Height, Corners: res.Corners}
	if a.OutputPath != "" {
		if err := res.Save(a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	} else {
		if out.ImageBase64, err = res.Base64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// === Replay ===

type replayArgs struct {
	Paths      []string        `json:"paths"`
	IntervalMs int             `json:"interval_ms"`
	Config     json.RawMessage `json:"config"`
	OutputDir  string          `json:"output_dir"`
}

type captureSummary struct {
	ID         string         `json:"id"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Corners    geometry.Quad  `json:"corners"`
	Quality    quality.Scores `json:"quality"`
	CapturedAt time.Time      `json:"captured_at"`
	OutputPath string         `json:"output_path,omitempty"`
}

type replayResult struct {
	Frames   int                  `json:"frames"`
	Reports  []scanner.Report     `json:"reports"`
	Captures []captureSummary     `json:"captures"`
	Errors   []scanner.FrameError `json:"errors,omitempty"`
}

// replayEpoch is the synthetic timestamp of the first replayed frame.
var replayEpoch = time.Unix(0, 0).UTC()

func (s *Server) handleReplay(args json.RawMessage) (interface{}, error) {
	var a replayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("%w: paths is required", errInvalidParams)
	}

	cfg := *s.cfg
	if len(a.Config) != 0 {
		if err := json.Unmarshal(a.Config, &cfg); err != nil {
			return nil, fmt.Errorf("%w: config: %v", errInvalidParams, err)
		}
	}
	_ = cfg.Validate()

	frames := make([]image.Image, 0, len(a.Paths))
	for _, p := range a.Paths {
		img, err := s.loadFrame(p)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}

	session := scanner.New(&cfg, s.ops, s.logger)
	defer session.Stop()
	replay := session.Replay(frames, replayEpoch, time.Duration(a.IntervalMs)*time.Millisecond)

	if a.OutputDir != "" {
		if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	out := replayResult{
		Frames:   len(frames),
		Reports:  replay.Reports,
		Captures: make([]captureSummary, 0, len(replay.Captures)),
		Errors:   replay.Errors,
	}
	for _, c := range replay.Captures {
		summary := captureSummary{
			ID:         c.ID,
			Width:      c.Width,
			Height:     c.Height,
			Corners:    c.Corners,
			Quality:    c.Quality,
			CapturedAt: c.CapturedAt,
		}
		if a.OutputDir != "" {
			summary.OutputPath = filepath.Join(a.OutputDir, c.ID+".png")
			if err := c.Save(summary.OutputPath); err != nil {
				return nil, err
			}
		}
		out.Captures = append(out.Captures, summary)
	}
	return out, nil
}
