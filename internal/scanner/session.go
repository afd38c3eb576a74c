package scanner

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/docscan/internal/capture"
	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logging"
	"github.com/ironsheep/docscan/internal/quality"
	"github.com/ironsheep/docscan/internal/rectify"
)

// ErrFramePanic wraps a panic recovered while processing one frame.
var ErrFramePanic = errors.New("scanner: frame processing panicked")

// Frame is one image from the stream. A zero Timestamp is replaced with the
// wall clock.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
}

// Report is the per-frame snapshot handed to the UI layer.
type Report struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Skipped   bool      `json:"skipped"`
	// Failed marks a frame whose analysis errored or panicked. The rest of
	// the report carries the state from before that frame.
	Failed bool `json:"failed,omitempty"`

	// Corners are in full-resolution frame coordinates, or nil when no
	// document was found.
	Corners   *geometry.Quad `json:"corners,omitempty"`
	AreaRatio float64        `json:"area_ratio,omitempty"`

	Scores           quality.Scores `json:"scores"`
	State            capture.State  `json:"state"`
	Phase            capture.Phase  `json:"phase"`
	CountdownSeconds int            `json:"countdown_seconds"`
	Progress         float64        `json:"progress"`
	OverlayColor     string         `json:"overlay_color"`
	ShowSubScores    bool           `json:"show_sub_scores"`

	// Result is set on the frame that completed an automatic capture.
	Result *rectify.ScanResult `json:"result,omitempty"`
}

// CaptureListener receives every successful capture.
type CaptureListener func(*rectify.ScanResult)

// Session is the frame loop for one stream. It is not safe for concurrent
// use: Process, RequestCapture and Stop must be called from one goroutine.
type Session struct {
	cfg       *config.Config
	ops       imaging.Ops
	logger    *slog.Logger
	detector  *detection.Detector
	scorer    *quality.Scorer
	machine   *capture.Machine
	rectifier *rectify.Rectifier
	overlay   *Overlay
	listeners []CaptureListener

	frames      int
	skipCounter int

	// Latest processed frame, held for manual capture.
	lastFrame   image.Image
	lastCorners *geometry.Quad
	lastArea    float64
	lastScores  quality.Scores
}

// New builds a Session. cfg is validated in place; a nil cfg uses the
// defaults and a nil logger discards output.
func New(cfg *config.Config, ops imaging.Ops, logger *slog.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	_ = cfg.Validate()
	logger = logging.OrDiscard(logger)

	s := &Session{
		cfg:       cfg,
		ops:       ops,
		logger:    logger,
		detector:  detection.NewDetector(ops, cfg.DetectionOptions(), logger),
		scorer:    quality.NewScorer(ops, cfg.QualityOptions()),
		machine:   capture.NewMachine(cfg.CaptureOptions(), logger),
		rectifier: rectify.New(ops, logger),
		overlay:   NewOverlay(),
	}
	return s
}

// Config returns the session's configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// State returns the capture state.
func (s *Session) State() capture.State { return s.machine.State() }

// Corners returns the corners held from the latest processed frame.
func (s *Session) Corners() (geometry.Quad, bool) {
	if s.lastCorners == nil {
		return geometry.Quad{}, false
	}
	return *s.lastCorners, true
}

// History returns the corner history, oldest first.
func (s *Session) History() []quality.HistoryEntry { return s.scorer.History() }

// OnCapture registers l for every subsequent capture.
func (s *Session) OnCapture(l CaptureListener) {
	s.listeners = append(s.listeners, l)
}

// OnTransition registers l for every capture state transition.
func (s *Session) OnTransition(l capture.Listener) {
	s.machine.AddListener(l)
}

// Process analyses one frame. Frames dropped by the processing rate return
// a Skipped report and leave all state untouched. A nil or empty frame is a
// frame without a document. When analysis fails the error is returned with
// a Failed report and the rolling state is left as it was; a capture
// interrupted by a panic is aborted back to Idle. The next frame proceeds
// normally.
func (s *Session) Process(f Frame) (rep Report, err error) {
	now := f.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	s.frames++
	index := s.frames

	s.skipCounter = (s.skipCounter + 1) % s.cfg.FrameProcessingRate
	if s.skipCounter != 0 {
		rep = s.report(index, now)
		rep.Skipped = true
		return rep, nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.machine.Abort()
			s.logger.Error("frame processing panic", "frame", index, "error", r)
			rep = s.report(index, now)
			rep.Failed = true
			err = fmt.Errorf("frame %d: %w: %v", index, ErrFramePanic, r)
		}
	}()

	a, err := s.analyse(f.Image)
	if err != nil {
		s.logger.Warn("frame failed", "frame", index, "error", err)
		rep = s.report(index, now)
		rep.Failed = true
		return rep, fmt.Errorf("frame %d: %w", index, err)
	}

	// Commit. Nothing below fails part way.
	scores := s.scorer.Commit(a.corners, a.measurement, now)
	fire := s.machine.Update(a.corners != nil, scores.Overall, now)
	s.lastFrame = f.Image
	s.lastCorners = a.corners
	s.lastArea = a.areaRatio
	s.lastScores = scores

	var result *rectify.ScanResult
	var captureErr error
	if fire {
		result, captureErr = s.capture(now)
	}

	s.overlay.Step(Target(s.machine.Busy(now), a.corners != nil, scores.Overall, s.cfg.CaptureThreshold))
	rep = s.report(index, now)
	rep.Result = result
	if captureErr != nil {
		return rep, fmt.Errorf("frame %d: %w", index, captureErr)
	}
	return rep, nil
}

type analysis struct {
	corners     *geometry.Quad
	areaRatio   float64
	measurement quality.Measurement
}

// analyse runs detection and measurement on the processing-resolution
// frame. It does not touch rolling state. A nil or empty frame yields no
// corners and zero sub-scores.
func (s *Session) analyse(img image.Image) (analysis, error) {
	if img == nil || img.Bounds().Empty() {
		return analysis{}, nil
	}
	s.ops.Reset()

	small, sx, sy := imaging.Downscale(img, s.cfg.MaxProcessingWidth)
	gray, err := s.ops.Grayscale(small)
	if err != nil {
		return analysis{}, err
	}

	q, ok, err := s.detector.DetectGray(gray)
	if err != nil {
		return analysis{}, err
	}
	m, err := s.scorer.Measure(gray)
	if err != nil {
		return analysis{}, err
	}

	a := analysis{measurement: m}
	if ok {
		full := q.Corners.Scale(sx, sy)
		a.corners = &full
		a.areaRatio = q.AreaRatio
	}
	return a, nil
}

// RequestCapture captures the latest processed frame immediately. It fails
// with capture.ErrNoDocument when that frame held no document and with
// capture.ErrCaptureInProgress while another capture is running; neither
// changes any state. A panic during rectification aborts the capture and is
// returned as ErrFramePanic.
func (s *Session) RequestCapture(now time.Time) (result *rectify.ScanResult, err error) {
	if now.IsZero() {
		now = time.Now()
	}
	if err := s.machine.RequestManual(s.lastCorners != nil, now); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			s.machine.Abort()
			s.logger.Error("manual capture panic", "error", r)
			result, err = nil, fmt.Errorf("capture: %w: %v", ErrFramePanic, r)
		}
	}()
	return s.capture(now)
}

// capture rectifies the held frame. The machine must be Capturing.
func (s *Session) capture(now time.Time) (*rectify.ScanResult, error) {
	var corners []geometry.Point
	if s.lastCorners != nil {
		corners = s.lastCorners.Points()
	}

	result, err := s.rectifier.Rectify(s.lastFrame, corners, s.lastScores, now)
	if err != nil {
		s.machine.Abort()
		s.logger.Warn("capture aborted", "trigger", s.machine.Trigger().String(), "error", err)
		return nil, fmt.Errorf("capture: %w", err)
	}
	s.machine.Complete()

	s.logger.Info("document captured",
		"id", result.ID,
		"width", result.Width,
		"height", result.Height,
		"trigger", s.machine.Trigger().String(),
	)
	for _, l := range s.listeners {
		l(result)
	}
	return result, nil
}

func (s *Session) report(index int, now time.Time) Report {
	return Report{
		Index:            index,
		Timestamp:        now,
		Corners:          s.lastCorners,
		AreaRatio:        s.lastArea,
		Scores:           s.lastScores,
		State:            s.machine.State(),
		Phase:            s.machine.Phase(now),
		CountdownSeconds: s.machine.CountdownSeconds(now),
		Progress:         s.machine.Progress(now),
		OverlayColor:     s.overlay.Hex(),
		ShowSubScores:    s.cfg.ShowSubScores,
	}
}

// Stop tears the stream down: the corner history, countdown and held frame
// are cleared and the scratch planes are handed back to the pool for reuse.
// The pool itself stays allocated; the session may be reused for a new
// stream.
func (s *Session) Stop() {
	s.scorer.Reset()
	s.machine.Reset()
	s.overlay.Reset()
	s.ops.Reset()
	s.frames = 0
	s.skipCounter = 0
	s.lastFrame = nil
	s.lastCorners = nil
	s.lastArea = 0
	s.lastScores = quality.Scores{}
	s.logger.Debug("session stopped")
}
