package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/ironsheep/fitcheck-mcp/internal/catalog"
	"github.com/ironsheep/fitcheck-mcp/internal/config"
	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
	"github.com/ironsheep/fitcheck-mcp/internal/logging"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
	"github.com/ironsheep/fitcheck-mcp/internal/ocr"
	"github.com/ironsheep/fitcheck-mcp/internal/placement"
	"github.com/ironsheep/fitcheck-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "item_select", "placement_move").
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
		logging.Debugf("tool %s failed: %v", params.Name, err)
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
// Every handler that changes session state returns the verdict computed
// right after the change.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Catalog and item selection
	case "catalog_list":
		return s.handleCatalogList(args)
	case "item_select":
		return s.handleItemSelect(args)
	case "item_custom":
		return s.handleItemCustom(args)
	case "item_from_label":
		return s.handleItemFromLabel(args)

	// Space configuration
	case "mode_set":
		return s.handleModeSet(args)
	case "room_set":
		return s.handleRoomSet(args)
	case "viewport_set":
		return s.handleViewportSet(args)

	// Placement gestures
	case "placement_move":
		return s.handlePlacementMove(args)
	case "placement_scale":
		return s.handlePlacementScale(args)
	case "placement_reset":
		return s.verdict(s.sess.Reset()), nil

	// Obstacles and detection
	case "obstacles_set":
		return s.handleObstaclesSet(args)
	case "obstacles_detect":
		return s.handleObstaclesDetect()
	case "detector_start":
		return s.handleDetectorStart()
	case "detector_stop":
		s.sess.StopDetector()
		return s.detectorState(), nil

	// Fit verdicts
	case "fit_evaluate":
		return s.verdict(s.sess.Evaluate()), nil
	case "fit_max_scale":
		return s.handleFitMaxScale()
	case "fit_render_overlay":
		return s.handleFitRenderOverlay(args)
	case "session_status":
		return statusResult{Status: s.sess.Status(), OCR: ocr.GetInfo()}, nil

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

// unmarshalArgs tolerates a missing arguments object for tools whose
// parameters are all optional.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// verdictResult is the common reply to state-changing tools.
type verdictResult struct {
	fit.Result
	Placement placement.Placement `json:"placement"`
}

func (s *Server) verdict(r fit.Result) verdictResult {
	p, _ := s.sess.Placement()
	return verdictResult{Result: r, Placement: p}
}

type statusResult struct {
	session.Status
	OCR ocr.Info `json:"ocr"`
}

// === Catalog and Item Handlers ===

type catalogListArgs struct {
	Category string `json:"category"`
}

type catalogListResult struct {
	Items      []catalog.Item `json:"items"`
	Categories []string       `json:"categories"`
	Count      int            `json:"count"`
}

func (s *Server) handleCatalogList(args json.RawMessage) (interface{}, error) {
	var a catalogListArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	items := s.catalog.List(a.Category)
	return catalogListResult{
		Items:      items,
		Categories: s.catalog.Categories(),
		Count:      len(items),
	}, nil
}

type itemSelectArgs struct {
	ID string `json:"id"`
}

type itemResult struct {
	Item     catalog.Item `json:"item"`
	FellBack []string     `json:"fell_back,omitempty"`
	verdictResult
}

func (s *Server) handleItemSelect(args json.RawMessage) (interface{}, error) {
	var a itemSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	it, r, err := s.sess.SelectItem(a.ID)
	if err != nil {
		return nil, err
	}
	return itemResult{Item: it, verdictResult: s.verdict(r)}, nil
}

func (s *Server) handleItemCustom(args json.RawMessage) (interface{}, error) {
	var spec catalog.CustomSpec
	if err := unmarshalArgs(args, &spec); err != nil {
		return nil, err
	}
	it, fellBack := catalog.NewCustom(spec)
	if len(fellBack) > 0 {
		log.Printf("custom item %q: using defaults for %v", it.Name, fellBack)
	}
	r := s.sess.UseItem(it)
	return itemResult{Item: it, FellBack: fellBack, verdictResult: s.verdict(r)}, nil
}

type itemFromLabelArgs struct {
	Path     string `json:"path"`
	Region   string `json:"region"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Language string `json:"language"`
}

type labelResult struct {
	Text string `json:"text"`
	itemResult
}

func (s *Server) handleItemFromLabel(args json.RawMessage) (interface{}, error) {
	var a itemFromLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Language == "" {
		a.Language = s.ocrLang
	}

	if !ocr.Available() {
		return nil, ocr.ErrUnavailable
	}

	// A whole-photo call first lets Tesseract read the file as-is; the
	// enhanced crop is the fallback.
	var (
		text *ocr.Result
		dims geometry.Dimensions
	)
	if a.Region == "" {
		if raw, err := ocr.ExtractText(a.Path, a.Language); err != nil {
			return nil, err
		} else if d, err := catalog.ParseLabelDimensions(raw.Text); err == nil {
			text, dims = raw, d
		} else {
			logging.Debugf("label %s: no dimensions in raw OCR, retrying enhanced", a.Path)
		}
	}

	if text == nil {
		var err error
		text, dims, err = s.readPreparedLabel(a.Path, a.Region, a.Language)
		if err != nil {
			return nil, err
		}
	}

	it, fellBack := catalog.NewCustom(catalog.CustomSpec{
		Name:        a.Name,
		Width:       formatCm(dims.Width),
		Height:      formatCm(dims.Height),
		Depth:       formatCm(dims.Depth),
		Color:       a.Color,
		SourceImage: a.Path,
	})
	r := s.sess.UseItem(it)
	return labelResult{
		Text:       text.Text,
		itemResult: itemResult{Item: it, FellBack: fellBack, verdictResult: s.verdict(r)},
	}, nil
}

// readPreparedLabel crops and enhances the label photo before OCR.
func (s *Server) readPreparedLabel(path, regionName, lang string) (*ocr.Result, geometry.Dimensions, error) {
	img, err := s.labels.Load(path)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	defer s.labels.Evict(path)

	region, err := imaging.NamedRegion(img.Bounds(), regionName)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	label, err := imaging.PrepareLabel(img, region)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}

	text, err := ocr.ExtractImage(label, lang)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	dims, err := catalog.ParseLabelDimensions(text.Text)
	if err != nil {
		return nil, geometry.Dimensions{}, err
	}
	return text, dims, nil
}

func formatCm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// === Space Configuration Handlers ===

type modeSetArgs struct {
	Mode string `json:"mode"`
}

type modeResult struct {
	Config fit.Config `json:"config"`
	verdictResult
}

func (s *Server) handleModeSet(args json.RawMessage) (interface{}, error) {
	var a modeSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.sess.SetMode(fit.Mode(a.Mode))
	if err != nil {
		return nil, err
	}
	return modeResult{Config: s.sess.Config(), verdictResult: s.verdict(r)}, nil
}

type roomSetArgs struct {
	Room   string   `json:"room"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Depth  *float64 `json:"depth"`
	Clear  bool     `json:"clear"`
}

type roomResult struct {
	Room *geometry.Dimensions `json:"room"`
	verdictResult
}

func (s *Server) handleRoomSet(args json.RawMessage) (interface{}, error) {
	var a roomSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var room *geometry.Dimensions
	switch {
	case a.Clear:
	case a.Room != "":
		d, err := config.ParseRoom(a.Room)
		if err != nil {
			return nil, err
		}
		room = &d
	case a.Width != nil && a.Height != nil && a.Depth != nil:
		room = &geometry.Dimensions{Width: *a.Width, Height: *a.Height, Depth: *a.Depth}
	default:
		return nil, fmt.Errorf("room requires width, height and depth, a WxHxD string, or clear")
	}

	r, err := s.sess.SetRoom(room)
	if err != nil {
		return nil, err
	}
	return roomResult{Room: room, verdictResult: s.verdict(r)}, nil
}

type viewportSetArgs struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleViewportSet(args json.RawMessage) (interface{}, error) {
	var a viewportSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.sess.SetViewport(geometry.RectFromXYWH(0, 0, a.Width, a.Height))
	if err != nil {
		return nil, err
	}
	return s.verdict(r), nil
}

// === Placement Handlers ===

type placementMoveArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handlePlacementMove(args json.RawMessage) (interface{}, error) {
	var a placementMoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.verdict(s.sess.Move(a.X, a.Y)), nil
}

type placementScaleArgs struct {
	Direction string   `json:"direction"`
	Factor    *float64 `json:"factor"`
	Scale     *float64 `json:"scale"`
}

func (s *Server) handlePlacementScale(args json.RawMessage) (interface{}, error) {
	var a placementScaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	given := 0
	if a.Direction != "" {
		given++
	}
	if a.Factor != nil {
		given++
	}
	if a.Scale != nil {
		given++
	}
	if given != 1 {
		return nil, fmt.Errorf("give exactly one of direction, factor or scale")
	}

	var (
		r   fit.Result
		err error
	)
	switch {
	case a.Scale != nil:
		r, err = s.sess.SetScale(*a.Scale)
	case a.Factor != nil:
		r, err = s.sess.AdjustScale(*a.Factor)
	case a.Direction == "up":
		r, err = s.sess.AdjustScale(placement.ScaleUpFactor)
	case a.Direction == "down":
		r, err = s.sess.AdjustScale(placement.ScaleDownFactor)
	default:
		return nil, fmt.Errorf("unknown direction: %s", a.Direction)
	}
	if err != nil {
		return nil, err
	}
	return s.verdict(r), nil
}

// === Obstacle and Detection Handlers ===

type obstaclesSetArgs struct {
	Regions []obstacles.Region `json:"regions"`
}

type obstaclesResult struct {
	Accepted int    `json:"accepted"`
	Dropped  int    `json:"dropped"`
	Version  uint64 `json:"registry_version"`
	verdictResult
}

func (s *Server) handleObstaclesSet(args json.RawMessage) (interface{}, error) {
	var a obstaclesSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, dropped := s.sess.SetRegions(a.Regions)
	return obstaclesResult{
		Accepted:      len(a.Regions) - dropped,
		Dropped:       dropped,
		Version:       s.sess.Registry().Version(),
		verdictResult: s.verdict(r),
	}, nil
}

type detectResult struct {
	Ran     bool               `json:"ran"`
	Regions []obstacles.Region `json:"regions"`
	verdictResult
}

func (s *Server) handleObstaclesDetect() (interface{}, error) {
	ran, r, err := s.sess.DetectNow(s.ctx)
	if err != nil {
		return nil, err
	}
	return detectResult{
		Ran:           ran,
		Regions:       s.sess.Registry().Snapshot(),
		verdictResult: s.verdict(r),
	}, nil
}

type detectorResult struct {
	Running bool            `json:"running"`
	Stats   *detector.Stats `json:"stats,omitempty"`
}

func (s *Server) detectorState() detectorResult {
	stats, ok := s.sess.DetectorStats()
	if !ok {
		return detectorResult{}
	}
	return detectorResult{Running: stats.Running, Stats: &stats}
}

func (s *Server) handleDetectorStart() (interface{}, error) {
	err := s.sess.StartDetector(s.ctx)
	if err != nil && !errors.Is(err, detector.ErrRunning) {
		return nil, err
	}
	return s.detectorState(), nil
}

// === Fit Handlers ===

type maxScaleResult struct {
	MaxScale float64 `json:"max_scale"`
	Fits     bool    `json:"fits_at_min_scale"`
}

func (s *Server) handleFitMaxScale() (interface{}, error) {
	m, err := s.sess.MaxScale()
	if err != nil {
		return nil, err
	}
	return maxScaleResult{MaxScale: m, Fits: m > 0}, nil
}

type renderOverlayArgs struct {
	FramePath string `json:"frame_path"`
}

type renderResult struct {
	*imaging.OverlayResult
	Verdict fit.Result `json:"verdict"`
}

func (s *Server) handleFitRenderOverlay(args json.RawMessage) (interface{}, error) {
	var a renderOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.FramePath != "" {
		s.sess.SetFramePath(a.FramePath)
	}
	preview, r, err := s.sess.RenderOverlay()
	if err != nil {
		return nil, err
	}
	return renderResult{OverlayResult: preview, Verdict: r}, nil
}
