package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/fitcheck-mcp/internal/detector"
	"github.com/ironsheep/fitcheck-mcp/internal/fit"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
	"github.com/ironsheep/fitcheck-mcp/internal/ocr"
)

// callTool runs a tools/call request and decodes the text content.
func callTool(t *testing.T, s *Server, name string, args interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	return out, nil
}

func mustCall(t *testing.T, s *Server, name string, args interface{}) map[string]interface{} {
	t.Helper()
	out, rpcErr := callTool(t, s, name, args)
	if rpcErr != nil {
		t.Fatalf("%s failed: %s: %v", name, rpcErr.Message, rpcErr.Data)
	}
	return out
}

func TestHandleToolsCall_DiningTableScenario(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	mustCall(t, s, "mode_set", map[string]interface{}{"mode": "room"})
	mustCall(t, s, "room_set", map[string]interface{}{"room": "160x240x100"})

	out := mustCall(t, s, "item_select", map[string]interface{}{"id": "Dining Table"})
	item := out["item"].(map[string]interface{})
	if item["id"] != "dining-table" {
		t.Errorf("item id: got %v, want dining-table", item["id"])
	}
	if out["fits"] != true {
		t.Errorf("initial verdict should fit, got %v", out["reason"])
	}

	out = mustCall(t, s, "placement_scale", map[string]interface{}{"factor": 1.5})
	if out["fits"] != false {
		t.Fatal("1.5x dining table should not fit a 160cm wide room")
	}
	if out["code"] != string(fit.CodeTooWide) {
		t.Errorf("code: got %v, want %s", out["code"], fit.CodeTooWide)
	}
	if reason, _ := out["reason"].(string); !strings.Contains(reason, "240cm") {
		t.Errorf("reason should mention the scaled width, got %q", reason)
	}

	out = mustCall(t, s, "fit_max_scale", nil)
	if out["max_scale"] != 1.0 {
		t.Errorf("max_scale: got %v, want 1", out["max_scale"])
	}
}

func TestHandleToolsCall_UnknownItem(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	_, rpcErr := callTool(t, s, "item_select", map[string]interface{}{"id": "hammock"})
	if rpcErr == nil {
		t.Fatal("expected error for unknown item")
	}
	if rpcErr.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", rpcErr.Code)
	}
	if data, _ := rpcErr.Data.(string); !strings.Contains(data, "unknown item") {
		t.Errorf("error data: got %v", rpcErr.Data)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	_, rpcErr := callTool(t, s, "image_crop", map[string]interface{}{})
	if rpcErr == nil || rpcErr.Code != -32000 {
		t.Fatalf("expected tool failure, got %+v", rpcErr)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_CatalogList(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	out := mustCall(t, s, "catalog_list", nil)
	if out["count"] != float64(6) {
		t.Errorf("count: got %v, want 6", out["count"])
	}

	out = mustCall(t, s, "catalog_list", map[string]interface{}{"category": "tables"})
	if out["count"] != float64(2) {
		t.Errorf("tables count: got %v, want 2", out["count"])
	}
}

func TestHandleToolsCall_ItemCustomFallback(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	out := mustCall(t, s, "item_custom", map[string]interface{}{
		"name":   "Plant stand",
		"width":  "abc",
		"height": "80",
		"depth":  "40 cm",
	})

	item := out["item"].(map[string]interface{})
	dims := item["dimensions"].(map[string]interface{})
	if dims["width"] != float64(100) || dims["height"] != float64(80) || dims["depth"] != float64(40) {
		t.Errorf("dimensions: got %v, want 100x80x40", dims)
	}
	if id, _ := item["id"].(string); !strings.HasPrefix(id, "custom-") {
		t.Errorf("id: got %q, want custom- prefix", id)
	}

	fellBack, _ := out["fell_back"].([]interface{})
	if len(fellBack) != 1 || fellBack[0] != "width" {
		t.Errorf("fell_back: got %v, want [width]", fellBack)
	}
}

func TestHandleToolsCall_ItemFromLabelMissingFile(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	_, rpcErr := callTool(t, s, "item_from_label", map[string]interface{}{"path": "/nonexistent/label.png"})
	if rpcErr == nil {
		t.Fatal("expected error for missing label photo")
	}

	_, rpcErr = callTool(t, s, "item_from_label", map[string]interface{}{})
	if rpcErr == nil {
		t.Fatal("expected error without path")
	}
}

func TestHandleToolsCall_ItemFromLabelBlankPhoto(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create label: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode label: %v", err)
	}
	f.Close()

	for _, region := range []string{"", "center"} {
		_, rpcErr := callTool(t, s, "item_from_label", map[string]interface{}{"path": path, "region": region})
		if rpcErr == nil {
			t.Fatalf("region %q: a blank label has no dimensions", region)
		}
		if data, _ := rpcErr.Data.(string); !ocr.Available() && !strings.Contains(data, "OCR unavailable") {
			t.Errorf("region %q: error data %q should report missing OCR", region, data)
		}
	}

	if _, ok := s.sess.Item(); ok {
		t.Error("a failed label read must not change the selected item")
	}
}

func TestHandleToolsCall_HugeItemAndRegionRender(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	out := mustCall(t, s, "item_custom", map[string]interface{}{
		"width": "1e11", "height": "80", "depth": "40",
	})
	fellBack, _ := out["fell_back"].([]interface{})
	if len(fellBack) != 1 || fellBack[0] != "width" {
		t.Errorf("fell_back: got %v, want [width]", fellBack)
	}

	mustCall(t, s, "obstacles_set", map[string]interface{}{
		"regions": []obstacles.Region{
			{X: 0, Y: 0, Width: 1e12, Height: 1e12, Class: obstacles.ClassObstacle, Confidence: 0.9},
		},
	})

	done := make(chan *MCPResponse, 1)
	go func() {
		done <- s.handleRequest(&MCPRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "tools/call",
			Params:  json.RawMessage(`{"name":"fit_render_overlay"}`),
		})
	}()
	select {
	case resp := <-done:
		if resp.Error != nil {
			t.Errorf("fit_render_overlay failed: %s: %v", resp.Error.Message, resp.Error.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fit_render_overlay did not finish for an oversized region")
	}
}

func TestHandleToolsCall_PlacementScale(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "sofa"})

	out := mustCall(t, s, "placement_scale", map[string]interface{}{"direction": "up"})
	p := out["placement"].(map[string]interface{})
	if scale := p["scale"].(float64); scale < 1.0999 || scale > 1.1001 {
		t.Errorf("scale after up: got %v, want 1.1", scale)
	}

	out = mustCall(t, s, "placement_scale", map[string]interface{}{"scale": 10})
	p = out["placement"].(map[string]interface{})
	if p["scale"] != 3.0 {
		t.Errorf("scale should clamp to 3, got %v", p["scale"])
	}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"none", map[string]interface{}{}},
		{"two", map[string]interface{}{"direction": "up", "factor": 2}},
		{"bad direction", map[string]interface{}{"direction": "sideways"}},
		{"zero factor", map[string]interface{}{"factor": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, rpcErr := callTool(t, s, "placement_scale", tt.args); rpcErr == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHandleToolsCall_MoveAndReset(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "bookshelf"})

	out := mustCall(t, s, "placement_move", map[string]interface{}{"x": 10, "y": 360})
	if out["code"] != string(fit.CodeOutOfBounds) {
		t.Errorf("code: got %v, want %s", out["code"], fit.CodeOutOfBounds)
	}

	out = mustCall(t, s, "placement_reset", nil)
	p := out["placement"].(map[string]interface{})
	if x, y := p["x"].(float64), p["y"].(float64); math.Abs(x-640) > 1e-9 || math.Abs(y-504) > 1e-9 {
		t.Errorf("reset placement: got (%v, %v), want (640, 504)", x, y)
	}
}

func TestHandleToolsCall_ObstaclesSet(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "sofa"})

	out := mustCall(t, s, "obstacles_set", map[string]interface{}{
		"regions": []obstacles.Region{
			{X: 620, Y: 484, Width: 40, Height: 40, Class: obstacles.ClassObstacle, Confidence: 0.9, Label: "chair"},
			{X: 0, Y: 0, Width: -5, Height: 1, Class: obstacles.ClassObstacle, Confidence: 0.9},
		},
	})
	if out["accepted"] != float64(1) || out["dropped"] != float64(1) {
		t.Errorf("accepted/dropped: got %v/%v, want 1/1", out["accepted"], out["dropped"])
	}
	if out["code"] != string(fit.CodeBlocked) {
		t.Errorf("code: got %v, want %s", out["code"], fit.CodeBlocked)
	}
	if out["reason"] != "Blocked by chair (90% confidence)" {
		t.Errorf("reason: got %v", out["reason"])
	}
	if _, ok := out["blocking_region"]; !ok {
		t.Error("blocked verdict should carry the blocking region")
	}
}

func TestHandleToolsCall_DetectWithoutDetector(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	if _, rpcErr := callTool(t, s, "obstacles_detect", nil); rpcErr == nil {
		t.Error("expected error without a detector")
	}
	if _, rpcErr := callTool(t, s, "detector_start", nil); rpcErr == nil {
		t.Error("expected error starting a missing detector")
	}

	out := mustCall(t, s, "detector_stop", nil)
	if out["running"] != false {
		t.Errorf("running: got %v, want false", out["running"])
	}
}

func TestHandleToolsCall_DetectAndRefresher(t *testing.T) {
	det := &detector.StaticDetector{Regions: []obstacles.Region{
		{X: 0, Y: 0, Width: 1280, Height: 720, Class: obstacles.ClassObstacle, Confidence: 0.8, Label: "wall"},
	}}
	s := newTestServer(t, fit.ModeCamera, det)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "desk"})

	out := mustCall(t, s, "obstacles_detect", nil)
	if out["ran"] != true {
		t.Error("detection should have run")
	}
	if regions, _ := out["regions"].([]interface{}); len(regions) != 1 {
		t.Errorf("regions: got %v, want 1", out["regions"])
	}
	if out["code"] != string(fit.CodeBlocked) {
		t.Errorf("code: got %v, want %s", out["code"], fit.CodeBlocked)
	}

	out = mustCall(t, s, "detector_start", nil)
	if out["running"] != true {
		t.Errorf("running after start: got %v", out["running"])
	}
	out = mustCall(t, s, "detector_start", nil)
	if out["running"] != true {
		t.Errorf("second start should be a no-op, got running=%v", out["running"])
	}

	out = mustCall(t, s, "detector_stop", nil)
	if out["running"] != false {
		t.Errorf("running after stop: got %v", out["running"])
	}
}

func TestHandleToolsCall_FitMaxScaleNeedsRoom(t *testing.T) {
	s := newTestServer(t, fit.ModeRoom, nil)

	if _, rpcErr := callTool(t, s, "fit_max_scale", nil); rpcErr == nil {
		t.Error("expected error without an item")
	}
	mustCall(t, s, "item_select", map[string]interface{}{"id": "desk"})
	if _, rpcErr := callTool(t, s, "fit_max_scale", nil); rpcErr == nil {
		t.Error("expected error without a room")
	}
}

func TestHandleToolsCall_RoomAndViewport(t *testing.T) {
	s := newTestServer(t, fit.ModeHybrid, nil)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "bed"})

	out := mustCall(t, s, "room_set", map[string]interface{}{"width": 150, "height": 250, "depth": 300})
	if out["code"] != string(fit.CodeTooWide) {
		t.Errorf("code: got %v, want %s", out["code"], fit.CodeTooWide)
	}

	out = mustCall(t, s, "room_set", map[string]interface{}{"clear": true})
	if out["fits"] != true {
		t.Errorf("clearing the room should fit, got %v", out["reason"])
	}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"partial", map[string]interface{}{"width": 100}},
		{"bad string", map[string]interface{}{"room": "100x200"}},
		{"negative", map[string]interface{}{"width": -1, "height": 1, "depth": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, rpcErr := callTool(t, s, "room_set", tt.args); rpcErr == nil {
				t.Error("expected error")
			}
		})
	}

	if _, rpcErr := callTool(t, s, "viewport_set", map[string]interface{}{"width": 0, "height": 100}); rpcErr == nil {
		t.Error("expected error for degenerate viewport")
	}
	out = mustCall(t, s, "viewport_set", map[string]interface{}{"width": 250, "height": 300})
	if out["code"] != string(fit.CodeOutOfBounds) && out["code"] != string(fit.CodeTooLarge) {
		t.Errorf("160cm bed should not fit a 250px viewport, got %v", out["code"])
	}
}

func TestHandleToolsCall_RenderOverlay(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	if _, rpcErr := callTool(t, s, "fit_render_overlay", nil); rpcErr == nil {
		t.Error("expected error without an item")
	}

	mustCall(t, s, "item_select", map[string]interface{}{"id": "sofa"})
	out := mustCall(t, s, "fit_render_overlay", nil)
	if out["mime_type"] != "image/png" {
		t.Errorf("mime_type: got %v", out["mime_type"])
	}
	if out["width"] != float64(1280) || out["height"] != float64(720) {
		t.Errorf("preview size: got %vx%v", out["width"], out["height"])
	}
	if data, _ := out["image_base64"].(string); data == "" {
		t.Error("image_base64 is empty")
	}
	verdict := out["verdict"].(map[string]interface{})
	if verdict["fits"] != true || out["fits"] != true {
		t.Errorf("sofa at the default placement should fit: %v", verdict)
	}
}

func TestHandleToolsCall_SessionStatus(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)
	mustCall(t, s, "item_select", map[string]interface{}{"id": "armchair"})

	out := mustCall(t, s, "session_status", nil)
	if out["id"] == "" {
		t.Error("status should carry the session id")
	}
	if _, ok := out["overlay"]; !ok {
		t.Error("status should carry the overlay rectangle")
	}
	ocrInfo, ok := out["ocr"].(map[string]interface{})
	if !ok {
		t.Fatal("status should describe the OCR backend")
	}
	if _, ok := ocrInfo["available"]; !ok {
		t.Error("ocr.available missing")
	}
	cfg := out["config"].(map[string]interface{})
	if cfg["mode"] != string(fit.ModeCamera) {
		t.Errorf("mode: got %v", cfg["mode"])
	}
}

func TestHandleToolsCall_ModeSetUnknown(t *testing.T) {
	s := newTestServer(t, fit.ModeCamera, nil)

	if _, rpcErr := callTool(t, s, "mode_set", map[string]interface{}{"mode": "ar"}); rpcErr == nil {
		t.Error("expected error for unknown mode")
	}

	out := mustCall(t, s, "mode_set", map[string]interface{}{"mode": "room3d"})
	cfg := out["config"].(map[string]interface{})
	if cfg["compare_height"] != true {
		t.Errorf("room3d should compare height: %v", cfg)
	}
}
