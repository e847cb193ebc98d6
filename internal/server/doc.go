// Package server implements the MCP (Model Context Protocol) server for
// furniture fit checking.
//
// The server exposes one fit-checking session through JSON-RPC 2.0 tools so
// an MCP client can pick furniture, place it in a camera view or a measured
// room, and ask whether it fits.
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
// Catalog and items:
//   - catalog_list: List preset furniture
//   - item_select: Select a preset by ID or name
//   - item_custom: Select a custom item from typed dimensions
//   - item_from_label: OCR a product label into a custom item
//
// Space configuration:
//   - mode_set: Switch between room, room3d, camera, hybrid and preview
//   - room_set: Set or clear room dimensions
//   - viewport_set: Resize the screen area
//
// Placement gestures:
//   - placement_move, placement_scale, placement_reset
//
// Obstacles and detection:
//   - obstacles_set: Feed regions by hand
//   - obstacles_detect: Run the detector once
//   - detector_start, detector_stop: Periodic background detection
//
// Verdicts:
//   - fit_evaluate: Current verdict
//   - fit_max_scale: Largest scale that still fits the room
//   - fit_render_overlay: PNG preview with a green or red border
//   - session_status: Everything at once
//
// Every tool that changes state replies with the verdict computed after the
// change, so clients never need a follow-up fit_evaluate.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(ctx, sess, cat, cfg.OCRLanguage)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
