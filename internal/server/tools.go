package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func dimensionProps() map[string]interface{} {
	return map[string]interface{}{
		"width": map[string]interface{}{
			"type":        "number",
			"description": "Width in centimeters",
		},
		"height": map[string]interface{}{
			"type":        "number",
			"description": "Height in centimeters",
		},
		"depth": map[string]interface{}{
			"type":        "number",
			"description": "Depth in centimeters",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Catalog and item selection
		{
			Name:        "catalog_list",
			Description: "List furniture items in the catalog with their dimensions (cm) and colors. Optionally filter by category.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Only list items in this category (e.g., seating, tables, storage)",
					},
				},
			},
		},
		{
			Name:        "item_select",
			Description: "Select a catalog item by ID or name. The overlay is reset to the default position and scale, and the fit verdict is returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Catalog item ID (e.g., dining-table) or display name",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "item_custom",
			Description: "Create and select a custom item from typed-in dimensions. Values that are not positive numbers fall back to 100x100x50 cm; the fields that fell back are reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name (default: Custom Item)",
					},
					"width": map[string]interface{}{
						"type":        "string",
						"description": "Width in cm as typed, e.g. \"120\" or \"120,5 cm\"",
					},
					"height": map[string]interface{}{
						"type":        "string",
						"description": "Height in cm as typed",
					},
					"depth": map[string]interface{}{
						"type":        "string",
						"description": "Depth in cm as typed",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay color as #rgb or #rrggbb",
					},
					"source_image": map[string]interface{}{
						"type":        "string",
						"description": "Optional path of a product photo to remember with the item",
					},
				},
			},
		},
		{
			Name:        "item_from_label",
			Description: "Read a product label photo with OCR, parse its W x H x D dimensions, and select the result as a custom item. Requires a build with Tesseract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the label photo",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"full", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Part of the photo holding the label (default: full)",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name for the item",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay color as #rgb or #rrggbb",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default from server config)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Space configuration
		{
			Name:        "mode_set",
			Description: "Switch the fit mode. room: room dimensions only; room3d: room including height; camera: obstacles and screen bounds; hybrid: every check; preview: screen bounds only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"room", "room3d", "camera", "hybrid", "preview"},
						"description": "Fit mode",
					},
				},
				"required": []string{"mode"},
			},
		},
		{
			Name:        "room_set",
			Description: "Set the room dimensions the item is compared against, either as width/height/depth numbers or as a \"WxHxD\" string. Pass clear=true to remove them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					props := dimensionProps()
					props["room"] = map[string]interface{}{
						"type":        "string",
						"description": "Room as WxHxD in cm, e.g. 300x250x400",
					}
					props["clear"] = map[string]interface{}{
						"type":        "boolean",
						"description": "Remove the room dimensions",
					}
					return props
				}(),
			},
		},
		{
			Name:        "viewport_set",
			Description: "Set the size of the screen area the overlay is placed in. Detection is mapped into the new viewport.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Viewport width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Viewport height in pixels",
					},
				},
				"required": []string{"width", "height"},
			},
		},

		// Placement gestures
		{
			Name:        "placement_move",
			Description: "Move the overlay center to a screen point and return the fit verdict.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Center X in viewport pixels",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Center Y in viewport pixels",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "placement_scale",
			Description: "Change the overlay scale. Give exactly one of: direction (up = x1.1, down = x0.9), factor (multiply), or scale (absolute). The result is clamped to the mode's scale range.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"direction": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"up", "down"},
						"description": "Step the scale up or down",
					},
					"factor": map[string]interface{}{
						"type":        "number",
						"description": "Multiply the current scale by this factor",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Set this absolute scale",
					},
				},
			},
		},
		{
			Name:        "placement_reset",
			Description: "Return the overlay to the default position (horizontal center, 70% down the viewport) and scale 1.0.",
			InputSchema: noArgs(),
		},

		// Obstacles and detection
		{
			Name:        "obstacles_set",
			Description: "Replace the detected regions by hand. Regions with non-finite or non-positive geometry, or confidence outside 0..1, are dropped and counted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"regions": map[string]interface{}{
						"type":        "array",
						"description": "Regions in viewport coordinates",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":          map[string]interface{}{"type": "number"},
								"y":          map[string]interface{}{"type": "number"},
								"width":      map[string]interface{}{"type": "number"},
								"height":     map[string]interface{}{"type": "number"},
								"class":      map[string]interface{}{"type": "string", "enum": []string{"obstacle", "clear"}},
								"confidence": map[string]interface{}{"type": "number"},
								"label":      map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y", "width", "height", "class", "confidence"},
						},
					},
				},
				"required": []string{"regions"},
			},
		},
		{
			Name:        "obstacles_detect",
			Description: "Run the configured detector once and return the fit verdict against the fresh regions. Skipped if a detection is already running.",
			InputSchema: noArgs(),
		},
		{
			Name:        "detector_start",
			Description: "Start periodic background detection at the configured interval.",
			InputSchema: noArgs(),
		},
		{
			Name:        "detector_stop",
			Description: "Stop periodic background detection.",
			InputSchema: noArgs(),
		},

		// Fit verdicts
		{
			Name:        "fit_evaluate",
			Description: "Evaluate whether the selected item fits at its current placement and scale. Returns fits, a reason, and a machine-readable code.",
			InputSchema: noArgs(),
		},
		{
			Name:        "fit_max_scale",
			Description: "Return the largest scale at which the selected item still fits the room dimensions (0 if it never does).",
			InputSchema: noArgs(),
		},
		{
			Name:        "fit_render_overlay",
			Description: "Render the overlay over the latest camera frame as a base64 PNG. The border is green when the item fits and red when it does not; detected regions are outlined.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"frame_path": map[string]interface{}{
						"type":        "string",
						"description": "Camera frame to draw under the overlay; remembered for later previews (default: the configured frame)",
					},
				},
			},
		},
		{
			Name:        "session_status",
			Description: "Return the full session state: mode, item, placement, overlay rectangle, room, region counts, detector statistics, OCR availability and the current verdict.",
			InputSchema: noArgs(),
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
