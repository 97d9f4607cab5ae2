package mcp

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var readOnly = map[string]any{"readOnlyHint": true}

func sourceSchema() map[string]any {
	return object(map[string]any{
		"id":           prop("string", "Source ID (from new_source)"),
		"object_name":  prop("string", "API name of the object, e.g. Event or Opportunity"),
		"object_label": prop("string", "Display label of the object"),
		"start_field":  prop("string", "Date or datetime field for the event start"),
		"end_field":    prop("string", "Optional date or datetime field for the event end"),
		"title_field":  prop("string", "Field shown as the event title"),
		"title_type":   prop("string", "Field type of the title field"),
		"user_field":   prop("string", "Optional user reference field used for owner filtering"),
		"filters": map[string]any{
			"type":        "array",
			"maxItems":    5,
			"description": "Filter clauses",
			"items": object(map[string]any{
				"field": prop("string", "Field API name"),
				"type":  prop("string", "Field type"),
				"value": prop("string", "Value to compare"),
			}),
		},
		"filter_logic": prop("string", "Custom filter logic, e.g. 1 AND (2 OR 3)"),
		"color":        prop("string", "Event color (#rrggbb)"),
		"is_active":    prop("boolean", "Whether the source contributes events"),
	})
}

func viewProps() map[string]any {
	return map[string]any{
		"view":     enum("Calendar view (default month)", "month", "week", "day"),
		"anchor":   prop("string", "Any date inside the view, YYYY-MM-DD (default today)"),
		"owner_id": prop("string", "Only include records owned by this user"),
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	render := viewProps()
	render["cap"] = prop("integer", "Events shown per cell before the more link (default from settings)")

	more := viewProps()
	more["date"] = prop("string", "Cell date, YYYY-MM-DD")
	more["hour"] = prop("integer", "Hour slot 0-23 (week and day views)")
	more["cap"] = prop("integer", "Events shown per cell before the more link")
	more["point"] = object(map[string]any{"x": prop("number", "Click x"), "y": prop("number", "Click y")})
	more["viewport"] = object(map[string]any{"width": prop("number", "Viewport width"), "height": prop("number", "Viewport height")})

	return []ToolDefinition{
		// Source setup
		{
			Name:        "list_objects",
			Description: "List the objects a calendar source can be built on",
			InputSchema: object(map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "get_field_options",
			Description: "List date, user reference, title candidate and all fields of an object",
			InputSchema: object(map[string]any{
				"object":     prop("string", "Object API name"),
				"title_type": prop("string", "Only offer title fields of this type"),
			}, "object"),
			Annotations: readOnly,
		},
		{
			Name:        "list_sources",
			Description: "List configured calendar sources",
			InputSchema: object(map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "new_source",
			Description: "Create an unsaved source draft with a fresh ID and color",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "edit_filter",
			Description: "Add, change or remove one filter clause on a source draft and return the edited draft",
			InputSchema: object(map[string]any{
				"source": sourceSchema(),
				"action": enum("Edit to apply", "add", "field", "value", "remove"),
				"index":  prop("integer", "Filter clause index for field, value and remove"),
				"field": object(map[string]any{
					"label": prop("string", "Field label"),
					"value": prop("string", "Field API name"),
					"type":  prop("string", "Field type"),
				}),
				"value": prop("string", "New clause value"),
			}, "source", "action"),
		},
		{
			Name:        "save_source",
			Description: "Validate and save a source; replaces the source with the same ID or appends it",
			InputSchema: object(map[string]any{"source": sourceSchema()}, "source"),
		},
		{
			Name:        "delete_source",
			Description: "Delete a configured source",
			InputSchema: object(map[string]any{"id": prop("string", "Source ID")}, "id"),
		},
		{
			Name:        "set_source_active",
			Description: "Enable or disable a source without deleting it",
			InputSchema: object(map[string]any{
				"id":     prop("string", "Source ID"),
				"active": prop("boolean", "Whether the source contributes events"),
			}, "id", "active"),
		},

		// Settings
		{
			Name:        "get_settings",
			Description: "Get theme colors, the per-day event cap and the default object",
			InputSchema: object(map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "update_settings",
			Description: "Update theme colors, the per-day event cap or the default object",
			InputSchema: object(map[string]any{
				"theme": map[string]any{
					"type":                 "object",
					"description":          "Theme key to color, e.g. {\"headerBackground\": \"#003366\"}",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"day_cap":        prop("integer", "Events shown per cell, 1-20"),
				"default_object": prop("string", "Object used when creating records from an empty cell"),
			}),
		},

		// Calendar
		{
			Name:        "render_calendar",
			Description: "Load events from every active source and build the month, week or day grid",
			InputSchema: object(render),
			Annotations: readOnly,
		},
		{
			Name:        "show_more",
			Description: "List every event behind a cell or hour slot and place the popover",
			InputSchema: object(more, "date"),
			Annotations: readOnly,
		},
		{
			Name:        "export_ics",
			Description: "Export the events of a view as iCalendar text",
			InputSchema: object(viewProps()),
			Annotations: readOnly,
		},

		// Navigation
		{
			Name:        "create_record",
			Description: "Get the record-creation page for a clicked cell, with start and end prefilled when possible",
			InputSchema: object(map[string]any{
				"object":    prop("string", "Object to create (default from settings)"),
				"date":      prop("string", "Clicked date, YYYY-MM-DD"),
				"date_time": prop("string", "Clicked hour slot start, ISO 8601 UTC (week and day views)"),
				"view":      enum("View the click came from", "month", "week", "day"),
			}, "date"),
		},
		{
			Name:        "view_record",
			Description: "Get the record page for an event",
			InputSchema: object(map[string]any{
				"id":     prop("string", "Record ID"),
				"object": prop("string", "Object API name"),
			}, "id"),
			Annotations: readOnly,
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "List recent configuration changes and source fetch failures",
			InputSchema: object(map[string]any{
				"source_id": prop("string", "Only entries for this source"),
				"type":      enum("Only entries of this type", "source_saved", "source_deleted", "source_toggled", "settings_updated", "fetch_failed"),
				"limit":     prop("integer", "Maximum entries (default 50)"),
				"offset":    prop("integer", "Entries to skip"),
			}),
			Annotations: readOnly,
		},
	}
}
