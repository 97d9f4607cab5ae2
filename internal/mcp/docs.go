package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `crmcal shows records from several CRM objects on one month, week or day calendar.

Core concepts:
- Source: one object mapped onto the calendar (start field, optional end field, title field, optional owner field, up to 5 filters, a color).
- Event: one record placed on the calendar. Records without a usable start are skipped; a missing end means the event ends at its start.
- Cap: how many events a cell or hour slot shows before "+N more".
- Settings: theme colors, the cap, and the default object for creating records from an empty cell.

Default workflow:
1) Setup: list_objects, then get_field_options(object) to pick fields.
2) new_source for a draft, edit_filter to build filters, save_source to persist.
3) render_calendar(view, anchor) to load events from every active source.
   - Failures of one source never hide the others; check "failures" and "toasts".
4) show_more(date, hour) when a cell shows "+N more".
5) create_record(date, date_time) or view_record(id) to get the platform page to open.

Docs:
- crmcal://docs/index
- crmcal://docs/sources
- crmcal://docs/views
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "crmcal://docs/index",
		Name:        "docs_index",
		Title:       "crmcal docs index",
		Description: "Entry point: what the calendar does and which tools to call.",
		Content: `# crmcal

## Quick start

1. ` + "`list_sources`" + ` to see what is on the calendar.
2. ` + "`render_calendar`" + ` with ` + "`view`" + ` (month, week, day) and ` + "`anchor`" + ` (YYYY-MM-DD).
3. ` + "`show_more`" + ` for cells that overflow the cap.
4. ` + "`create_record`" + ` / ` + "`view_record`" + ` for navigation targets.

## Docs

- ` + "`crmcal://docs/sources`" + ` - configuring sources and filters.
- ` + "`crmcal://docs/views`" + ` - how events are bucketed into days and hour slots.

## Limitations

- Filters are passed to the platform as-is; crmcal does not evaluate them.
- ` + "`export_ics`" + ` reloads the window; it does not reuse a rendered grid.
`,
	},
	{
		URI:         "crmcal://docs/sources",
		Name:        "docs_sources",
		Title:       "Configuring sources",
		Description: "Field mapping, filters, colors and activation of calendar sources.",
		Content: `# Sources

A source needs an object, a start field and a title field. ` + "`save_source`" + ` rejects
drafts missing any of them with INVALID_SOURCE and a toast naming the missing fields.

- The start and end fields must be DATE or DATETIME fields (see ` + "`date_fields`" + `).
- ` + "`user_field`" + ` enables owner filtering via ` + "`owner_id`" + ` on render.
- Up to 5 filters. Each filter's input type follows its field type:
  DATE/DATETIME: date, BOOLEAN: checkbox, numeric types: number, otherwise text.
- Colors rotate through a fixed palette for new drafts.
- ` + "`set_source_active`" + ` hides a source without deleting it.
`,
	},
	{
		URI:         "crmcal://docs/views",
		Name:        "docs_views",
		Title:       "Calendar views",
		Description: "Month cells, week and day hour slots, and the more popover.",
		Content: `# Views

## Month
Weeks start on Sunday. Leading placeholder cells pad the first week. An event
appears on every day from its start day to its end day.

## Week and day
24 hour slots per day. An event appears in a slot when it overlaps
[slot start, slot start + 1h). Slot labels are ISO 8601 UTC instants.

## Overflow
Each cell shows at most ` + "`cap`" + ` events. The rest are counted in ` + "`more`" + `.
` + "`show_more`" + ` returns the full list and a popover placement that flips
left or up when it would cross the viewport edge.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
