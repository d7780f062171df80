package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `stepwise tracks a user's progress through step-by-step catalog activities.

Workflow:
1) Browse: list_catalog (filter by category or difficulty).
2) Track: add_activity(activity_id) puts it on your list as "added".
3) Work: start_activity, then toggle_step for each step. Completing every step completes the activity
   and updates the daily streak. Activities without steps finish with complete_activity.
4) Manage: skip_activity / resume_activity / remove_activity.
5) Review: list_my_activities and get_stats.

Errors carry a stable code (NOT_FOUND, ALREADY_IN_LIST, INVALID_TRANSITION, STALE_REVISION, STEP_NOT_FOUND).
Read stepwise://docs/lifecycle for the full state machine.
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
		URI:         "stepwise://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Activity lifecycle",
		Description: "States, transitions, step toggling rules and streak badges.",
		Content: `# Activity lifecycle

States: added, in-progress, completed, skipped. Removing a record deletes it.

| Operation | Allowed from | Result |
|---|---|---|
| add_activity | no record | added |
| add_activity | completed | reset to added, progress cleared |
| add_activity | added, in-progress, skipped | ALREADY_IN_LIST with the current status |
| start_activity | added | in-progress, startedAt set, step count snapshotted |
| toggle_step | started and in-progress or completed | status derived from completed steps |
| complete_activity | in-progress with no steps | completed |
| skip_activity | added, in-progress | skipped, progress kept |
| resume_activity | skipped | added (start again to continue) |
| remove_activity | any | deleted |

## Toggling

- A step is added to the completed set if absent, removed if present.
- percentComplete = round(100 * completed / total).
- All steps done: completed. Anything less: in-progress.
- currentStep is the last step touched, not a cursor.

## Streaks and badges

Recalculated on every transition into completed, by calendar day.

- Completion yesterday or never: streak + 1.
- Gap of more than a day: streak restarts at 1.
- Already counted today: unchanged.

Badges are kept forever once earned: First Step (streak 1), Week Warrior (7), Streak Master (30),
Explorer (10 completions), Dedication (50 completions).
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

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
