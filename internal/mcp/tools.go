package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

type toolset struct {
	catalog  CatalogService
	progress ProgressService
}

func registerTools(server *sdkmcp.Server, services Services) {
	t := &toolset{catalog: services.Catalog, progress: services.Progress}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_catalog",
		Description: "List active catalog activities, optionally filtered by category and difficulty",
	}, t.listCatalog)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_activity",
		Description: "Add a catalog activity to your list. Re-adding a completed activity resets it.",
	}, t.addActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_activity",
		Description: "Start an added activity; snapshots its step count",
	}, t.transition(progressOp(ProgressService.Start)))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_step",
		Description: "Mark a step complete, or incomplete if it already is. Completing every step completes the activity.",
	}, t.toggleStep)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "complete_activity",
		Description: "Complete an in-progress activity that has no steps",
	}, t.transition(progressOp(ProgressService.Complete)))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "skip_activity",
		Description: "Skip an added or in-progress activity",
	}, t.transition(progressOp(ProgressService.Skip)))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "resume_activity",
		Description: "Return a skipped activity to added",
	}, t.transition(progressOp(ProgressService.Resume)))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_activity",
		Description: "Delete an activity from your list",
	}, t.removeActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_my_activities",
		Description: "List your activities with their catalog details, most recently updated first",
	}, t.listMyActivities)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Completions today and overall, streak and badges",
	}, t.getStats)
}

type progressOp func(ProgressService, context.Context, string, string) (*progress.UserActivity, error)

func (t *toolset) listCatalog(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListCatalogParams) (*sdkmcp.CallToolResult, any, error) {
	opts := catalog.ListOptions{ActiveOnly: true}
	if in.Category != "" {
		category := catalog.Category(in.Category)
		opts.Category = &category
	}
	if in.Difficulty != "" {
		difficulty := catalog.Difficulty(in.Difficulty)
		opts.Difficulty = &difficulty
	}

	activities, err := t.catalog.List(ctx, opts)
	if err != nil {
		return nil, nil, toolError(err)
	}
	out := ListCatalogResult{Activities: make([]ActivitySummary, 0, len(activities)), Total: len(activities)}
	for _, act := range activities {
		out.Activities = append(out.Activities, summarize(act))
	}
	return nil, out, nil
}

func (t *toolset) addActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddActivityParams) (*sdkmcp.CallToolResult, any, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, nil, err
	}
	result, err := t.progress.AddActivity(ctx, uid, in.ActivityID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, AddActivityResult{UserActivity: result.UserActivity, IsReset: result.IsReset}, nil
}

func (t *toolset) transition(op progressOp) sdkmcp.ToolHandlerFor[UserActivityParams, any] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UserActivityParams) (*sdkmcp.CallToolResult, any, error) {
		uid, err := userID(ctx)
		if err != nil {
			return nil, nil, err
		}
		ua, err := op(t.progress, ctx, uid, in.UserActivityID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, UserActivityResult{UserActivity: ua, PercentComplete: ua.Progress.PercentComplete}, nil
	}
}

func (t *toolset) toggleStep(ctx context.Context, _ *sdkmcp.CallToolRequest, in ToggleStepParams) (*sdkmcp.CallToolResult, any, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, nil, err
	}
	ua, err := t.progress.ToggleStep(ctx, uid, in.UserActivityID, in.StepNumber)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, UserActivityResult{UserActivity: ua, PercentComplete: ua.Progress.PercentComplete}, nil
}

func (t *toolset) removeActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in UserActivityParams) (*sdkmcp.CallToolResult, any, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, nil, err
	}
	id, err := t.progress.Remove(ctx, uid, in.UserActivityID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, RemoveActivityResult{DeletedID: id}, nil
}

func (t *toolset) listMyActivities(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListMyActivitiesParams) (*sdkmcp.CallToolResult, any, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, nil, err
	}
	var opts progress.ListOptions
	if in.Status != "" {
		status := progress.Status(in.Status)
		if !status.Valid() {
			return nil, nil, &APIError{Code: "INVALID_INPUT", Message: "unknown status " + in.Status}
		}
		opts.Status = &status
	}
	entries, err := t.progress.ListForUser(ctx, uid, opts)
	if err != nil {
		return nil, nil, toolError(err)
	}
	if entries == nil {
		entries = []progress.Entry{}
	}
	return nil, ListMyActivitiesResult{UserActivities: entries}, nil
}

func (t *toolset) getStats(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetStatsParams) (*sdkmcp.CallToolResult, any, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := t.progress.Stats(ctx, uid)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return nil, GetStatsResult{Stats: stats}, nil
}
