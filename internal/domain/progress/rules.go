package progress

import (
	"math"
	"sort"
	"time"
)

// CanStart reports whether an activity in status s may be started.
func CanStart(s Status) bool {
	return s == StatusAdded
}

// CanSkip reports whether an activity in status s may be skipped.
func CanSkip(s Status) bool {
	return s == StatusAdded || s == StatusInProgress
}

// CanResume reports whether an activity in status s may be resumed.
func CanResume(s Status) bool {
	return s == StatusSkipped
}

// CanToggle reports whether steps of ua may be toggled. Only started
// records that are in progress or already completed qualify.
func CanToggle(ua *UserActivity) bool {
	if !ua.Started() {
		return false
	}
	return ua.Status == StatusInProgress || ua.Status == StatusCompleted
}

func percentComplete(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// applyToggle flips stepNumber in the completed set and derives the new
// status from the resulting set. It reports whether the record moved into
// completed with this toggle.
func applyToggle(ua *UserActivity, stepNumber int, now time.Time) bool {
	p := &ua.Progress

	kept := make([]CompletedStep, 0, len(p.CompletedSteps)+1)
	removed := false
	for _, step := range p.CompletedSteps {
		if step.StepNumber == stepNumber {
			removed = true
			continue
		}
		kept = append(kept, step)
	}
	if !removed {
		kept = append(kept, CompletedStep{StepNumber: stepNumber, CompletedAt: now})
		sort.Slice(kept, func(i, j int) bool { return kept[i].StepNumber < kept[j].StepNumber })
	}
	p.CompletedSteps = kept
	p.CurrentStep = stepNumber

	done := len(kept)
	p.PercentComplete = percentComplete(done, p.TotalSteps)

	previous := ua.Status
	switch {
	case p.TotalSteps > 0 && done == p.TotalSteps:
		ua.Status = StatusCompleted
		completedAt := now
		ua.CompletedAt = &completedAt
		return previous != StatusCompleted
	case done == 0 && p.StartedAt != nil:
		ua.Status = StatusInProgress
		ua.CompletedAt = nil
	case previous == StatusCompleted:
		ua.Status = StatusInProgress
		ua.CompletedAt = nil
	}
	return false
}

// applyStart moves an added record into progress, snapshotting the step count.
// Steps kept from before a skip survive if they still exist, unless they
// would cover every step.
func applyStart(ua *UserActivity, totalSteps int, now time.Time) error {
	if !CanStart(ua.Status) {
		return &TransitionError{Op: "start", From: ua.Status}
	}
	kept := make([]CompletedStep, 0, len(ua.Progress.CompletedSteps))
	for _, step := range ua.Progress.CompletedSteps {
		if step.StepNumber >= 1 && step.StepNumber <= totalSteps {
			kept = append(kept, step)
		}
	}

	// In progress never means every step done.
	if totalSteps > 0 && len(kept) == totalSteps {
		kept = kept[:0]
	}

	startedAt := now
	ua.Status = StatusInProgress
	ua.Progress.CompletedSteps = kept
	ua.Progress.StartedAt = &startedAt
	ua.Progress.TotalSteps = totalSteps
	ua.Progress.CurrentStep = 0
	ua.Progress.PercentComplete = percentComplete(len(kept), totalSteps)
	return nil
}

// applyReset returns a completed record to added with its progress cleared.
func applyReset(ua *UserActivity, now time.Time) {
	ua.Status = StatusAdded
	ua.Progress = Progress{CompletedSteps: []CompletedStep{}}
	ua.CompletedAt = nil
	ua.CreatedAt = now
}
