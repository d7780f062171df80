package progress

import (
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
)

// Badge names.
const (
	BadgeFirstStep    = "First Step"
	BadgeWeekWarrior  = "Week Warrior"
	BadgeStreakMaster = "Streak Master"
	BadgeExplorer     = "Explorer"
	BadgeDedication   = "Dedication"
)

// StreakResult describes how a completion changed the streak.
type StreakResult string

const (
	// StreakExtended means today followed yesterday, or this is the first streak day.
	StreakExtended StreakResult = "extended"
	// StreakRestarted means a gap broke the streak and it starts again at 1.
	StreakRestarted StreakResult = "restarted"
	// StreakUnchanged means today was already counted.
	StreakUnchanged StreakResult = "unchanged"
	// StreakNoop means there were no completions today.
	StreakNoop StreakResult = "noop"
)

// ApplyCompletion recalculates the streak and badges after a completion.
// Calendar days are taken in now's location. Badges are only ever added.
func ApplyCompletion(streak account.Streak, badges []string, completedToday, totalCompleted int, now time.Time) (account.Streak, []string, StreakResult) {
	earned := make([]string, 0, len(badges)+1)
	earned = append(earned, badges...)

	if completedToday < 1 {
		return streak, earned, StreakNoop
	}

	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	var result StreakResult
	switch {
	case streak.LastActivityDate == nil || sameDay(streak.LastActivityDate.In(now.Location()), yesterday):
		streak.Current++
		streak.Longest = max(streak.Longest, streak.Current)
		streak.LastActivityDate = &today
		result = StreakExtended
	case !sameDay(streak.LastActivityDate.In(now.Location()), today):
		streak.Current = 1
		streak.Longest = max(streak.Longest, streak.Current)
		streak.LastActivityDate = &today
		result = StreakRestarted
	default:
		result = StreakUnchanged
	}

	return streak, awardBadges(earned, streak.Current, totalCompleted), result
}

func awardBadges(badges []string, current, totalCompleted int) []string {
	award := func(name string) {
		for _, have := range badges {
			if have == name {
				return
			}
		}
		badges = append(badges, name)
	}

	if current == 1 {
		award(BadgeFirstStep)
	}
	if current >= 7 {
		award(BadgeWeekWarrior)
	}
	if current >= 30 {
		award(BadgeStreakMaster)
	}
	if totalCompleted >= 10 {
		award(BadgeExplorer)
	}
	if totalCompleted >= 50 {
		award(BadgeDedication)
	}
	return badges
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
