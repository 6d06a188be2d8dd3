package domain

import (
	"math"
	"time"
)

// Reward engine tuning. Changing these changes every XP number the
// API hands out, so they live in one place.
const (
	distractionPenaltyStep = 5  // score points lost per distraction
	maxDistractionPenalty  = 30 // penalty saturates here
	xpPerMinute            = 2
	focusBonusFactor       = 0.5 // share of base XP awarded at a perfect score
	streakBonusStep        = 5   // XP per day of streak
	maxStreakBonus         = 50
	streakWindowHours      = 48 // gap beyond this resets the streak
)

// Rewards summarizes what a completed session earned.
type Rewards struct {
	FlowXPEarned  int `json:"flow_xp_earned"`
	StreakBonus   int `json:"streak_bonus"`
	TotalXPEarned int `json:"total_xp_earned"`
	FocusScore    int `json:"focus_score"`
	CurrentStreak int `json:"current_streak"`
}

// ActualDuration converts elapsed wall time to whole minutes,
// rounding half up. Sub-30-second sessions count as zero.
func ActualDuration(start, end time.Time) int {
	return int(math.Round(float64(end.Sub(start).Milliseconds()) / 60000))
}

// FocusScore rates a session 0-100 from how much of the planned time
// was actually spent minus a distraction penalty. Running long never
// scores above 100; the penalty caps so a noisy session can still
// score well if it ran to plan.
func FocusScore(actualDuration, plannedDuration, distractions int) int {
	ratio := math.Min(float64(actualDuration)/float64(plannedDuration), 1)
	score := ratio * 100

	penalty := math.Min(float64(distractions*distractionPenaltyStep), maxDistractionPenalty)
	return int(math.Round(math.Max(score-penalty, 0)))
}

// FlowXP is the XP for the session itself: a base amount per minute
// plus a bonus scaled by the focus score.
func FlowXP(actualDuration, focusScore int) int {
	baseXP := actualDuration * xpPerMinute
	focusBonus := int(math.Round(float64(focusScore) / 100 * float64(baseXP) * focusBonusFactor))
	return baseXP + focusBonus
}

// EvaluateStreak extends the streak when the previous session finished
// within the window, otherwise restarts at 1. A restart earns no bonus;
// an extended streak earns a capped per-day bonus. A nil last date
// (first session ever) is a restart.
func EvaluateStreak(currentStreak int, lastSessionAt *time.Time, now time.Time) (newStreak, bonus int) {
	if lastSessionAt == nil {
		return 1, 0
	}
	hoursSince := now.Sub(*lastSessionAt).Hours()
	if hoursSince > streakWindowHours {
		return 1, 0
	}
	newStreak = currentStreak + 1
	bonus = min(newStreak*streakBonusStep, maxStreakBonus)
	return newStreak, bonus
}

// ComputeRewards runs the whole engine for a session ending now.
func ComputeRewards(s *FocusSession, user *User, now time.Time) Rewards {
	actual := ActualDuration(s.StartTime, now)
	score := FocusScore(actual, s.PlannedDuration, s.DistractionCount)
	flowXP := FlowXP(actual, score)
	streak, bonus := EvaluateStreak(user.FocusStreak, user.LastFocusSessionAt, now)

	return Rewards{
		FlowXPEarned:  flowXP,
		StreakBonus:   bonus,
		TotalXPEarned: flowXP + bonus,
		FocusScore:    score,
		CurrentStreak: streak,
	}
}
