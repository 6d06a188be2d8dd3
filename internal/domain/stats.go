package domain

import (
	"math"
	"slices"
	"strings"
	"time"
)

// StatsOverview aggregates completed sessions over a period, plus the
// lifetime counters from the user aggregate.
type StatsOverview struct {
	TotalSessions       int     `json:"total_sessions"`
	TotalMinutes        int     `json:"total_minutes"`
	TotalHours          float64 `json:"total_hours"`
	TotalFlowXP         int     `json:"total_flow_xp"`
	AverageFocusScore   int     `json:"average_focus_score"`
	TotalDistractions   int     `json:"total_distractions"`
	TotalTasksCompleted int     `json:"total_tasks_completed"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	LifetimeFlowXP      int     `json:"lifetime_flow_xp"`
	LifetimeSessions    int     `json:"lifetime_sessions"`
}

// DailyStat is one day's slice of the period, keyed by the session's
// start date in UTC.
type DailyStat struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Sessions       int    `json:"sessions"`
	Minutes        int    `json:"minutes"`
	FlowXP         int    `json:"flow_xp"`
	TasksCompleted int    `json:"tasks_completed"`
}

// PeriodStats is the full stats response body.
type PeriodStats struct {
	Overview       StatsOverview `json:"overview"`
	DailyBreakdown []DailyStat   `json:"daily_breakdown"`
}

// BuildPeriodStats computes the overview and per-day breakdown from the
// completed sessions in the period. The breakdown is sorted ascending
// by date.
func BuildPeriodStats(sessions []*FocusSession, user *User) PeriodStats {
	var overview StatsOverview
	overview.TotalSessions = len(sessions)
	overview.CurrentStreak = user.FocusStreak
	overview.LongestStreak = user.LongestFocusStreak
	overview.LifetimeFlowXP = user.FlowXP
	overview.LifetimeSessions = user.TotalFocusSessions

	daily := make(map[string]*DailyStat)
	var scoreSum int

	for _, s := range sessions {
		overview.TotalMinutes += s.ActualDuration
		overview.TotalFlowXP += s.FlowXPEarned
		overview.TotalDistractions += s.DistractionCount
		overview.TotalTasksCompleted += len(s.TasksCompleted)
		scoreSum += s.FocusScore

		date := s.StartTime.UTC().Format("2006-01-02")
		day, ok := daily[date]
		if !ok {
			day = &DailyStat{Date: date}
			daily[date] = day
		}
		day.Sessions++
		day.Minutes += s.ActualDuration
		day.FlowXP += s.FlowXPEarned
		day.TasksCompleted += len(s.TasksCompleted)
	}

	overview.TotalHours = math.Round(float64(overview.TotalMinutes)/60*10) / 10
	if len(sessions) > 0 {
		overview.AverageFocusScore = int(math.Round(float64(scoreSum) / float64(len(sessions))))
	}

	breakdown := make([]DailyStat, 0, len(daily))
	for _, day := range daily {
		breakdown = append(breakdown, *day)
	}
	slices.SortFunc(breakdown, func(a, b DailyStat) int {
		return strings.Compare(a.Date, b.Date)
	})

	return PeriodStats{Overview: overview, DailyBreakdown: breakdown}
}

// PeriodStart is the inclusive lower bound for a period of n days
// ending now.
func PeriodStart(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
