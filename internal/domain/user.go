package domain

import "time"

// User is the per-owner aggregate the reward engine feeds. It only
// carries gamification totals; identity lives upstream.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`

	XP     int `json:"xp"`
	FlowXP int `json:"flow_xp"`

	FocusStreak        int        `json:"focus_streak"`
	LongestFocusStreak int        `json:"longest_focus_streak"`
	TotalFocusSessions int        `json:"total_focus_sessions"`
	LastFocusSessionAt *time.Time `json:"last_focus_session_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a zero-valued aggregate for a previously unseen owner.
func NewUser(id string, now time.Time) *User {
	return &User{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplySessionRewards folds a completed session's rewards into the
// aggregate: both XP pools grow by the total, the streak moves to the
// evaluated value, and the longest streak ratchets up but never down.
func (u *User) ApplySessionRewards(r Rewards, now time.Time) {
	u.XP += r.TotalXPEarned
	u.FlowXP += r.TotalXPEarned
	u.FocusStreak = r.CurrentStreak
	u.TotalFocusSessions++
	u.LastFocusSessionAt = &now
	if r.CurrentStreak > u.LongestFocusStreak {
		u.LongestFocusStreak = r.CurrentStreak
	}
	u.UpdatedAt = now
}
