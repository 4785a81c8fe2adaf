package models

// Subscription is the user's plan as reported inside token info.
type Subscription struct {
	Tier      string  `json:"tier"`
	Active    bool    `json:"active"`
	ExpiresAt *string `json:"expires_at"`
}

// TokenInfo is the gamification snapshot. "Tokens" here are spendable
// in-app credits, unrelated to the bearer credential.
type TokenInfo struct {
	CurrentTokens          int          `json:"current_tokens"`
	MonthlyTokensRemaining int          `json:"monthly_tokens_remaining"`
	DaysUntilReset         int          `json:"days_until_reset"`
	NextMonthlyReset       string       `json:"next_monthly_reset,omitempty"`
	StreakDays             int          `json:"streak_days"`
	XP                     int          `json:"xp"`
	XPToNextLevel          int          `json:"xp_to_next_level,omitempty"`
	Level                  int          `json:"level"`
	Subscription           Subscription `json:"subscription"`
}

// EffectiveLevel treats a missing or zero level as level 1.
func (t TokenInfo) EffectiveLevel() int {
	if t.Level < 1 {
		return 1
	}
	return t.Level
}

// Stats is the server-side dashboard aggregate. Nil fields were not reported.
type Stats struct {
	Notes      *int     `json:"notes,omitempty"`
	Flashcards *int     `json:"flashcards,omitempty"`
	Uploads    *int     `json:"uploads,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
}

// Quota is the upload allowance of the free tier.
type Quota struct {
	Allowed          bool `json:"allowed"`
	DailyUsed        int  `json:"daily_used"`
	DailyLimit       int  `json:"daily_limit"`
	DailyRemaining   int  `json:"daily_remaining"`
	MonthlyUsed      int  `json:"monthly_used"`
	MonthlyLimit     int  `json:"monthly_limit"`
	MonthlyRemaining int  `json:"monthly_remaining"`
}
