package model

// DailyLimit is the shared number of lookups all operators may spend per day.
const DailyLimit = 100

// SystemStatus is the shared lock flag and daily usage counter as reported by
// the status store. The store owns it; sessions only hold cached copies.
type SystemStatus struct {
	Locked    bool   `json:"locked"`
	LockedBy  string `json:"lockedBy,omitempty"`
	DailyUsed int    `json:"dailyUsed"`
}

// Normalize clamps DailyUsed into [0, DailyLimit] and clears LockedBy when the
// lock is not held.
func (s SystemStatus) Normalize() SystemStatus {
	s.DailyUsed = ClampUsage(s.DailyUsed)
	if !s.Locked {
		s.LockedBy = ""
	}
	return s
}

// Remaining returns how many lookups are left for today.
func (s SystemStatus) Remaining() int {
	return DailyLimit - ClampUsage(s.DailyUsed)
}

// ClampUsage bounds a raw usage counter to [0, DailyLimit].
func ClampUsage(n int) int {
	switch {
	case n < 0:
		return 0
	case n > DailyLimit:
		return DailyLimit
	}
	return n
}
