package domain

// UsageCounter tracks how many times a user performed each AI action on
// one UTC calendar day. One counter document exists per (user, day);
// counts only ever increase, and a new day simply uses a new key.
type UsageCounter struct {
	UserID  UserID
	DateKey string // UTC calendar day, "2006-01-02"
	Counts  map[ActionType]int
}

// UsageKey is the composite document key for a day's counter.
func UsageKey(userID UserID, dateKey string) string {
	return string(userID) + "_" + dateKey
}

// ZeroCounts returns a counts map with every known action seeded to zero.
func ZeroCounts() map[ActionType]int {
	counts := make(map[ActionType]int, len(ActionTypes()))
	for _, t := range ActionTypes() {
		counts[t] = 0
	}
	return counts
}
