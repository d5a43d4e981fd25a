package medications

// Medication is a user-owned dosing plan with a repeating daily schedule.
//
// Dates are YYYY-MM-DD strings and times HH:MM strings, matching the store
// documents; date comparisons are lexicographic. Timestamps are epoch
// milliseconds.
type Medication struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name   string `json:"name"`
	Dosage string `json:"dosage"`

	FrequencyPerDay int      `json:"frequencyPerDay"`
	Times           []string `json:"times"`

	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"` // empty = unbounded

	Notes    string `json:"notes,omitempty"`
	IsActive bool   `json:"isActive"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// InRangeOn reports whether date falls inside the medication's active range,
// inclusive on both ends, unbounded above when EndDate is empty.
func (m Medication) InRangeOn(date string) bool {
	if date < m.StartDate {
		return false
	}
	if m.EndDate != "" && date > m.EndDate {
		return false
	}
	return true
}
