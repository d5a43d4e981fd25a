package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
)

// DefaultHorizon is the look-ahead window for the upcoming-doses list.
const DefaultHorizon = 3 * time.Hour

// UpcomingDose is one due slot inside the look-ahead window.
type UpcomingDose struct {
	Medication  medications.Medication `json:"medication"`
	Time        string                 `json:"time"`
	ScheduledAt time.Time              `json:"scheduledAt"`
	IsTaken     bool                   `json:"isTaken"`
}

// Summary holds the dashboard widget counts.
type Summary struct {
	ActiveMedications int `json:"activeMedications"`
	ScheduledToday    int `json:"scheduledToday"`
	TakenToday        int `json:"takenToday"`
	RemainingToday    int `json:"remainingToday"`
}

// DueMedicationsOn filters to medications that are active and whose
// [startDate, endDate-or-unbounded] range contains date.
func DueMedicationsOn(meds []medications.Medication, date string) []medications.Medication {
	out := make([]medications.Medication, 0, len(meds))
	for _, m := range meds {
		if m.IsActive && m.InRangeOn(date) {
			out = append(out, m)
		}
	}
	return out
}

// DueSlotCount is the "scheduled doses today" metric: one slot per times
// entry of every due medication.
func DueSlotCount(meds []medications.Medication, date string) int {
	sum := 0
	for _, m := range DueMedicationsOn(meds, date) {
		sum += len(m.Times)
	}
	return sum
}

// UpcomingSlots returns the due slots whose scheduled moment falls in
// [now, now+horizon], both ends inclusive, sorted ascending by scheduled
// time with medication id as the tie-break. Slots are built from today's
// date only: the window never wraps into tomorrow, even when now+horizon
// crosses midnight. The result is recomputed from scratch on every call.
func UpcomingSlots(meds []medications.Medication, todayDoses []doses.Dose, today string, now time.Time, horizon time.Duration) []UpcomingDose {
	day, err := time.ParseInLocation("2006-01-02", today, now.Location())
	if err != nil {
		return nil
	}
	limit := now.Add(horizon)

	out := make([]UpcomingDose, 0)
	for _, m := range DueMedicationsOn(meds, today) {
		for _, t := range m.Times {
			hour, minute, ok := parseClock(t)
			if !ok {
				continue
			}

			at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
			if at.Before(now) || at.After(limit) {
				continue
			}

			out = append(out, UpcomingDose{
				Medication:  m,
				Time:        t,
				ScheduledAt: at,
				IsTaken:     doses.IsSlotTaken(todayDoses, m.ID, t, today),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].Medication.ID < out[j].Medication.ID
	})

	return out
}

// BuildSummary computes the widget counts over the full in-memory lists.
// Remaining can go negative when records outlive a schedule edit; the store
// is not consulted for any aggregation.
func BuildSummary(meds []medications.Medication, todayDoses []doses.Dose, today string) Summary {
	active := 0
	for _, m := range meds {
		if m.IsActive {
			active++
		}
	}

	taken := 0
	for _, d := range todayDoses {
		if d.Taken() {
			taken++
		}
	}

	scheduled := DueSlotCount(meds, today)

	return Summary{
		ActiveMedications: active,
		ScheduledToday:    scheduled,
		TakenToday:        taken,
		RemainingToday:    scheduled - taken,
	}
}

func parseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
