package dashboard

import (
	"testing"
	"time"

	"github.com/alaraguvercin/kolay-hatirla/internal/domain/doses"
	"github.com/alaraguvercin/kolay-hatirla/internal/domain/medications"
)

func med(id string, times []string, start, end string, active bool) medications.Medication {
	return medications.Medication{
		ID:              id,
		UserID:          "user-1",
		Name:            "Parol",
		Dosage:          "500mg",
		FrequencyPerDay: len(times),
		Times:           times,
		StartDate:       start,
		EndDate:         end,
		IsActive:        active,
	}
}

func TestDueMedicationsOn_ExcludesInactive(t *testing.T) {
	meds := []medications.Medication{
		med("m1", []string{"08:00"}, "2024-01-01", "", true),
		med("m2", []string{"08:00"}, "2024-01-01", "", false),
	}

	due := DueMedicationsOn(meds, "2024-06-15")
	if len(due) != 1 || due[0].ID != "m1" {
		t.Fatalf("expected only m1 due, got %#v", due)
	}

	// Inactive stays excluded even with a wide-open range.
	due = DueMedicationsOn(meds[1:], "2024-06-15")
	if len(due) != 0 {
		t.Fatalf("expected no due medications, got %#v", due)
	}
}

func TestDueMedicationsOn_DateRangeInclusive(t *testing.T) {
	m := med("m1", []string{"08:00"}, "2024-06-10", "2024-06-20", true)

	cases := []struct {
		date string
		want bool
	}{
		{"2024-06-09", false},
		{"2024-06-10", true},
		{"2024-06-15", true},
		{"2024-06-20", true},
		{"2024-06-21", false},
	}

	for _, c := range cases {
		due := DueMedicationsOn([]medications.Medication{m}, c.date)
		got := len(due) == 1
		if got != c.want {
			t.Fatalf("date %s: expected due=%v, got %v", c.date, c.want, got)
		}
	}
}

func TestDueMedicationsOn_MissingEndDateUnbounded(t *testing.T) {
	m := med("m1", []string{"08:00"}, "2024-01-01", "", true)

	due := DueMedicationsOn([]medications.Medication{m}, "2099-12-31")
	if len(due) != 1 {
		t.Fatalf("expected medication due with open-ended range")
	}
}

func TestUpcomingSlots_WindowBounds(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	today := "2024-06-15"

	meds := []medications.Medication{
		med("m1", []string{"07:59", "08:00", "11:00", "11:01"}, "2024-01-01", "", true),
	}

	got := UpcomingSlots(meds, nil, today, now, DefaultHorizon)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots in window, got %d: %#v", len(got), got)
	}
	if got[0].Time != "08:00" || got[1].Time != "11:00" {
		t.Fatalf("expected [08:00 11:00], got [%s %s]", got[0].Time, got[1].Time)
	}
}

func TestUpcomingSlots_NoMidnightWraparound(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)
	today := "2024-06-15"

	// 01:00 would fall inside now+3h on the next day; it must not appear.
	meds := []medications.Medication{
		med("m1", []string{"01:00", "23:30"}, "2024-01-01", "", true),
	}

	got := UpcomingSlots(meds, nil, today, now, DefaultHorizon)
	if len(got) != 1 || got[0].Time != "23:30" {
		t.Fatalf("expected only 23:30, got %#v", got)
	}
}

func TestUpcomingSlots_SortedWithMedicationTieBreak(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	today := "2024-06-15"

	meds := []medications.Medication{
		med("m2", []string{"09:00"}, "2024-01-01", "", true),
		med("m1", []string{"09:00", "08:30"}, "2024-01-01", "", true),
	}

	got := UpcomingSlots(meds, nil, today, now, DefaultHorizon)
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
	if got[0].Time != "08:30" {
		t.Fatalf("expected 08:30 first, got %s", got[0].Time)
	}
	if got[1].Medication.ID != "m1" || got[2].Medication.ID != "m2" {
		t.Fatalf("expected id tie-break m1 before m2, got %s then %s",
			got[1].Medication.ID, got[2].Medication.ID)
	}
}

func TestUpcomingSlots_MarksTakenSlots(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	today := "2024-06-15"

	meds := []medications.Medication{
		med("m1", []string{"08:00", "09:00"}, "2024-01-01", "", true),
	}
	records := []doses.Dose{
		{ID: "d1", UserID: "user-1", MedicationID: "m1", ScheduledTime: "08:00", Date: today, TakenAt: now.UnixMilli()},
	}

	got := UpcomingSlots(meds, records, today, now, DefaultHorizon)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got))
	}
	if !got[0].IsTaken {
		t.Fatalf("expected 08:00 slot to be taken")
	}
	if got[1].IsTaken {
		t.Fatalf("expected 09:00 slot to be pending")
	}
}

func TestBuildSummary_ExampleScenario(t *testing.T) {
	today := "2024-06-15"

	meds := []medications.Medication{
		med("m1", []string{"08:00", "20:00"}, "2024-01-01", "2024-12-31", true),
	}
	records := []doses.Dose{
		{ID: "d1", UserID: "user-1", MedicationID: "m1", ScheduledTime: "08:00", Date: today, TakenAt: 1718438400000},
	}

	s := BuildSummary(meds, records, today)
	if s.ActiveMedications != 1 {
		t.Fatalf("expected 1 active medication, got %d", s.ActiveMedications)
	}
	if s.ScheduledToday != 2 {
		t.Fatalf("expected 2 scheduled doses, got %d", s.ScheduledToday)
	}
	if s.TakenToday != 1 {
		t.Fatalf("expected 1 taken dose, got %d", s.TakenToday)
	}
	if s.RemainingToday != 1 {
		t.Fatalf("expected 1 remaining dose, got %d", s.RemainingToday)
	}
}

func TestBuildSummary_OutOfRangeActiveMedicationStillCounted(t *testing.T) {
	// The active-medications widget counts all active plans; the scheduled
	// count only those in range today.
	today := "2024-06-15"

	meds := []medications.Medication{
		med("m1", []string{"08:00"}, "2024-07-01", "", true),
	}

	s := BuildSummary(meds, nil, today)
	if s.ActiveMedications != 1 {
		t.Fatalf("expected active count 1, got %d", s.ActiveMedications)
	}
	if s.ScheduledToday != 0 {
		t.Fatalf("expected 0 scheduled, got %d", s.ScheduledToday)
	}
}
