package doses

// Dose records that a specific scheduled slot on a specific date was taken.
// Absence of a record is the untaken state; records are never created to say
// "not taken".
type Dose struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	MedicationID  string `json:"medicationId"`
	ScheduledTime string `json:"scheduledTime"` // HH:MM
	Date          string `json:"date"`          // YYYY-MM-DD

	TakenAt int64 `json:"takenAt,omitempty"` // epoch ms, 0 = not recorded
}

func (d Dose) Taken() bool {
	return d.TakenAt > 0
}

// IsSlotTaken reports whether doses contains a taken record for the
// (medicationID, scheduledTime, date) slot.
func IsSlotTaken(doses []Dose, medicationID, scheduledTime, date string) bool {
	for _, d := range doses {
		if d.MedicationID == medicationID &&
			d.ScheduledTime == scheduledTime &&
			d.Date == date &&
			d.Taken() {
			return true
		}
	}
	return false
}
