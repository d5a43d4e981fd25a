package medications

import (
	"regexp"
	"strings"
	"time"
)

// timeRe accepts 24-hour HH:MM, 00:00 through 23:59.
var timeRe = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidationError carries the user-facing (Turkish) message for a rejected
// form submission. The operation is never attempted when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const (
	msgNameDosageRequired = "Lütfen ilaç adı ve doz bilgisini girin."
	msgTimeRequired       = "En az bir saat girmelisiniz."
	msgTimeFormat         = "Saat formatı geçersiz. Lütfen HH:mm formatında girin (örn: 08:00)."
	msgStartDateInvalid   = "Başlangıç tarihi geçersiz. Lütfen YYYY-AA-GG formatında girin."
	msgEndDateInvalid     = "Bitiş tarihi geçersiz. Lütfen YYYY-AA-GG formatında girin."
	msgEndBeforeStart     = "Bitiş tarihi başlangıç tarihinden önce olamaz."
)

// validTimes filters out empty entries and trims the rest. Order is kept.
func validTimes(times []string) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// validate checks the full field set of a medication about to be persisted.
// FrequencyPerDay is not an input here: it is always derived as len(times)
// after filtering, overriding whatever the form's numeric field said.
func validate(name, dosage string, times []string, startDate, endDate string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(dosage) == "" {
		return &ValidationError{Message: msgNameDosageRequired}
	}

	if len(times) == 0 {
		return &ValidationError{Message: msgTimeRequired}
	}
	for _, t := range times {
		if !timeRe.MatchString(t) {
			return &ValidationError{Message: msgTimeFormat}
		}
	}

	if !validDate(startDate) {
		return &ValidationError{Message: msgStartDateInvalid}
	}
	if endDate != "" {
		if !validDate(endDate) {
			return &ValidationError{Message: msgEndDateInvalid}
		}
		if endDate < startDate {
			return &ValidationError{Message: msgEndBeforeStart}
		}
	}

	return nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
