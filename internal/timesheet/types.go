package timesheet

import (
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/apperr"
)

// Entry is one day's worth of logged hours against a project.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Date      time.Time `json:"date"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// snapshot captures the fields worth keeping in the audit trail.
func (e Entry) snapshot() map[string]any {
	return map[string]any{
		"project_id": e.ProjectID.String(),
		"date":       e.Date.Format(time.DateOnly),
		"hours":      e.Hours,
		"note":       e.Note,
	}
}

// maxHoursPerEntry caps a single entry at one full day.
const maxHoursPerEntry = 24

// parseDate accepts dates in 2006-01-02 form and normalizes to UTC midnight.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation("date must use the YYYY-MM-DD format").
			AddField("date", "invalid date")
	}
	return d.UTC(), nil
}

// validate enforces the entry rules: positive hours up to a day, no future
// dates.
func validate(date time.Time, hours float64) error {
	if hours <= 0 || hours > maxHoursPerEntry {
		return apperr.Validation("hours must be greater than 0 and at most 24").
			AddField("hours", "must be in (0, 24]")
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return apperr.Validation("cannot log hours for a future date").
			AddField("date", "must not be in the future")
	}
	return nil
}

func errEntryNotFound() *apperr.Error {
	return apperr.New("ERR-VAL-002", "timesheet entry not found")
}
