package scheduling

import "time"

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Appointment maps to the appointments table. UserID is the patient;
// PractitionerID joins against practitioners.practitionerid.
type Appointment struct {
	AppID          int64     `db:"app_id" json:"app_id"`
	UserID         int64     `db:"userid" json:"userid"`
	PractitionerID int64     `db:"practitionerid" json:"practitionerid"`
	Status         string    `db:"status" json:"status"`
	Notes          string    `db:"notes" json:"notes"`
	Date           time.Time `db:"date" json:"date"`
}
