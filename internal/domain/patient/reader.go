package patient

import (
	"context"
	"errors"

	"github.com/medvault/medvault/internal/domain/clinical"
	"github.com/medvault/medvault/internal/domain/identity"
	"github.com/medvault/medvault/internal/domain/scheduling"
)

// ErrNotFound is returned when a selector resolves no patient.
var ErrNotFound = errors.New("patient not found")

// Snapshot is a consistent read view over the source relations. Every lookup
// made through one Snapshot observes the same database state, so an
// aggregation cannot see an appointment count change mid-flight.
//
// Single-row lookups return ErrNotFound when no row matches.
type Snapshot interface {
	AllUsers(ctx context.Context) ([]*identity.User, error)
	UserByID(ctx context.Context, id int64) (*identity.User, error)
	UserByEmail(ctx context.Context, email string) (*identity.User, error)
	PractitionerByID(ctx context.Context, id int64) (*identity.Practitioner, error)
	AppointmentsByPatient(ctx context.Context, userID int64) ([]*scheduling.Appointment, error)
	VitalsByPatient(ctx context.Context, userID int64) ([]*clinical.Vitals, error)
	MedicationByPatient(ctx context.Context, userID int64) ([]*clinical.Medication, error)
	ConditionsByPatient(ctx context.Context, userID int64) ([]*clinical.Condition, error)
	Close(ctx context.Context) error
}

// Reader opens Snapshots. Each aggregation opens its own.
type Reader interface {
	Begin(ctx context.Context) (Snapshot, error)
}
