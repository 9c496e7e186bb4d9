package scheduling

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// ListByPatient returns the patient's appointments newest first. Rows
	// sharing a date keep their insertion order.
	ListByPatient(ctx context.Context, userID int64) ([]*Appointment, error)
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}
