package scheduling

import (
	"context"
	"fmt"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// ValidationError marks input the caller can correct. Handlers translate it
// to a 400; any other service error is a storage failure and must not reach
// the response body.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type Service struct {
	appointments AppointmentRepository
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.UserID == 0 {
		return invalidf("userid is required")
	}
	if a.PractitionerID == 0 {
		return invalidf("practitionerid is required")
	}
	if a.Date.IsZero() {
		return invalidf("date is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return invalidf("invalid status: %s", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, userID int64) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, userID)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID int64) ([]*Appointment, error) {
	return s.appointments.ListByPractitioner(ctx, practitionerID)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if !validStatuses[a.Status] {
		return invalidf("invalid status: %s", a.Status)
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !validStatuses[status] {
		return invalidf("invalid status: %s", status)
	}
	return s.appointments.UpdateStatus(ctx, id, status)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.appointments.Delete(ctx, id)
}
