package clinical

import (
	"context"
	"fmt"
)

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
	vitals     VitalsRepository
	medication MedicationRepository
	conditions ConditionRepository
}

func NewService(vitals VitalsRepository, medication MedicationRepository,
	conditions ConditionRepository) *Service {
	return &Service{vitals: vitals, medication: medication, conditions: conditions}
}

// -- Vitals --

func (s *Service) RecordVitals(ctx context.Context, v *Vitals) error {
	if v.UserID == 0 {
		return invalidf("userid is required")
	}
	if v.PractitionerID == 0 {
		return invalidf("practitionerid is required")
	}
	if v.VitalsDate.IsZero() {
		return invalidf("vitalsdate is required")
	}
	if v.Systolic <= 0 || v.Diastolic <= 0 {
		return invalidf("systolic and diastolic must be positive")
	}
	if v.Diastolic >= v.Systolic {
		return invalidf("diastolic must be below systolic")
	}
	return s.vitals.Create(ctx, v)
}

func (s *Service) GetVitals(ctx context.Context, id int64) (*Vitals, error) {
	return s.vitals.GetByID(ctx, id)
}

func (s *Service) ListVitalsByPatient(ctx context.Context, userID int64) ([]*Vitals, error) {
	return s.vitals.ListByPatient(ctx, userID)
}

func (s *Service) DeleteVitals(ctx context.Context, id int64) error {
	return s.vitals.Delete(ctx, id)
}

// -- Medication --

func (s *Service) PrescribeMedication(ctx context.Context, m *Medication) error {
	if m.UserID == 0 {
		return invalidf("userid is required")
	}
	if m.MedicationName == "" {
		return invalidf("medicationname is required")
	}
	if m.Dosage == "" {
		return invalidf("dosage is required")
	}
	return s.medication.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id int64) (*Medication, error) {
	return s.medication.GetByID(ctx, id)
}

func (s *Service) ListMedicationByPatient(ctx context.Context, userID int64) ([]*Medication, error) {
	return s.medication.ListByPatient(ctx, userID)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.MedicationName == "" {
		return invalidf("medicationname is required")
	}
	return s.medication.Update(ctx, m)
}

func (s *Service) DeleteMedication(ctx context.Context, id int64) error {
	return s.medication.Delete(ctx, id)
}

// -- Conditions --

func (s *Service) DiagnoseCondition(ctx context.Context, c *Condition) error {
	if c.UserID == 0 {
		return invalidf("userid is required")
	}
	if c.ConditionName == "" {
		return invalidf("conditionname is required")
	}
	if c.DiagnosisDate.IsZero() {
		return invalidf("diagnosisdate is required")
	}
	return s.conditions.Create(ctx, c)
}

func (s *Service) GetCondition(ctx context.Context, id int64) (*Condition, error) {
	return s.conditions.GetByID(ctx, id)
}

func (s *Service) ListConditionsByPatient(ctx context.Context, userID int64) ([]*Condition, error) {
	return s.conditions.ListByPatient(ctx, userID)
}

func (s *Service) DeleteCondition(ctx context.Context, id int64) error {
	return s.conditions.Delete(ctx, id)
}
