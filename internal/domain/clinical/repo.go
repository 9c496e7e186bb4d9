package clinical

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type VitalsRepository interface {
	Create(ctx context.Context, v *Vitals) error
	GetByID(ctx context.Context, id int64) (*Vitals, error)
	// ListByPatient returns readings newest first, insertion order preserved
	// for equal dates.
	ListByPatient(ctx context.Context, userID int64) ([]*Vitals, error)
	Delete(ctx context.Context, id int64) error
}

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id int64) (*Medication, error)
	// ListByPatient returns medication lines by descending medicationid, so
	// the most recently prescribed line comes first.
	ListByPatient(ctx context.Context, userID int64) ([]*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id int64) error
}

type ConditionRepository interface {
	Create(ctx context.Context, c *Condition) error
	GetByID(ctx context.Context, id int64) (*Condition, error)
	ListByPatient(ctx context.Context, userID int64) ([]*Condition, error)
	Delete(ctx context.Context, id int64) error
}
