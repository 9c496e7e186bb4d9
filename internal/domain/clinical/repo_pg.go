package clinical

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// -- Vitals --

type vitalsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalsRepoPG(pool *pgxpool.Pool) VitalsRepository {
	return &vitalsRepoPG{pool: pool}
}

const vitalsCols = `vitalid, userid, systolic, diastolic, heartrate, temperature, vitalsdate, practitionerid`

func scanVitals(row pgx.Row) (*Vitals, error) {
	var v Vitals
	err := row.Scan(&v.VitalID, &v.UserID, &v.Systolic, &v.Diastolic, &v.HeartRate,
		&v.Temperature, &v.VitalsDate, &v.PractitionerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *vitalsRepoPG) Create(ctx context.Context, v *Vitals) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO vitals (userid, systolic, diastolic, heartrate, temperature, vitalsdate, practitionerid)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING vitalid`,
		v.UserID, v.Systolic, v.Diastolic, v.HeartRate, v.Temperature, v.VitalsDate, v.PractitionerID).
		Scan(&v.VitalID)
}

func (r *vitalsRepoPG) GetByID(ctx context.Context, id int64) (*Vitals, error) {
	return scanVitals(r.pool.QueryRow(ctx, `SELECT `+vitalsCols+` FROM vitals WHERE vitalid = $1`, id))
}

func (r *vitalsRepoPG) ListByPatient(ctx context.Context, userID int64) ([]*Vitals, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vitalsCols+` FROM vitals
		WHERE userid = $1 ORDER BY vitalsdate DESC, vitalid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Vitals
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *vitalsRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vitals WHERE vitalid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Medication --

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

const medicationCols = `medicationid, userid, medicationname, dosage, frequency`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.MedicationID, &m.UserID, &m.MedicationName, &m.Dosage, &m.Frequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medication (userid, medicationname, dosage, frequency)
		VALUES ($1,$2,$3,$4)
		RETURNING medicationid`,
		m.UserID, m.MedicationName, m.Dosage, m.Frequency).Scan(&m.MedicationID)
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id int64) (*Medication, error) {
	return scanMedication(r.pool.QueryRow(ctx,
		`SELECT `+medicationCols+` FROM medication WHERE medicationid = $1`, id))
}

func (r *medicationRepoPG) ListByPatient(ctx context.Context, userID int64) ([]*Medication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+medicationCols+` FROM medication
		WHERE userid = $1 ORDER BY medicationid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medication SET medicationname = $2, dosage = $3, frequency = $4
		WHERE medicationid = $1`,
		m.MedicationID, m.MedicationName, m.Dosage, m.Frequency)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicationRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medication WHERE medicationid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Conditions --

type conditionRepoPG struct{ pool *pgxpool.Pool }

func NewConditionRepoPG(pool *pgxpool.Pool) ConditionRepository {
	return &conditionRepoPG{pool: pool}
}

const conditionCols = `conditionid, userid, conditionname, diagnosisdate`

func scanCondition(row pgx.Row) (*Condition, error) {
	var c Condition
	err := row.Scan(&c.ConditionID, &c.UserID, &c.ConditionName, &c.DiagnosisDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *conditionRepoPG) Create(ctx context.Context, c *Condition) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO conditions (userid, conditionname, diagnosisdate)
		VALUES ($1,$2,$3)
		RETURNING conditionid`,
		c.UserID, c.ConditionName, c.DiagnosisDate).Scan(&c.ConditionID)
}

func (r *conditionRepoPG) GetByID(ctx context.Context, id int64) (*Condition, error) {
	return scanCondition(r.pool.QueryRow(ctx,
		`SELECT `+conditionCols+` FROM conditions WHERE conditionid = $1`, id))
}

func (r *conditionRepoPG) ListByPatient(ctx context.Context, userID int64) ([]*Condition, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+conditionCols+` FROM conditions
		WHERE userid = $1 ORDER BY conditionid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Condition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *conditionRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM conditions WHERE conditionid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
