package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvault/medvault/internal/domain/clinical"
	"github.com/medvault/medvault/internal/domain/identity"
	"github.com/medvault/medvault/internal/domain/scheduling"
)

type pgReader struct{ pool *pgxpool.Pool }

func NewPGReader(pool *pgxpool.Pool) Reader {
	return &pgReader{pool: pool}
}

// Begin opens a repeatable-read read-only transaction. Postgres serves every
// query in it from the same MVCC snapshot, which is exactly the consistency
// the aggregation needs.
func (r *pgReader) Begin(ctx context.Context) (Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	return &pgSnapshot{tx: tx}, nil
}

type pgSnapshot struct{ tx pgx.Tx }

func (s *pgSnapshot) Close(ctx context.Context) error {
	return s.tx.Rollback(ctx)
}

const snapUserCols = `userid, name, surname, contactinfo, email, password_hash,
	id_passportnumber, gender, dob, nationality, dateofrecording`

func (s *pgSnapshot) scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(&u.UserID, &u.Name, &u.Surname, &u.ContactInfo, &u.Email, &u.PasswordHash,
		&u.IDPassportNumber, &u.Gender, &u.DOB, &u.Nationality, &u.DateOfRecording)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (s *pgSnapshot) AllUsers(ctx context.Context) ([]*identity.User, error) {
	rows, err := s.tx.Query(ctx, `SELECT `+snapUserCols+` FROM users ORDER BY userid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*identity.User
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *pgSnapshot) UserByID(ctx context.Context, id int64) (*identity.User, error) {
	return s.scanUser(s.tx.QueryRow(ctx, `SELECT `+snapUserCols+` FROM users WHERE userid = $1`, id))
}

func (s *pgSnapshot) UserByEmail(ctx context.Context, email string) (*identity.User, error) {
	return s.scanUser(s.tx.QueryRow(ctx, `SELECT `+snapUserCols+` FROM users
		WHERE LOWER(email) = LOWER($1) ORDER BY userid LIMIT 1`, email))
}

func (s *pgSnapshot) PractitionerByID(ctx context.Context, id int64) (*identity.Practitioner, error) {
	var p identity.Practitioner
	err := s.tx.QueryRow(ctx, `
		SELECT practitionerid, userid, occupation, practicenumber, statutorycouncil, title
		FROM practitioners WHERE practitionerid = $1`, id).
		Scan(&p.PractitionerID, &p.UserID, &p.Occupation, &p.PracticeNumber, &p.StatutoryCouncil, &p.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (s *pgSnapshot) AppointmentsByPatient(ctx context.Context, userID int64) ([]*scheduling.Appointment, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT app_id, userid, practitionerid, status, notes, date
		FROM appointments WHERE userid = $1 ORDER BY app_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*scheduling.Appointment
	for rows.Next() {
		var a scheduling.Appointment
		if err := rows.Scan(&a.AppID, &a.UserID, &a.PractitionerID, &a.Status, &a.Notes, &a.Date); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (s *pgSnapshot) VitalsByPatient(ctx context.Context, userID int64) ([]*clinical.Vitals, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT vitalid, userid, systolic, diastolic, heartrate, temperature, vitalsdate, practitionerid
		FROM vitals WHERE userid = $1 ORDER BY vitalid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*clinical.Vitals
	for rows.Next() {
		var v clinical.Vitals
		if err := rows.Scan(&v.VitalID, &v.UserID, &v.Systolic, &v.Diastolic, &v.HeartRate,
			&v.Temperature, &v.VitalsDate, &v.PractitionerID); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (s *pgSnapshot) MedicationByPatient(ctx context.Context, userID int64) ([]*clinical.Medication, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT medicationid, userid, medicationname, dosage, frequency
		FROM medication WHERE userid = $1 ORDER BY medicationid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*clinical.Medication
	for rows.Next() {
		var m clinical.Medication
		if err := rows.Scan(&m.MedicationID, &m.UserID, &m.MedicationName, &m.Dosage, &m.Frequency); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (s *pgSnapshot) ConditionsByPatient(ctx context.Context, userID int64) ([]*clinical.Condition, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT conditionid, userid, conditionname, diagnosisdate
		FROM conditions WHERE userid = $1 ORDER BY conditionid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*clinical.Condition
	for rows.Next() {
		var c clinical.Condition
		if err := rows.Scan(&c.ConditionID, &c.UserID, &c.ConditionName, &c.DiagnosisDate); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
