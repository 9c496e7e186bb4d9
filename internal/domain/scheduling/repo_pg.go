package scheduling

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const appointmentCols = `app_id, userid, practitionerid, status, notes, date`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.AppID, &a.UserID, &a.PractitionerID, &a.Status, &a.Notes, &a.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointments (userid, practitionerid, status, notes, date)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING app_id`,
		a.UserID, a.PractitionerID, a.Status, a.Notes, a.Date).Scan(&a.AppID)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE app_id = $1`, id))
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, userID int64) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentCols+` FROM appointments
		WHERE userid = $1 ORDER BY date DESC, app_id`, userID)
}

func (r *appointmentRepoPG) ListByPractitioner(ctx context.Context, practitionerID int64) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentCols+` FROM appointments
		WHERE practitionerid = $1 ORDER BY date DESC, app_id`, practitionerID)
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, arg any) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET practitionerid = $2, status = $3, notes = $4, date = $5
		WHERE app_id = $1`,
		a.AppID, a.PractitionerID, a.Status, a.Notes, a.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE appointments SET status = $2 WHERE app_id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE app_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
