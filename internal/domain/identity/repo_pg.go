package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `userid, name, surname, contactinfo, email, password_hash,
	id_passportnumber, gender, dob, nationality, dateofrecording`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.UserID, &u.Name, &u.Surname, &u.ContactInfo, &u.Email, &u.PasswordHash,
		&u.IDPassportNumber, &u.Gender, &u.DOB, &u.Nationality, &u.DateOfRecording)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (name, surname, contactinfo, email, password_hash,
			id_passportnumber, gender, dob, nationality)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING userid, dateofrecording`,
		u.Name, u.Surname, u.ContactInfo, u.Email, u.PasswordHash,
		u.IDPassportNumber, u.Gender, u.DOB, u.Nationality).
		Scan(&u.UserID, &u.DateOfRecording)
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE userid = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users
		WHERE LOWER(email) = LOWER($1) ORDER BY userid LIMIT 1`, email))
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY userid LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) ListWithAddresses(ctx context.Context) ([]*UserWithAddress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ur.userid, ur.name, ur.surname, ur.contactinfo, ur.email, ur.password_hash,
			ur.id_passportnumber, ur.gender, ur.dob, ur.nationality, ur.dateofrecording,
			ad.addressid, ad.postaladdress, ad.postalcode, ad.physicaladdress, ad.physicalcode
		FROM users ur
		INNER JOIN user_addresses ad ON ur.userid = ad.userid
		ORDER BY ur.userid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*UserWithAddress
	for rows.Next() {
		var u UserWithAddress
		var a Address
		err := rows.Scan(&u.UserID, &u.Name, &u.Surname, &u.ContactInfo, &u.Email, &u.PasswordHash,
			&u.IDPassportNumber, &u.Gender, &u.DOB, &u.Nationality, &u.DateOfRecording,
			&a.AddressID, &a.PostalAddress, &a.PostalCode, &a.PhysicalAddress, &a.PhysicalCode)
		if err != nil {
			return nil, err
		}
		a.UserID = u.UserID
		u.Address = &a
		items = append(items, &u)
	}
	return items, rows.Err()
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET name=$2, surname=$3, contactinfo=$4, email=$5,
			id_passportnumber=$6, gender=$7, dob=$8, nationality=$9
		WHERE userid = $1`,
		u.UserID, u.Name, u.Surname, u.ContactInfo, u.Email,
		u.IDPassportNumber, u.Gender, u.DOB, u.Nationality)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) UpdateName(ctx context.Context, id int64, name, surname string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET name=$2, surname=$3 WHERE userid = $1`, id, name, surname)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE userid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type addressRepoPG struct{ pool *pgxpool.Pool }

func NewAddressRepoPG(pool *pgxpool.Pool) AddressRepository {
	return &addressRepoPG{pool: pool}
}

func (r *addressRepoPG) GetByUser(ctx context.Context, userID int64) (*Address, error) {
	var a Address
	err := r.pool.QueryRow(ctx, `
		SELECT addressid, userid, postaladdress, postalcode, physicaladdress, physicalcode
		FROM user_addresses WHERE userid = $1`, userID).
		Scan(&a.AddressID, &a.UserID, &a.PostalAddress, &a.PostalCode, &a.PhysicalAddress, &a.PhysicalCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *addressRepoPG) Upsert(ctx context.Context, a *Address) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_addresses (userid, postaladdress, postalcode, physicaladdress, physicalcode)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (userid) DO UPDATE SET
			postaladdress = EXCLUDED.postaladdress,
			postalcode = EXCLUDED.postalcode,
			physicaladdress = EXCLUDED.physicaladdress,
			physicalcode = EXCLUDED.physicalcode
		RETURNING addressid`,
		a.UserID, a.PostalAddress, a.PostalCode, a.PhysicalAddress, a.PhysicalCode).
		Scan(&a.AddressID)
}

type medicalAidRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalAidRepoPG(pool *pgxpool.Pool) MedicalAidRepository {
	return &medicalAidRepoPG{pool: pool}
}

func (r *medicalAidRepoPG) GetByUser(ctx context.Context, userID int64) (*MedicalAid, error) {
	var m MedicalAid
	err := r.pool.QueryRow(ctx, `
		SELECT medicalaidid, userid, planname, membershipnumber
		FROM medical_aid WHERE userid = $1`, userID).
		Scan(&m.MedicalAidID, &m.UserID, &m.PlanName, &m.MembershipNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *medicalAidRepoPG) Upsert(ctx context.Context, m *MedicalAid) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_aid (userid, planname, membershipnumber)
		VALUES ($1,$2,$3)
		ON CONFLICT (userid) DO UPDATE SET
			planname = EXCLUDED.planname,
			membershipnumber = EXCLUDED.membershipnumber
		RETURNING medicalaidid`,
		m.UserID, m.PlanName, m.MembershipNumber).
		Scan(&m.MedicalAidID)
}

type practitionerRepoPG struct{ pool *pgxpool.Pool }

func NewPractitionerRepoPG(pool *pgxpool.Pool) PractitionerRepository {
	return &practitionerRepoPG{pool: pool}
}

const practitionerCols = `practitionerid, userid, occupation, practicenumber, statutorycouncil, title`

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.PractitionerID, &p.UserID, &p.Occupation, &p.PracticeNumber, &p.StatutoryCouncil, &p.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *practitionerRepoPG) Create(ctx context.Context, p *Practitioner) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO practitioners (userid, occupation, practicenumber, statutorycouncil, title)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING practitionerid`,
		p.UserID, p.Occupation, p.PracticeNumber, p.StatutoryCouncil, p.Title).
		Scan(&p.PractitionerID)
}

func (r *practitionerRepoPG) GetByID(ctx context.Context, id int64) (*Practitioner, error) {
	return scanPractitioner(r.pool.QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM practitioners WHERE practitionerid = $1`, id))
}

func (r *practitionerRepoPG) GetByUser(ctx context.Context, userID int64) (*Practitioner, error) {
	return scanPractitioner(r.pool.QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM practitioners WHERE userid = $1`, userID))
}

func (r *practitionerRepoPG) List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM practitioners`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+practitionerCols+` FROM practitioners ORDER BY practitionerid LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *practitionerRepoPG) Update(ctx context.Context, p *Practitioner) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE practitioners SET occupation=$2, practicenumber=$3, statutorycouncil=$4, title=$5
		WHERE practitionerid = $1`,
		p.PractitionerID, p.Occupation, p.PracticeNumber, p.StatutoryCouncil, p.Title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *practitionerRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM practitioners WHERE practitionerid = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
