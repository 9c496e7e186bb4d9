package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row. Handlers translate it
// to 404; anything else from a repository is a storage failure.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail matches case-insensitively. When several rows collide under
	// case folding the lowest userid wins, so resolution is deterministic.
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	ListWithAddresses(ctx context.Context) ([]*UserWithAddress, error)
	Update(ctx context.Context, u *User) error
	UpdateName(ctx context.Context, id int64, name, surname string) error
	Delete(ctx context.Context, id int64) error
}

type AddressRepository interface {
	GetByUser(ctx context.Context, userID int64) (*Address, error)
	Upsert(ctx context.Context, a *Address) error
}

type MedicalAidRepository interface {
	GetByUser(ctx context.Context, userID int64) (*MedicalAid, error)
	Upsert(ctx context.Context, m *MedicalAid) error
}

type PractitionerRepository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id int64) (*Practitioner, error)
	GetByUser(ctx context.Context, userID int64) (*Practitioner, error)
	List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error)
	Update(ctx context.Context, p *Practitioner) error
	Delete(ctx context.Context, id int64) error
}
