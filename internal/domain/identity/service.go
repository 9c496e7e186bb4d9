package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medvault/medvault/internal/platform/auth"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
// wrong password, without distinguishing the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

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
	users         UserRepository
	addresses     AddressRepository
	medicalAid    MedicalAidRepository
	practitioners PractitionerRepository
}

func NewService(users UserRepository, addresses AddressRepository,
	medicalAid MedicalAidRepository, practitioners PractitionerRepository) *Service {
	return &Service{
		users:         users,
		addresses:     addresses,
		medicalAid:    medicalAid,
		practitioners: practitioners,
	}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true, "unknown": true,
}

// -- Users --

// CreateUser validates the profile, hashes the clear-text password and stores
// the user. The clear-text password never leaves this function.
func (s *Service) CreateUser(ctx context.Context, u *User, password string) error {
	if u.Name == "" || u.Surname == "" {
		return invalidf("name and surname are required")
	}
	if u.Email == "" {
		return invalidf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return invalidf("invalid email: %s", u.Email)
	}
	if password == "" {
		return invalidf("password is required")
	}
	if u.Gender != nil && !validGenders[*u.Gender] {
		return invalidf("invalid gender: %s", *u.Gender)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) ListUsersWithAddresses(ctx context.Context) ([]*UserWithAddress, error) {
	return s.users.ListWithAddresses(ctx)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.Name == "" || u.Surname == "" {
		return invalidf("name and surname are required")
	}
	if u.Gender != nil && !validGenders[*u.Gender] {
		return invalidf("invalid gender: %s", *u.Gender)
	}
	return s.users.Update(ctx, u)
}

func (s *Service) UpdateUserName(ctx context.Context, id int64, name, surname string) error {
	if name == "" || surname == "" {
		return invalidf("name and surname are required")
	}
	return s.users.UpdateName(ctx, id, name, surname)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// -- Address --

func (s *Service) GetAddress(ctx context.Context, userID int64) (*Address, error) {
	return s.addresses.GetByUser(ctx, userID)
}

func (s *Service) UpdateAddress(ctx context.Context, a *Address) error {
	if a.UserID == 0 {
		return invalidf("userid is required")
	}
	if _, err := s.users.GetByID(ctx, a.UserID); err != nil {
		return err
	}
	return s.addresses.Upsert(ctx, a)
}

// -- Medical aid --

func (s *Service) GetMedicalAid(ctx context.Context, userID int64) (*MedicalAid, error) {
	return s.medicalAid.GetByUser(ctx, userID)
}

func (s *Service) UpdateMedicalAid(ctx context.Context, m *MedicalAid) error {
	if m.UserID == 0 {
		return invalidf("userid is required")
	}
	if m.MembershipNumber == "" {
		return invalidf("membershipnumber is required")
	}
	if _, err := s.users.GetByID(ctx, m.UserID); err != nil {
		return err
	}
	return s.medicalAid.Upsert(ctx, m)
}

// -- Practitioners --

func (s *Service) CreatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.UserID == 0 {
		return invalidf("userid is required")
	}
	if p.Occupation == "" {
		return invalidf("occupation is required")
	}
	// A practitioner must exist as a user; their identity lives there.
	if _, err := s.users.GetByID(ctx, p.UserID); err != nil {
		return err
	}
	return s.practitioners.Create(ctx, p)
}

func (s *Service) GetPractitioner(ctx context.Context, id int64) (*Practitioner, error) {
	return s.practitioners.GetByID(ctx, id)
}

func (s *Service) ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	return s.practitioners.List(ctx, limit, offset)
}

func (s *Service) UpdatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.Occupation == "" {
		return invalidf("occupation is required")
	}
	return s.practitioners.Update(ctx, p)
}

func (s *Service) DeletePractitioner(ctx context.Context, id int64) error {
	return s.practitioners.Delete(ctx, id)
}

// -- Login --

// Authenticate compares the password against the stored bcrypt hash and, on
// success, returns the user together with their role: "practitioner" when a
// practitioners row exists for the user, "patient" otherwise.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	role := "patient"
	if _, err := s.practitioners.GetByUser(ctx, u.UserID); err == nil {
		role = "practitioner"
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}
	return u, role, nil
}
