package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medvault/medvault/internal/platform/auth"
)

// -- Mock Repositories --

type mockUserRepo struct {
	users     map[int64]*User
	nextID    int64
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	u.UserID = m.nextID
	u.DateOfRecording = time.Now()
	m.users[u.UserID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	var best *User
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			if best == nil || u.UserID < best.UserID {
				best = u
			}
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, len(result), nil
}

func (m *mockUserRepo) ListWithAddresses(_ context.Context) ([]*UserWithAddress, error) {
	var result []*UserWithAddress
	for _, u := range m.users {
		result = append(result, &UserWithAddress{User: *u})
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.UserID]; !ok {
		return ErrNotFound
	}
	m.users[u.UserID] = u
	return nil
}

func (m *mockUserRepo) UpdateName(_ context.Context, id int64, name, surname string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Name = name
	u.Surname = surname
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockAddressRepo struct {
	addrs  map[int64]*Address
	nextID int64
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addrs: make(map[int64]*Address)}
}

func (m *mockAddressRepo) GetByUser(_ context.Context, userID int64) (*Address, error) {
	a, ok := m.addrs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) Upsert(_ context.Context, a *Address) error {
	if existing, ok := m.addrs[a.UserID]; ok {
		a.AddressID = existing.AddressID
	} else {
		m.nextID++
		a.AddressID = m.nextID
	}
	m.addrs[a.UserID] = a
	return nil
}

type mockMedicalAidRepo struct {
	aids   map[int64]*MedicalAid
	nextID int64
}

func newMockMedicalAidRepo() *mockMedicalAidRepo {
	return &mockMedicalAidRepo{aids: make(map[int64]*MedicalAid)}
}

func (m *mockMedicalAidRepo) GetByUser(_ context.Context, userID int64) (*MedicalAid, error) {
	a, ok := m.aids[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockMedicalAidRepo) Upsert(_ context.Context, aid *MedicalAid) error {
	if existing, ok := m.aids[aid.UserID]; ok {
		aid.MedicalAidID = existing.MedicalAidID
	} else {
		m.nextID++
		aid.MedicalAidID = m.nextID
	}
	m.aids[aid.UserID] = aid
	return nil
}

type mockPractitionerRepo struct {
	pracs  map[int64]*Practitioner
	nextID int64
}

func newMockPractitionerRepo() *mockPractitionerRepo {
	return &mockPractitionerRepo{pracs: make(map[int64]*Practitioner)}
}

func (m *mockPractitionerRepo) Create(_ context.Context, p *Practitioner) error {
	m.nextID++
	p.PractitionerID = m.nextID
	m.pracs[p.PractitionerID] = p
	return nil
}

func (m *mockPractitionerRepo) GetByID(_ context.Context, id int64) (*Practitioner, error) {
	p, ok := m.pracs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPractitionerRepo) GetByUser(_ context.Context, userID int64) (*Practitioner, error) {
	for _, p := range m.pracs {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPractitionerRepo) List(_ context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var result []*Practitioner
	for _, p := range m.pracs {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockPractitionerRepo) Update(_ context.Context, p *Practitioner) error {
	if _, ok := m.pracs[p.PractitionerID]; !ok {
		return ErrNotFound
	}
	m.pracs[p.PractitionerID] = p
	return nil
}

func (m *mockPractitionerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.pracs[id]; !ok {
		return ErrNotFound
	}
	delete(m.pracs, id)
	return nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), newMockAddressRepo(),
		newMockMedicalAidRepo(), newMockPractitionerRepo())
}

// -- Service Tests --

func TestService_CreateUser(t *testing.T) {
	svc := newTestService()

	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "thabo@example.com"}
	if err := svc.CreateUser(context.Background(), u, "s3cret-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UserID == 0 {
		t.Error("expected userid to be assigned")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
		t.Error("expected password to be stored hashed")
	}
	if !auth.CheckPassword(u.PasswordHash, "s3cret-pass") {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestService_CreateUser_Validation(t *testing.T) {
	svc := newTestService()
	bad := "martian"

	cases := []struct {
		name     string
		user     *User
		password string
	}{
		{"missing name", &User{Surname: "Mokoena", Email: "a@b.com"}, "pw"},
		{"missing email", &User{Name: "Thabo", Surname: "Mokoena"}, "pw"},
		{"bad email", &User{Name: "Thabo", Surname: "Mokoena", Email: "nope"}, "pw"},
		{"missing password", &User{Name: "Thabo", Surname: "Mokoena", Email: "a@b.com"}, ""},
		{"bad gender", &User{Name: "Thabo", Surname: "Mokoena", Email: "a@b.com", Gender: &bad}, "pw"},
	}
	for _, tc := range cases {
		if err := svc.CreateUser(context.Background(), tc.user, tc.password); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestService_UpdateUserName(t *testing.T) {
	svc := newTestService()
	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "thabo@example.com"}
	svc.CreateUser(context.Background(), u, "pw")

	if err := svc.UpdateUserName(context.Background(), u.UserID, "Sipho", "Dlamini"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetUser(context.Background(), u.UserID)
	if got.Name != "Sipho" || got.Surname != "Dlamini" {
		t.Errorf("expected updated name, got %s %s", got.Name, got.Surname)
	}

	if err := svc.UpdateUserName(context.Background(), 999, "X", "Y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestService_UpdateAddress_RequiresUser(t *testing.T) {
	svc := newTestService()

	err := svc.UpdateAddress(context.Background(), &Address{UserID: 42, PostalAddress: "PO Box 1"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for nonexistent user, got %v", err)
	}

	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "thabo@example.com"}
	svc.CreateUser(context.Background(), u, "pw")
	if err := svc.UpdateAddress(context.Background(), &Address{UserID: u.UserID, PostalAddress: "PO Box 1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_UpdateMedicalAid_RequiresMembership(t *testing.T) {
	svc := newTestService()
	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "thabo@example.com"}
	svc.CreateUser(context.Background(), u, "pw")

	err := svc.UpdateMedicalAid(context.Background(), &MedicalAid{UserID: u.UserID, PlanName: "Gold"})
	if err == nil {
		t.Error("expected error for missing membershipnumber")
	}
	err = svc.UpdateMedicalAid(context.Background(), &MedicalAid{UserID: u.UserID, PlanName: "Gold", MembershipNumber: "M-100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_CreatePractitioner_RequiresUser(t *testing.T) {
	svc := newTestService()

	err := svc.CreatePractitioner(context.Background(), &Practitioner{UserID: 7, Occupation: "GP"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing users row, got %v", err)
	}

	u := &User{Name: "Nandi", Surname: "Zulu", Email: "nandi@example.com"}
	svc.CreateUser(context.Background(), u, "pw")
	p := &Practitioner{UserID: u.UserID, Occupation: "GP", PracticeNumber: "PR-1"}
	if err := svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PractitionerID == 0 {
		t.Error("expected practitionerid to be assigned")
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := newTestService()
	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "Thabo@Example.com"}
	if err := svc.CreateUser(context.Background(), u, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, role, err := svc.Authenticate(context.Background(), "thabo@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != u.UserID {
		t.Errorf("expected userid %d, got %d", u.UserID, got.UserID)
	}
	if role != "patient" {
		t.Errorf("expected role patient, got %s", role)
	}
}

func TestService_Authenticate_PractitionerRole(t *testing.T) {
	svc := newTestService()
	u := &User{Name: "Nandi", Surname: "Zulu", Email: "nandi@example.com"}
	svc.CreateUser(context.Background(), u, "pw-nandi")
	svc.CreatePractitioner(context.Background(), &Practitioner{UserID: u.UserID, Occupation: "GP"})

	_, role, err := svc.Authenticate(context.Background(), "nandi@example.com", "pw-nandi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != "practitioner" {
		t.Errorf("expected role practitioner, got %s", role)
	}
}

func TestService_Authenticate_Rejects(t *testing.T) {
	svc := newTestService()
	u := &User{Name: "Thabo", Surname: "Mokoena", Email: "thabo@example.com"}
	svc.CreateUser(context.Background(), u, "correct-horse")

	if _, _, err := svc.Authenticate(context.Background(), "thabo@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
