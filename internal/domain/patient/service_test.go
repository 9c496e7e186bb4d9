package patient

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/medvault/medvault/internal/domain/clinical"
	"github.com/medvault/medvault/internal/domain/identity"
	"github.com/medvault/medvault/internal/domain/scheduling"
)

// -- Mock Reader --

type memStore struct {
	users  map[int64]*identity.User
	pracs  map[int64]*identity.Practitioner
	appts  []*scheduling.Appointment
	vitals []*clinical.Vitals
	meds   []*clinical.Medication
	conds  []*clinical.Condition

	beginErr error
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*identity.User),
		pracs: make(map[int64]*identity.Practitioner),
	}
}

func (st *memStore) addUser(id int64, name, surname, email string) {
	st.users[id] = &identity.User{UserID: id, Name: name, Surname: surname,
		Email: email, ContactInfo: "555-0" + strconv.FormatInt(id, 10)}
}

func (st *memStore) addPractitioner(id, userID int64, occupation string) {
	st.pracs[id] = &identity.Practitioner{PractitionerID: id, UserID: userID,
		Occupation: occupation, PracticeNumber: "PR-" + strconv.FormatInt(id, 10),
		StatutoryCouncil: "HPCSA", Title: "Dr"}
}

func (st *memStore) Begin(_ context.Context) (Snapshot, error) {
	if st.beginErr != nil {
		return nil, st.beginErr
	}
	return &memSnapshot{st: st}, nil
}

type memSnapshot struct{ st *memStore }

func (s *memSnapshot) Close(_ context.Context) error { return nil }

func (s *memSnapshot) AllUsers(_ context.Context) ([]*identity.User, error) {
	var ids []int64
	for id := range s.st.users {
		ids = append(ids, id)
	}
	// map order is random; the service must not depend on it either way
	var users []*identity.User
	for _, id := range ids {
		users = append(users, s.st.users[id])
	}
	return users, nil
}

func (s *memSnapshot) UserByID(_ context.Context, id int64) (*identity.User, error) {
	u, ok := s.st.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *memSnapshot) UserByEmail(_ context.Context, email string) (*identity.User, error) {
	var best *identity.User
	for _, u := range s.st.users {
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

func (s *memSnapshot) PractitionerByID(_ context.Context, id int64) (*identity.Practitioner, error) {
	p, ok := s.st.pracs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *memSnapshot) AppointmentsByPatient(_ context.Context, userID int64) ([]*scheduling.Appointment, error) {
	var out []*scheduling.Appointment
	for _, a := range s.st.appts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memSnapshot) VitalsByPatient(_ context.Context, userID int64) ([]*clinical.Vitals, error) {
	var out []*clinical.Vitals
	for _, v := range s.st.vitals {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memSnapshot) MedicationByPatient(_ context.Context, userID int64) ([]*clinical.Medication, error) {
	var out []*clinical.Medication
	for _, m := range s.st.meds {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memSnapshot) ConditionsByPatient(_ context.Context, userID int64) ([]*clinical.Condition, error) {
	var out []*clinical.Condition
	for _, c := range s.st.conds {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// -- Service Tests --

func TestAggregate_EmptyHistoriesAreEmptyLists(t *testing.T) {
	st := newMemStore()
	st.addUser(1, "Thabo", "Mokoena", "thabo@example.com")
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if rec.Appointments == nil || len(rec.Appointments) != 0 {
		t.Error("expected empty appointments slice, not nil")
	}
	if rec.Vitals == nil || rec.Medication == nil || rec.Conditions == nil {
		t.Error("expected all list fields non-nil")
	}
}

func TestAggregate_MedicalNumberIsStringifiedUserID(t *testing.T) {
	st := newMemStore()
	st.addUser(42, "Thabo", "Mokoena", "thabo@example.com")
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].MedicalNumber != "42" {
		t.Errorf("expected medicalNumber \"42\", got %q", records[0].MedicalNumber)
	}
}

func TestAggregate_AppointmentsSortedNewestFirst(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 99, Date: day(2024, 1, 1)},
		{AppID: 2, UserID: 7, PractitionerID: 99, Date: day(2024, 3, 1)},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if len(rec.Appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(rec.Appointments))
	}
	if !rec.Appointments[0].Date.Equal(day(2024, 3, 1)) || !rec.Appointments[1].Date.Equal(day(2024, 1, 1)) {
		t.Errorf("appointments not sorted newest first: %v, %v",
			rec.Appointments[0].Date, rec.Appointments[1].Date)
	}
	if len(rec.Vitals) != 0 {
		t.Errorf("expected empty vitals, got %d", len(rec.Vitals))
	}
}

func TestAggregate_EqualDatesKeepInputOrder(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	d := day(2024, 2, 2)
	st.appts = []*scheduling.Appointment{
		{AppID: 10, UserID: 7, PractitionerID: 1, Date: d},
		{AppID: 11, UserID: 7, PractitionerID: 1, Date: d},
		{AppID: 12, UserID: 7, PractitionerID: 1, Date: d},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []int64{10, 11, 12} {
		if got := records[0].Appointments[i].AppID; got != want {
			t.Errorf("position %d: expected app_id %d, got %d", i, want, got)
		}
	}
}

func TestAggregate_MissingPractitionerLeavesNullFields(t *testing.T) {
	st := newMemStore()
	st.addUser(9, "Sipho", "Dlamini", "sipho@example.com")
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 9, PractitionerID: 404, Status: "scheduled", Date: day(2024, 5, 1)},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(9))
	if err != nil {
		t.Fatalf("expected no error on missing practitioner, got %v", err)
	}
	rec := records[0]
	if len(rec.Appointments) != 1 {
		t.Fatalf("expected the appointment to survive, got %d entries", len(rec.Appointments))
	}
	e := rec.Appointments[0]
	if e.PractitionerOccupation != nil || e.PractitionerName != nil || e.PractitionerUserID != nil {
		t.Error("expected null practitioner identity fields")
	}
	if e.AppID != 1 || e.PractitionerID != 404 {
		t.Error("appointment's own fields must be preserved")
	}
}

func TestAggregate_PractitionerWithoutUserRow(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.addPractitioner(3, 888, "GP") // userid 888 has no users row
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 3, Date: day(2024, 5, 1)},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := records[0].Appointments[0]
	if e.PractitionerOccupation == nil || *e.PractitionerOccupation != "GP" {
		t.Error("expected occupation from the practitioner row")
	}
	if e.PractitionerName != nil || e.PractitionerUserID != nil {
		t.Error("expected null identity fields for the missing user hop")
	}
}

func TestAggregate_TwoHopResolution(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.addUser(20, "Nandi", "Zulu", "nandi@example.com")
	st.addPractitioner(3, 20, "Cardiologist")
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 3, Date: day(2024, 5, 1)},
	}
	st.vitals = []*clinical.Vitals{
		{VitalID: 1, UserID: 7, Systolic: 120, Diastolic: 80, VitalsDate: day(2024, 5, 1), PractitionerID: 3},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := records[0].Appointments[0]
	if a.PractitionerName == nil || *a.PractitionerName != "Nandi" {
		t.Error("expected practitioner_name resolved through the user row")
	}
	if a.PractitionerUserID == nil || *a.PractitionerUserID != 20 {
		t.Error("expected practitioner_userid from the practitioner's user row")
	}
	v := records[0].Vitals[0]
	if v.PractitionerSurname == nil || *v.PractitionerSurname != "Zulu" {
		t.Error("expected vitals practitioner identity resolved the same way")
	}
}

func TestAggregate_VitalsSortedNewestFirst(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.vitals = []*clinical.Vitals{
		{VitalID: 1, UserID: 7, VitalsDate: day(2024, 1, 10), PractitionerID: 1},
		{VitalID: 2, UserID: 7, VitalsDate: day(2024, 4, 2), PractitionerID: 1},
		{VitalID: 3, UserID: 7, VitalsDate: day(2024, 2, 20), PractitionerID: 1},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := records[0].Vitals
	for i, want := range []int64{2, 3, 1} {
		if got[i].VitalID != want {
			t.Errorf("position %d: expected vitalid %d, got %d", i, want, got[i].VitalID)
		}
	}
}

func TestAggregate_MedicationDescendingByID(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.meds = []*clinical.Medication{
		{MedicationID: 1, UserID: 7, MedicationName: "Metformin"},
		{MedicationID: 3, UserID: 7, MedicationName: "Aspirin"},
		{MedicationID: 2, UserID: 7, MedicationName: "Enalapril"},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := records[0].Medication
	for i, want := range []int64{3, 2, 1} {
		if got[i].MedicationID != want {
			t.Errorf("position %d: expected medicationid %d, got %d", i, want, got[i].MedicationID)
		}
	}
}

func TestAggregate_ByEmailCaseInsensitive(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "Thabo@Example.com")
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 1, Date: day(2024, 1, 1)},
	}
	svc := NewService(st, 4)

	byID, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byEmail, err := svc.Aggregate(context.Background(), ByEmail("THABO@example.COM"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(byID[0])
	b, _ := json.Marshal(byEmail[0])
	if string(a) != string(b) {
		t.Error("by-email record must equal the by-id record for the same user")
	}
}

func TestAggregate_NotFound(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	svc := NewService(st, 4)

	if _, err := svc.Aggregate(context.Background(), ByID(999)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
	if _, err := svc.Aggregate(context.Background(), ByEmail("nobody@example.com")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestAggregate_AllMatchesByID(t *testing.T) {
	st := newMemStore()
	for i := int64(1); i <= 10; i++ {
		st.addUser(i, "User", "Num", "u"+strconv.FormatInt(i, 10)+"@example.com")
		st.appts = append(st.appts, &scheduling.Appointment{
			AppID: i, UserID: i, PractitionerID: 1, Date: day(2024, 1, int(i)),
		})
	}
	st.addPractitioner(1, 1, "GP")
	svc := NewService(st, 3)

	all, err := svc.Aggregate(context.Background(), All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("expected 10 records, got %d", len(all))
	}
	for _, rec := range all {
		one, err := svc.Aggregate(context.Background(), ByID(rec.UserID))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, _ := json.Marshal(rec)
		b, _ := json.Marshal(one[0])
		if string(a) != string(b) {
			t.Errorf("all-mode record for user %d differs from by-id record", rec.UserID)
		}
	}
}

func TestAggregate_AllEmptyStore(t *testing.T) {
	svc := NewService(newMemStore(), 4)

	all, err := svc.Aggregate(context.Background(), All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Error("expected empty non-nil record slice")
	}
}

func TestAggregate_SnapshotFailureFailsWhole(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.beginErr = errors.New("pool exhausted")
	svc := NewService(st, 4)

	if _, err := svc.Aggregate(context.Background(), All()); err == nil {
		t.Error("expected aggregation to fail when no snapshot can be opened")
	}
	if _, err := svc.Aggregate(context.Background(), ByID(7)); err == nil {
		t.Error("expected by-id aggregation to fail too")
	}
}

func TestRecord_JSONShape(t *testing.T) {
	st := newMemStore()
	st.addUser(7, "Thabo", "Mokoena", "thabo@example.com")
	st.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 404, Status: "scheduled", Date: day(2024, 5, 1)},
	}
	svc := NewService(st, 4)

	records, err := svc.Aggregate(context.Background(), ByID(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(records[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	json.Unmarshal(raw, &m)
	for _, key := range []string{"userid", "medicalNumber", "name", "surname", "phone", "email",
		"id_passportnumber", "gender", "dob", "nationality",
		"appointments", "vitals", "medication", "conditions"} {
		if _, ok := m[key]; !ok {
			t.Errorf("record JSON missing key %q", key)
		}
	}
	if m["medicalNumber"] != "7" {
		t.Errorf("expected medicalNumber \"7\", got %v", m["medicalNumber"])
	}
	if _, ok := m["vitals"].([]any); !ok {
		t.Error("vitals must serialize as an array")
	}

	appts := m["appointments"].([]any)
	entry := appts[0].(map[string]any)
	for _, key := range []string{"practitioner_occupation", "practicenumber", "statutorycouncil",
		"practitioner_userid", "practitioner_name", "practitioner_surname", "title"} {
		v, ok := entry[key]
		if !ok {
			t.Errorf("appointment entry missing key %q", key)
		} else if v != nil {
			t.Errorf("expected %q to be null for an unresolved practitioner, got %v", key, v)
		}
	}
}

// phasedReader serves a different store on each successive Begin, imitating
// writes that land between the listing transaction and the per-patient
// worker transactions.
type phasedReader struct {
	mu     sync.Mutex
	phases []*memStore
	calls  int
}

func (r *phasedReader) Begin(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	st := r.phases[r.calls]
	if r.calls < len(r.phases)-1 {
		r.calls++
	}
	r.mu.Unlock()
	return st.Begin(ctx)
}

func TestAggregate_AllReadsEachRecordFromOneSnapshot(t *testing.T) {
	before := newMemStore()
	before.addUser(7, "Thandi", "Naidoo", "thandi@example.com")

	after := newMemStore()
	after.addUser(7, "Thandiwe", "Naidoo", "thandi@example.com")
	after.appts = []*scheduling.Appointment{
		{AppID: 1, UserID: 7, PractitionerID: 99, Status: scheduling.StatusScheduled, Date: day(2024, 3, 1)},
	}

	svc := NewService(&phasedReader{phases: []*memStore{before, after}}, 2)

	records, err := svc.Aggregate(context.Background(), All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != "Thandiwe" {
		t.Errorf("profile read from stale listing snapshot: name %q", rec.Name)
	}
	if len(rec.Appointments) != 1 {
		t.Errorf("expected 1 appointment from the worker snapshot, got %d", len(rec.Appointments))
	}
}

func TestAggregate_AllSkipsUserDeletedAfterListing(t *testing.T) {
	before := newMemStore()
	before.addUser(1, "Sipho", "Dlamini", "sipho@example.com")
	before.addUser(2, "Lerato", "Molefe", "lerato@example.com")

	after := newMemStore()
	after.addUser(2, "Lerato", "Molefe", "lerato@example.com")

	svc := NewService(&phasedReader{phases: []*memStore{before, after}}, 1)

	records, err := svc.Aggregate(context.Background(), All())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected the deleted user to be skipped, got %d records", len(records))
	}
	if records[0].UserID != 2 {
		t.Errorf("expected record for user 2, got %d", records[0].UserID)
	}
}
