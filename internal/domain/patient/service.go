package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/medvault/medvault/internal/domain/identity"
)

// Service assembles denormalized patient records. It is stateless; every
// Aggregate call draws from its own Snapshot.
type Service struct {
	reader  Reader
	workers int
}

// NewService builds an aggregation service. workers bounds the concurrent
// per-patient aggregations in all-patients mode and must not exceed the
// connection pool's concurrent-query budget.
func NewService(reader Reader, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{reader: reader, workers: workers}
}

// Aggregate resolves the selector's patient set and builds one Record per
// patient. Single-patient selectors return ErrNotFound when no user matches;
// the all-patients selector returns an empty slice for an empty table. An
// aggregation either completes whole or fails; partial results are never
// returned.
func (s *Service) Aggregate(ctx context.Context, sel Selector) ([]*Record, error) {
	if sel.mode == selectAll {
		return s.aggregateAll(ctx)
	}

	snap, err := s.reader.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = snap.Close(ctx) }()

	var u *identity.User
	switch sel.mode {
	case selectByID:
		u, err = snap.UserByID(ctx, sel.id)
	case selectByEmail:
		u, err = snap.UserByEmail(ctx, sel.email)
	}
	if err != nil {
		return nil, err
	}
	rec, err := s.buildRecord(ctx, snap, u)
	if err != nil {
		return nil, err
	}
	return []*Record{rec}, nil
}

// aggregateAll lists the patient set from one snapshot, then aggregates each
// patient concurrently. Each worker opens its own snapshot, so a single
// patient's record is internally consistent; the bound keeps the fan-out
// within the pool's budget.
func (s *Service) aggregateAll(ctx context.Context) ([]*Record, error) {
	snap, err := s.reader.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	users, err := snap.AllUsers(ctx)
	if cerr := snap.Close(ctx); cerr != nil && err == nil {
		err = fmt.Errorf("close snapshot: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*Record, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			wsnap, err := s.reader.Begin(gctx)
			if err != nil {
				return fmt.Errorf("begin snapshot: %w", err)
			}
			defer func() { _ = wsnap.Close(gctx) }()
			// The listing row belongs to the earlier snapshot. Re-read the
			// user here so every field of the record comes from this
			// snapshot's state.
			wu, err := wsnap.UserByID(gctx, u.UserID)
			if errors.Is(err, ErrNotFound) {
				// deleted between the listing and this snapshot
				return nil
			}
			if err != nil {
				return err
			}
			rec, err := s.buildRecord(gctx, wsnap, wu)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := records[:0]
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

// practitionerIdentity is the resolved two-hop join: the practitioner row
// plus the user row carrying their human identity. Either half may be nil
// when the referenced row is missing.
type practitionerIdentity struct {
	prac *identity.Practitioner
	user *identity.User
}

// resolver memoizes practitioner and user lookups within one record build, so
// a patient seen by the same practitioner many times costs two queries, not
// two per visit.
type resolver struct {
	snap  Snapshot
	pracs map[int64]*practitionerIdentity
}

func newResolver(snap Snapshot) *resolver {
	return &resolver{snap: snap, pracs: make(map[int64]*practitionerIdentity)}
}

// resolve follows practitionerid -> practitioners.userid -> users. A missing
// row at either hop is not an error; the corresponding half stays nil and the
// caller emits null identity fields.
func (r *resolver) resolve(ctx context.Context, practitionerID int64) (*practitionerIdentity, error) {
	if pi, ok := r.pracs[practitionerID]; ok {
		return pi, nil
	}
	pi := &practitionerIdentity{}
	prac, err := r.snap.PractitionerByID(ctx, practitionerID)
	switch {
	case err == nil:
		pi.prac = prac
		u, err := r.snap.UserByID(ctx, prac.UserID)
		switch {
		case err == nil:
			pi.user = u
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	r.pracs[practitionerID] = pi
	return pi, nil
}

func (s *Service) buildRecord(ctx context.Context, snap Snapshot, u *identity.User) (*Record, error) {
	rec := &Record{
		UserID:           u.UserID,
		MedicalNumber:    strconv.FormatInt(u.UserID, 10),
		Name:             u.Name,
		Surname:          u.Surname,
		Phone:            u.ContactInfo,
		Email:            u.Email,
		IDPassportNumber: u.IDPassportNumber,
		Gender:           u.Gender,
		DOB:              u.DOB,
		Nationality:      u.Nationality,
		Appointments:     []AppointmentEntry{},
		Vitals:           []VitalsEntry{},
		Medication:       []MedicationEntry{},
		Conditions:       []ConditionEntry{},
	}
	res := newResolver(snap)

	appts, err := snap.AppointmentsByPatient(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	for _, a := range appts {
		pi, err := res.resolve(ctx, a.PractitionerID)
		if err != nil {
			return nil, err
		}
		entry := AppointmentEntry{
			AppID:          a.AppID,
			PractitionerID: a.PractitionerID,
			Status:         a.Status,
			Notes:          a.Notes,
			Date:           a.Date,
		}
		if pi.prac != nil {
			entry.PractitionerOccupation = &pi.prac.Occupation
			entry.PracticeNumber = &pi.prac.PracticeNumber
			entry.StatutoryCouncil = &pi.prac.StatutoryCouncil
			entry.Title = &pi.prac.Title
		}
		if pi.user != nil {
			entry.PractitionerUserID = &pi.user.UserID
			entry.PractitionerName = &pi.user.Name
			entry.PractitionerSurname = &pi.user.Surname
		}
		rec.Appointments = append(rec.Appointments, entry)
	}
	sort.SliceStable(rec.Appointments, func(i, j int) bool {
		return rec.Appointments[i].Date.After(rec.Appointments[j].Date)
	})

	vitals, err := snap.VitalsByPatient(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	for _, v := range vitals {
		pi, err := res.resolve(ctx, v.PractitionerID)
		if err != nil {
			return nil, err
		}
		entry := VitalsEntry{
			VitalID:        v.VitalID,
			Systolic:       v.Systolic,
			Diastolic:      v.Diastolic,
			HeartRate:      v.HeartRate,
			Temperature:    v.Temperature,
			VitalsDate:     v.VitalsDate,
			PractitionerID: v.PractitionerID,
		}
		if pi.prac != nil {
			entry.PractitionerOccupation = &pi.prac.Occupation
			entry.Title = &pi.prac.Title
		}
		if pi.user != nil {
			entry.PractitionerUserID = &pi.user.UserID
			entry.PractitionerName = &pi.user.Name
			entry.PractitionerSurname = &pi.user.Surname
		}
		rec.Vitals = append(rec.Vitals, entry)
	}
	sort.SliceStable(rec.Vitals, func(i, j int) bool {
		return rec.Vitals[i].VitalsDate.After(rec.Vitals[j].VitalsDate)
	})

	meds, err := snap.MedicationByPatient(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	for _, m := range meds {
		rec.Medication = append(rec.Medication, MedicationEntry{
			MedicationID:   m.MedicationID,
			MedicationName: m.MedicationName,
			Dosage:         m.Dosage,
			UserID:         m.UserID,
			Frequency:      m.Frequency,
		})
	}
	sort.SliceStable(rec.Medication, func(i, j int) bool {
		return rec.Medication[i].MedicationID > rec.Medication[j].MedicationID
	})

	conds, err := snap.ConditionsByPatient(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	for _, c := range conds {
		rec.Conditions = append(rec.Conditions, ConditionEntry{
			ConditionID:   c.ConditionID,
			ConditionName: c.ConditionName,
			DiagnosisDate: c.DiagnosisDate,
		})
	}

	return rec, nil
}
