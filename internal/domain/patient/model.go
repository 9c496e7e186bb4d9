package patient

import "time"

// Record is the denormalized patient view served by the /patientData
// endpoints. List fields are always present and never null; an empty history
// serializes as [].
type Record struct {
	UserID           int64      `json:"userid"`
	MedicalNumber    string     `json:"medicalNumber"`
	Name             string     `json:"name"`
	Surname          string     `json:"surname"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	IDPassportNumber string     `json:"id_passportnumber"`
	Gender           *string    `json:"gender"`
	DOB              *time.Time `json:"dob"`
	Nationality      *string    `json:"nationality"`

	Appointments []AppointmentEntry `json:"appointments"`
	Vitals       []VitalsEntry      `json:"vitals"`
	Medication   []MedicationEntry  `json:"medication"`
	Conditions   []ConditionEntry   `json:"conditions"`
}

// AppointmentEntry is an appointment enriched with the treating
// practitioner's credentials and identity. The practitioner_* fields stay
// null when the referenced practitioner or their user row is missing.
type AppointmentEntry struct {
	AppID          int64     `json:"app_id"`
	PractitionerID int64     `json:"practitionerid"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	Date           time.Time `json:"date"`

	PractitionerOccupation *string `json:"practitioner_occupation"`
	PracticeNumber         *string `json:"practicenumber"`
	StatutoryCouncil       *string `json:"statutorycouncil"`
	PractitionerUserID     *int64  `json:"practitioner_userid"`
	PractitionerName       *string `json:"practitioner_name"`
	PractitionerSurname    *string `json:"practitioner_surname"`
	Title                  *string `json:"title"`
}

// VitalsEntry is a vital-sign reading enriched with the recording
// practitioner's identity, with the same null semantics as AppointmentEntry.
type VitalsEntry struct {
	VitalID     int64     `json:"vitalid"`
	Systolic    int       `json:"systolic"`
	Diastolic   int       `json:"diastolic"`
	HeartRate   int       `json:"heartrate"`
	Temperature float64   `json:"temperature"`
	VitalsDate  time.Time `json:"vitalsdate"`

	PractitionerID         int64   `json:"practitionerid"`
	PractitionerOccupation *string `json:"practitioner_occupation"`
	PractitionerUserID     *int64  `json:"practitioner_userid"`
	PractitionerName       *string `json:"practitioner_name"`
	PractitionerSurname    *string `json:"practitioner_surname"`
	Title                  *string `json:"title"`
}

type MedicationEntry struct {
	MedicationID   int64  `json:"medicationid"`
	MedicationName string `json:"medicationname"`
	Dosage         string `json:"dosage"`
	UserID         int64  `json:"userid"`
	Frequency      string `json:"frequency"`
}

type ConditionEntry struct {
	ConditionID   int64     `json:"conditionid"`
	ConditionName string    `json:"conditionname"`
	DiagnosisDate time.Time `json:"diagnosisdate"`
}

type selectorMode int

const (
	selectAll selectorMode = iota
	selectByID
	selectByEmail
)

// Selector picks the patient set an aggregation targets: every patient, one
// patient by internal id, or one patient by case-insensitive email.
type Selector struct {
	mode  selectorMode
	id    int64
	email string
}

func All() Selector                 { return Selector{mode: selectAll} }
func ByID(id int64) Selector        { return Selector{mode: selectByID, id: id} }
func ByEmail(email string) Selector { return Selector{mode: selectByEmail, email: email} }
