package clinical

import "time"

// Vitals is one blood-pressure/heart-rate/temperature reading for a patient,
// recorded by a practitioner.
type Vitals struct {
	VitalID        int64     `db:"vitalid" json:"vitalid"`
	UserID         int64     `db:"userid" json:"userid"`
	Systolic       int       `db:"systolic" json:"systolic"`
	Diastolic      int       `db:"diastolic" json:"diastolic"`
	HeartRate      int       `db:"heartrate" json:"heartrate"`
	Temperature    float64   `db:"temperature" json:"temperature"`
	VitalsDate     time.Time `db:"vitalsdate" json:"vitalsdate"`
	PractitionerID int64     `db:"practitionerid" json:"practitionerid"`
}

// Medication is one active prescription line for a patient.
type Medication struct {
	MedicationID   int64  `db:"medicationid" json:"medicationid"`
	UserID         int64  `db:"userid" json:"userid"`
	MedicationName string `db:"medicationname" json:"medicationname"`
	Dosage         string `db:"dosage" json:"dosage"`
	Frequency      string `db:"frequency" json:"frequency"`
}

// Condition is a diagnosed condition on a patient's record.
type Condition struct {
	ConditionID   int64     `db:"conditionid" json:"conditionid"`
	UserID        int64     `db:"userid" json:"userid"`
	ConditionName string    `db:"conditionname" json:"conditionname"`
	DiagnosisDate time.Time `db:"diagnosisdate" json:"diagnosisdate"`
}
