package identity

import (
	"time"
)

// User maps to the users table. A User is a patient; practitioners are Users
// with an additional practitioners row.
type User struct {
	UserID           int64      `db:"userid" json:"userid"`
	Name             string     `db:"name" json:"name"`
	Surname          string     `db:"surname" json:"surname"`
	ContactInfo      string     `db:"contactinfo" json:"contactinfo"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	IDPassportNumber string     `db:"id_passportnumber" json:"id_passportnumber"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	DOB              *time.Time `db:"dob" json:"dob,omitempty"`
	Nationality      *string    `db:"nationality" json:"nationality,omitempty"`
	DateOfRecording  time.Time  `db:"dateofrecording" json:"dateofrecording"`
}

// Address maps to the user_addresses table. Each User owns exactly one row.
type Address struct {
	AddressID       int64  `db:"addressid" json:"addressid"`
	UserID          int64  `db:"userid" json:"userid"`
	PostalAddress   string `db:"postaladdress" json:"postaladdress"`
	PostalCode      string `db:"postalcode" json:"postalcode"`
	PhysicalAddress string `db:"physicaladdress" json:"physicaladdress"`
	PhysicalCode    string `db:"physicalcode" json:"physicalcode"`
}

// MedicalAid maps to the medical_aid table. Each User owns exactly one row.
type MedicalAid struct {
	MedicalAidID     int64  `db:"medicalaidid" json:"medicalaidid"`
	UserID           int64  `db:"userid" json:"userid"`
	PlanName         string `db:"planname" json:"planname"`
	MembershipNumber string `db:"membershipnumber" json:"membershipnumber"`
}

// Practitioner maps to the practitioners table. The userid column points back
// at the practitioner's own users row, which carries their human identity.
type Practitioner struct {
	PractitionerID   int64  `db:"practitionerid" json:"practitionerid"`
	UserID           int64  `db:"userid" json:"userid"`
	Occupation       string `db:"occupation" json:"occupation"`
	PracticeNumber   string `db:"practicenumber" json:"practicenumber"`
	StatutoryCouncil string `db:"statutorycouncil" json:"statutorycouncil"`
	Title            string `db:"title" json:"title"`
}

// UserWithAddress is the GET /users projection: the user row with its address
// nested, matching the shape existing consumers already parse.
type UserWithAddress struct {
	User
	Address *Address `json:"address"`
}
