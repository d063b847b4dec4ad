package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of every date field (dob, admission date).
const DateLayout = "2006-01-02"

// Student is a User with role Student plus its profile and academic record.
// ID is zero for a record that has not been created yet.
type Student struct {
	ID                 int64
	Name               string
	Email              string
	Gender             string
	DOB                time.Time
	Phone              string
	Class              string
	Section            string
	Roll               int
	AdmissionDate      time.Time
	CurrentAddress     string
	PermanentAddress   string
	FatherName         string
	FatherPhone        string
	MotherName         string
	MotherPhone        string
	GuardianName       string
	GuardianPhone      string
	RelationOfGuardian string
	// SystemAccess is nil when the caller did not say. A new student then
	// gets access and an update keeps the stored flag.
	SystemAccess *bool

	IsEmailVerified bool
	ReviewedAt      *time.Time
	ReviewerID      *int64
	CreatedAt       time.Time
}

// IsNew reports whether the record still needs to be created.
func (s *Student) IsNew() bool {
	return s.ID == 0
}

// HasSystemAccess reports the effective access flag.
func (s *Student) HasSystemAccess() bool {
	return s.SystemAccess == nil || *s.SystemAccess
}

// Normalize trims surrounding whitespace and lower-cases the email so that
// uniqueness comparisons are case-insensitive.
func (s *Student) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = NormalizeEmail(s.Email)
}

// StudentSummary is one row of a student listing.
type StudentSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Class        string `json:"class"`
	Section      string `json:"section"`
	Roll         int    `json:"roll"`
	SystemAccess bool   `json:"systemAccess"`
}

// StudentFilter narrows a listing. Empty fields do not filter.
type StudentFilter struct {
	Name    string
	Class   string
	Section string
	Roll    *int
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
