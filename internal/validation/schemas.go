package validation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/schoolmgmt/school-api/internal/domain"
)

// StudentRequest is the body of the add-student and update-student calls.
type StudentRequest struct {
	Name          string `json:"name" validate:"required" label:"Name"`
	Gender        string `json:"gender" validate:"required" label:"Gender"`
	DOB           string `json:"dob" validate:"required,datetime=2006-01-02" label:"Date of birth"`
	Phone         string `json:"phone" validate:"required" label:"Phone"`
	Email         string `json:"email" validate:"required,email" label:"Email"`
	Class         string `json:"class" validate:"required" label:"Class"`
	Section       string `json:"section"`
	Roll          int    `json:"roll" validate:"required,min=1" label:"Roll"`
	AdmissionDate string `json:"admissionDate" validate:"required,datetime=2006-01-02" label:"Admission date"`

	CurrentAddress   string `json:"currentAddress" validate:"required" label:"Current address"`
	PermanentAddress string `json:"permanentAddress" validate:"required" label:"Permanent address"`

	FatherName         string `json:"fatherName" validate:"required" label:"Father name"`
	FatherPhone        string `json:"fatherPhone"`
	MotherName         string `json:"motherName"`
	MotherPhone        string `json:"motherPhone"`
	GuardianName       string `json:"guardianName" validate:"required" label:"Guardian name"`
	GuardianPhone      string `json:"guardianPhone" validate:"required" label:"Guardian phone"`
	RelationOfGuardian string `json:"relationOfGuardian" validate:"required" label:"Relation of guardian"`

	SystemAccess *bool `json:"systemAccess"`
}

// ToStudent converts a validated request into a domain student. id is zero
// for a create. A missing systemAccess stays nil so that an update keeps
// the stored flag.
func (r StudentRequest) ToStudent(id int64) (*domain.Student, error) {
	dob, err := time.Parse(domain.DateLayout, r.DOB)
	if err != nil {
		return nil, domain.NewValidationError("dob", "Date of birth must be a date in YYYY-MM-DD format")
	}
	admitted, err := time.Parse(domain.DateLayout, r.AdmissionDate)
	if err != nil {
		return nil, domain.NewValidationError("admissionDate", "Admission date must be a date in YYYY-MM-DD format")
	}

	s := &domain.Student{
		ID:                 id,
		Name:               r.Name,
		Email:              r.Email,
		Gender:             r.Gender,
		DOB:                dob,
		Phone:              r.Phone,
		Class:              r.Class,
		Section:            r.Section,
		Roll:               r.Roll,
		AdmissionDate:      admitted,
		CurrentAddress:     r.CurrentAddress,
		PermanentAddress:   r.PermanentAddress,
		FatherName:         r.FatherName,
		FatherPhone:        r.FatherPhone,
		MotherName:         r.MotherName,
		MotherPhone:        r.MotherPhone,
		GuardianName:       r.GuardianName,
		GuardianPhone:      r.GuardianPhone,
		RelationOfGuardian: r.RelationOfGuardian,
		SystemAccess:       r.SystemAccess,
	}
	s.Normalize()
	return s, nil
}

// IDParams holds a numeric path identifier.
type IDParams struct {
	ID string `json:"id" validate:"required,number" msg:"number=ID must be a valid number;required=ID must be a valid number"`
}

// Int64 returns the parsed identifier. Call it after validation.
func (p IDParams) Int64() (int64, error) {
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "ID must be a valid number")
	}
	return id, nil
}

// StudentStatusRequest activates or deactivates a student.
type StudentStatusRequest struct {
	Status *bool `json:"status" validate:"required" label:"Status"`
}

// StudentListQuery holds the optional filters of a student listing.
type StudentListQuery struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	Section string `json:"section"`
	Roll    string `json:"roll" validate:"omitempty,number" label:"Roll"`
}

// ToFilter converts a validated query into a store filter.
func (q StudentListQuery) ToFilter() (domain.StudentFilter, error) {
	f := domain.StudentFilter{Name: q.Name, Class: q.Class, Section: q.Section}
	if q.Roll != "" {
		roll, err := strconv.Atoi(q.Roll)
		if err != nil {
			return f, fmt.Errorf("%w: roll", domain.ErrInvalidID)
		}
		f.Roll = &roll
	}
	return f, nil
}

// LoginRequest authenticates a user by email.
type LoginRequest struct {
	Username string `json:"username" validate:"required,email" label:"Username"`
	Password string `json:"password" validate:"required,min=6" label:"Password"`
}

// AdminRegisterRequest creates an administrator account.
type AdminRegisterRequest struct {
	Name            string `json:"name" validate:"required" label:"Name"`
	Email           string `json:"email" validate:"required,email" label:"Email"`
	Password        string `json:"password" validate:"required,min=6" label:"Password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=6,eqfield=Password" label:"Confirm password" msg:"eqfield=Passwords do not match"`
}

// VerifyEmailRequest completes the email verification flow.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required" label:"Token"`
}
