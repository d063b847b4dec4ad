package api

import (
	"time"

	"github.com/schoolmgmt/school-api/internal/domain"
)

// Request payloads are defined with their validation rules in the
// validation package; this file holds the response shapes.

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AdminRegisterResponse is returned after an administrator is created.
type AdminRegisterResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// StudentListResponse wraps a student listing.
type StudentListResponse struct {
	Students []domain.StudentSummary `json:"students"`
}

// AddStudentResponse reports the outcome of an add-student call.
// EmailSent is false when the record was saved but the verification email
// is still pending.
type AddStudentResponse struct {
	Message   string `json:"message"`
	ID        int64  `json:"id"`
	EmailSent bool   `json:"emailSent"`
}

// StudentResponse is the full record of one student. Date-only fields use
// the same YYYY-MM-DD layout accepted on input.
type StudentResponse struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Gender             string     `json:"gender"`
	DOB                string     `json:"dob"`
	Phone              string     `json:"phone"`
	Class              string     `json:"class"`
	Section            string     `json:"section"`
	Roll               int        `json:"roll"`
	AdmissionDate      string     `json:"admissionDate"`
	CurrentAddress     string     `json:"currentAddress"`
	PermanentAddress   string     `json:"permanentAddress"`
	FatherName         string     `json:"fatherName"`
	FatherPhone        string     `json:"fatherPhone"`
	MotherName         string     `json:"motherName"`
	MotherPhone        string     `json:"motherPhone"`
	GuardianName       string     `json:"guardianName"`
	GuardianPhone      string     `json:"guardianPhone"`
	RelationOfGuardian string     `json:"relationOfGuardian"`
	SystemAccess       bool       `json:"systemAccess"`
	IsEmailVerified    bool       `json:"isEmailVerified"`
	ReviewedAt         *time.Time `json:"reviewedAt,omitempty"`
	ReviewerID         *int64     `json:"reviewerId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func newStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Email:              s.Email,
		Gender:             s.Gender,
		DOB:                s.DOB.Format(domain.DateLayout),
		Phone:              s.Phone,
		Class:              s.Class,
		Section:            s.Section,
		Roll:               s.Roll,
		AdmissionDate:      s.AdmissionDate.Format(domain.DateLayout),
		CurrentAddress:     s.CurrentAddress,
		PermanentAddress:   s.PermanentAddress,
		FatherName:         s.FatherName,
		FatherPhone:        s.FatherPhone,
		MotherName:         s.MotherName,
		MotherPhone:        s.MotherPhone,
		GuardianName:       s.GuardianName,
		GuardianPhone:      s.GuardianPhone,
		RelationOfGuardian: s.RelationOfGuardian,
		SystemAccess:       s.HasSystemAccess(),
		IsEmailVerified:    s.IsEmailVerified,
		ReviewedAt:         s.ReviewedAt,
		ReviewerID:         s.ReviewerID,
		CreatedAt:          s.CreatedAt,
	}
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.RoleName,
	}
}
