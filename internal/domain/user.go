package domain

import "time"

// Role names seeded by the initial migration. The core only reads roles.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

// NotSpecified fills the demographic columns of profiles created by the
// admin bootstrap, which collects only name, email and password.
const NotSpecified = "Not Specified"

// User is an identity record. Password holds the argon2id digest and is
// never serialized.
type User struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	RoleID          int64     `json:"role_id"`
	RoleName        string    `json:"role"`
	IsActive        bool      `json:"is_active"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive && u.IsEmailVerified && u.Password != ""
}

// UserProfile is the 1:1 demographic extension of a User. It is always
// written in the same transaction as its user.
type UserProfile struct {
	UserID           int64
	Gender           string
	MaritalStatus    string
	Phone            string
	DOB              *time.Time
	JoinDate         time.Time
	Qualification    string
	Experience       string
	CurrentAddress   string
	PermanentAddress string
	FatherName       string
	MotherName       string
	EmergencyPhone   string
}

// NewAdminProfile returns the minimal profile stored alongside a
// bootstrapped administrator.
func NewAdminProfile(joined time.Time) UserProfile {
	return UserProfile{
		Gender:        NotSpecified,
		MaritalStatus: NotSpecified,
		JoinDate:      joined,
	}
}
