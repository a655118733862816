package models

// Role defines the access level of a user account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// StudentStatus defines the lifecycle state of a student record
type StudentStatus string

const (
	StudentActive     StudentStatus = "active"
	StudentInactive   StudentStatus = "inactive"
	StudentGraduating StudentStatus = "graduating"
	StudentArchived   StudentStatus = "archived"
)

// IsValid reports whether the status is one of the known student statuses.
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentGraduating, StudentArchived:
		return true
	}
	return false
}
