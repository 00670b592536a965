package models

// Role defines the user role type
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleStudent   Role = "STUDENT"
	RoleProfessor Role = "PROFESSOR"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}

// PersonKind discriminates the concrete person subtype
type PersonKind string

const (
	KindStudent   PersonKind = "STUDENT"
	KindProfessor PersonKind = "PROFESSOR"
)
