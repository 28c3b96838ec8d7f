package models

// Role determines which items a viewer may see and how they are highlighted.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is the viewer a report is generated for. A nil *User means no
// authenticated viewer.
type User struct {
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
}

// IsAdmin reports whether u is present and has the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
