package types

// Role is the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
	RoleSystem    Role = "system"
)

// IsValid checks if the Role is one of the known roles
func (x Role) IsValid() bool {
	switch x {
	case RoleUser, RoleCompanion, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of Role
func (x Role) String() string {
	return string(x)
}
