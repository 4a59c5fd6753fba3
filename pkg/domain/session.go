package domain

// Role is the account type chosen at registration.
type Role string

const (
	RoleMother Role = "mother"
	RoleChild  Role = "child"
)

// ValidRole returns true if r is a known account role.
func ValidRole(r Role) bool {
	return r == RoleMother || r == RoleChild
}

// User is the identity stored alongside the session token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"userType"`
}

// Session is the client-held credential plus the identity it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session carries a token.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}
