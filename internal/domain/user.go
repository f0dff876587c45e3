package domain

// Structural labels and property keys shared by the graph schema.
const (
	// LabelAccount is attached to every person node so the storage engine can
	// enforce email uniqueness across all role labels. It is never a role.
	LabelAccount = "Account"
	LabelService = "Service"

	PropName        = "name"
	PropEmail       = "email"
	PropPassword    = "password"
	PropDescription = "description"
	PropCreatedBy   = "createdBy"
	PropCreatedAt   = "createdAt"
)

// DefaultRoles are the person labels accepted at registration.
var DefaultRoles = []string{"Student", "Faculty", "Staff", "Alumni"}

// Account is a person node resolved by email.
type Account struct {
	Email        string
	Name         string
	Role         string
	PasswordHash string
	Properties   map[string]any
}

// Profile is the public view of an account; it never carries the password hash.
type Profile struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// PublicProfile strips credentials from the account.
func (a Account) PublicProfile() Profile {
	return Profile{
		ID:    a.Email,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
}
