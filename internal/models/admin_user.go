package models

// AdminRole is the back-office permission level.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleOperator   AdminRole = "operator"
)

// Valid reports whether r is a known role.
func (r AdminRole) Valid() bool {
	return r == RoleSuperAdmin || r == RoleOperator
}

// AdminIdentity is the signed-in back-office identity. Role is fixed at login.
type AdminIdentity struct {
	ID       int       `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     AdminRole `json:"role"`
}

// AdminUser is a managed back-office account.
type AdminUser struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      AdminRole `json:"role"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
}
