package authz

const (
	RoleStaff = 10
	RoleAudit = 30
	RoleAdmin = 50
)

// Elevated двигает любые лиды; staff — только свои.
func IsElevated(roleID int) bool {
	return roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}
