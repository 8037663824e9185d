package review

import "gxpgovern/pkg/requestcontext"

// Role names are carried verbatim in JWT claims and audit entries.
const (
	RoleLearner    = "learner"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleSystem     = "system"
)

// Permission is a named capability checked before any governed operation.
type Permission string

const (
	PermContentPropose Permission = "content.propose"
	PermContentApprove Permission = "content.approve"
	PermAuditRead      Permission = "audit.read"
	PermAdminManage    Permission = "admin.manage"
)

var rolePermissions = map[string]map[Permission]bool{
	RoleLearner: {},
	RoleInstructor: {
		PermContentPropose: true,
		PermContentApprove: true,
		PermAuditRead:      true,
	},
	RoleAdmin: {
		PermContentPropose: true,
		PermContentApprove: true,
		PermAuditRead:      true,
		PermAdminManage:    true,
	},
	RoleSystem: {
		PermContentPropose: true,
	},
}

// Can reports whether the role holds the permission. Unknown roles hold
// nothing.
func Can(role string, perm Permission) bool {
	return rolePermissions[role][perm]
}

// SystemActor is the identity the regulatory watcher acts under.
var SystemActor = requestcontext.Actor{
	UserID:    "system",
	UserName:  "Regulatory Watcher",
	Role:      RoleSystem,
	Automated: true,
}
