package rbac

import "strings"

// Role is a workspace membership role
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// AllRoles lists the built-in roles from highest to lowest rank
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleMember}

// ParseRole normalizes a role name. The second return is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := table.roles[r]; !ok {
		return "", false
	}
	return r, true
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := table.roles[r]
	return ok
}

// Rank orders roles: OWNER > ADMIN > MEMBER. Unknown roles rank 0.
func (r Role) Rank() int {
	if def, ok := table.roles[r]; ok {
		return def.rank
	}
	return 0
}

// Outranks reports whether r is strictly higher than other
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

func (r Role) String() string {
	return string(r)
}

// Permission is an atomic capability checked by Authorize
type Permission string

const (
	PermCreateWorkspace         Permission = "CREATE_WORKSPACE"
	PermEditWorkspace           Permission = "EDIT_WORKSPACE"
	PermDeleteWorkspace         Permission = "DELETE_WORKSPACE"
	PermManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"
	PermAddMember               Permission = "ADD_MEMBER"
	PermChangeMemberRole        Permission = "CHANGE_MEMBER_ROLE"
	PermRemoveMember            Permission = "REMOVE_MEMBER"
	PermCreateProject           Permission = "CREATE_PROJECT"
	PermEditProject             Permission = "EDIT_PROJECT"
	PermDeleteProject           Permission = "DELETE_PROJECT"
	PermCreateTask              Permission = "CREATE_TASK"
	PermEditTask                Permission = "EDIT_TASK"
	PermDeleteTask              Permission = "DELETE_TASK"
	PermViewOnly                Permission = "VIEW_ONLY"
)

// AllPermissions lists every permission known to the table
var AllPermissions = []Permission{
	PermCreateWorkspace,
	PermEditWorkspace,
	PermDeleteWorkspace,
	PermManageWorkspaceSettings,
	PermAddMember,
	PermChangeMemberRole,
	PermRemoveMember,
	PermCreateProject,
	PermEditProject,
	PermDeleteProject,
	PermCreateTask,
	PermEditTask,
	PermDeleteTask,
	PermViewOnly,
}
