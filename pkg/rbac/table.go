package rbac

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/workboard/pkg/apperr"
)

//go:embed permissions.yaml
var permissionsYAML []byte

type roleDef struct {
	rank        int
	permissions map[Permission]struct{}
}

type permissionTable struct {
	roles map[Role]roleDef
}

// table is populated once in init and never written afterwards
var table = mustLoadTable(permissionsYAML)

type tableFile struct {
	Roles map[string]struct {
		Rank        int      `yaml:"rank"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
}

func loadTable(data []byte) (permissionTable, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return permissionTable{}, fmt.Errorf("failed to parse permission table: %w", err)
	}
	if len(file.Roles) == 0 {
		return permissionTable{}, fmt.Errorf("permission table has no roles")
	}

	known := make(map[Permission]struct{}, len(AllPermissions))
	for _, p := range AllPermissions {
		known[p] = struct{}{}
	}

	t := permissionTable{roles: make(map[Role]roleDef, len(file.Roles))}
	for name, def := range file.Roles {
		perms := make(map[Permission]struct{}, len(def.Permissions))
		for _, p := range def.Permissions {
			perm := Permission(p)
			if _, ok := known[perm]; !ok {
				return permissionTable{}, fmt.Errorf("role %s: unknown permission %q", name, p)
			}
			perms[perm] = struct{}{}
		}
		t.roles[Role(name)] = roleDef{rank: def.Rank, permissions: perms}
	}
	return t, nil
}

func mustLoadTable(data []byte) permissionTable {
	t, err := loadTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// PermissionsFor returns a sorted copy of the permissions granted to role
func PermissionsFor(role Role) []Permission {
	def, ok := table.roles[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(def.permissions))
	for p := range def.permissions {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission reports whether role grants perm
func HasPermission(role Role, perm Permission) bool {
	def, ok := table.roles[role]
	if !ok {
		return false
	}
	_, ok = def.permissions[perm]
	return ok
}

// Authorize succeeds only if role holds every permission in required.
// An empty requirement list is satisfied by any known role.
func Authorize(role Role, required ...Permission) error {
	if !role.Valid() {
		return apperr.Unauthorized(apperr.CodeAccessUnauthorized, "You do not have the necessary permissions to perform this action")
	}
	for _, perm := range required {
		if !HasPermission(role, perm) {
			return apperr.Unauthorized(apperr.CodeAccessUnauthorized, "You do not have the necessary permissions to perform this action")
		}
	}
	return nil
}
