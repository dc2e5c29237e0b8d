package auth

import (
	"slices"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

// Permission constants name the admin api areas a role may use.
const (
	// PermSettingsWrite allows changing the site settings and presets.
	PermSettingsWrite = "settings.write"
	// PermPagesManage allows managing dynamic pages, including the trash.
	PermPagesManage = "pages.manage"
	// PermEmailManage allows reading and changing the mail relay.
	PermEmailManage = "email.manage"
	// PermBackupManage allows running, listing and deleting backups.
	PermBackupManage = "backup.manage"
	// PermUsersManage allows listing users and changing their status.
	PermUsersManage = "users.manage"
	// PermAdminsCreate allows creating admin accounts.
	PermAdminsCreate = "admins.create"
	// PermAdminsDelete allows deleting admin accounts.
	PermAdminsDelete = "admins.delete"
)

var adminPermissions = []string{ //nolint:gochecknoglobals
	PermSettingsWrite,
	PermPagesManage,
	PermEmailManage,
	PermBackupManage,
	PermUsersManage,
	PermAdminsCreate,
}

var rolePermissions = map[models.Role][]string{ //nolint:gochecknoglobals
	models.RoleUser:       nil,
	models.RoleAdmin:      adminPermissions,
	models.RoleSuperAdmin: append(slices.Clone(adminPermissions), PermAdminsDelete),
}

// Permissions lists what role may do.
func Permissions(role models.Role) []string {
	return slices.Clone(rolePermissions[role])
}

// HasPermission reports whether role grants permission.
func HasPermission(role models.Role, permission string) bool {
	return slices.Contains(rolePermissions[role], permission)
}
