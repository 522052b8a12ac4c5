package domain

// Permission is an "<Action>:<Entity>" grant checked by the HTTP middleware.
type Permission string

const (
	PermCreateDailyEntry Permission = "Create:DailyEntry"
	PermUpdateDailyEntry Permission = "Update:DailyEntry"
	PermDeleteDailyEntry Permission = "Delete:DailyEntry"

	PermCreateDayClosure Permission = "Create:DayClosure"

	PermCreateLedgerEntry Permission = "Create:LedgerEntry"
	PermUpdateLedgerEntry Permission = "Update:LedgerEntry"

	PermCreateAdvance  Permission = "Create:AdvanceRequest"
	PermApproveAdvance Permission = "Approve:AdvanceRequest"

	PermManageEmployee Permission = "Manage:Employee"
	PermManageBranch   Permission = "Manage:Branch"
	PermManageDocument Permission = "Manage:Document"
)

// rolePermissions grants write-side permissions per role. Reads are open to
// any authenticated user; admins hold every permission implicitly.
var rolePermissions = map[UserRole]map[Permission]struct{}{
	RoleManager: permSet(
		PermCreateDailyEntry, PermUpdateDailyEntry, PermDeleteDailyEntry,
		PermCreateDayClosure,
		PermCreateLedgerEntry, PermUpdateLedgerEntry,
		PermCreateAdvance, PermApproveAdvance,
		PermManageEmployee, PermManageBranch, PermManageDocument,
	),
	RoleAccountant: permSet(
		PermCreateDayClosure,
		PermCreateLedgerEntry, PermUpdateLedgerEntry,
		PermApproveAdvance,
		PermManageDocument,
	),
	RoleStaff: permSet(
		PermCreateDailyEntry, PermUpdateDailyEntry,
		PermCreateAdvance,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role holds the grant.
func (r UserRole) HasPermission(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	_, ok := rolePermissions[r][p]
	return ok
}

// Permissions lists the role's grants, used for token claims.
func (r UserRole) Permissions() []Permission {
	if r == RoleAdmin {
		all := make([]Permission, 0)
		for _, set := range rolePermissions {
			for p := range set {
				all = append(all, p)
			}
		}
		return dedupe(all)
	}
	out := make([]Permission, 0, len(rolePermissions[r]))
	for p := range rolePermissions[r] {
		out = append(out, p)
	}
	return out
}

func dedupe(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	out := perms[:0]
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
