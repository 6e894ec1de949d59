package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

type Permission string

const (
	PermCreateEvent          Permission = "create_event"
	PermEditEvent            Permission = "edit_event"
	PermDeleteEvent          Permission = "delete_event"
	PermViewAllEvents        Permission = "view_all_events"
	PermManageUsers          Permission = "manage_users"
	PermViewEvents           Permission = "view_events"
	PermRegisterEvent        Permission = "register_event"
	PermViewOwnRegistrations Permission = "view_own_registrations"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {PermCreateEvent, PermEditEvent, PermDeleteEvent, PermViewAllEvents, PermManageUsers},
	RoleUser:  {PermViewEvents, PermRegisterEvent, PermViewOwnRegistrations},
}

func HasPermission(r Role, p Permission) bool {
	for _, have := range rolePermissions[r] {
		if have == p {
			return true
		}
	}
	return false
}

// Permissions returns a copy of the permission list for r.
func Permissions(r Role) []Permission {
	return append([]Permission(nil), rolePermissions[r]...)
}
