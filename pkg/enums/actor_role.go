package enums

import "fmt"

// ActorRole identifies who performed an order operation.
type ActorRole string

const (
	ActorRoleCustomer   ActorRole = "customer"
	ActorRoleStaff      ActorRole = "staff"
	ActorRoleDriver     ActorRole = "driver"
	ActorRoleDispatcher ActorRole = "dispatcher"
	ActorRoleSystem     ActorRole = "system"
)

var validActorRoles = []ActorRole{
	ActorRoleCustomer,
	ActorRoleStaff,
	ActorRoleDriver,
	ActorRoleDispatcher,
	ActorRoleSystem,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
