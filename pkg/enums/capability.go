package enums

// Capability names a single action an authenticated account may perform.
// Admin surfaces consume the capability set instead of branching on roles.
type Capability string

const (
	CapabilityPlaceOrders    Capability = "place_orders"
	CapabilityManageProducts Capability = "manage_products"
	CapabilityManageUsers    Capability = "manage_users"
	CapabilityManageOrders   Capability = "manage_orders"
)

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is the set of actions granted to a role.
type CapabilitySet map[Capability]struct{}

// Has reports whether the capability is granted.
func (s CapabilitySet) Has(capability Capability) bool {
	_, ok := s[capability]
	return ok
}

// CapabilitiesForRole maps a role to its capability set.
func CapabilitiesForRole(role UserRole) CapabilitySet {
	set := CapabilitySet{CapabilityPlaceOrders: {}}
	if role.IsStaff() {
		set[CapabilityManageProducts] = struct{}{}
		set[CapabilityManageOrders] = struct{}{}
	}
	if role == UserRoleSuperadmin {
		set[CapabilityManageUsers] = struct{}{}
	}
	return set
}
