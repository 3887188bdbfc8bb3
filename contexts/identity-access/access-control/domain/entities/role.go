package entities

import "time"

// Role identifies one capability grant in the engine's role set.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAuctioneer Role = "auctioneer"
	RoleOperator   Role = "operator"
	RoleMaintainer Role = "maintainer"
	RoleRecovery   Role = "recovery"
)

// Valid reports whether the role is one of the enumerated capabilities.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuctioneer, RoleOperator, RoleMaintainer, RoleRecovery:
		return true
	default:
		return false
	}
}

// RoleGrant records one actor-to-role membership.
type RoleGrant struct {
	ActorID   string
	Role      Role
	GrantedBy string
	GrantedAt time.Time
}
