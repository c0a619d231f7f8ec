package entity

// Principal is the authenticated caller, passed explicitly into every
// operation that needs an actor.
type Principal struct {
	UserId int64
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
