package happycall

import "github.com/happycall-qa/happycall/internal/datastore/entities"

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	UserID   uint
	Username string
	Role     entities.Role
}

// Anonymous returns the unauthenticated caller.
func Anonymous() Caller {
	return Caller{}
}

// CallerFromUser builds a Caller for an authenticated user.
func CallerFromUser(u *entities.User) Caller {
	if u == nil {
		return Anonymous()
	}
	return Caller{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (c Caller) Authenticated() bool {
	return c.UserID != 0 && c.Role.Valid()
}

func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == entities.RoleAdmin
}

func (c Caller) IsFreelancer() bool {
	return c.Authenticated() && c.Role == entities.RoleFreelancer
}
