package domain

import "github.com/google/uuid"

// Actor is the explicit acting identity passed into every privileged core
// operation. Core code never reads ambient session state; handlers resolve
// the actor once and inject it.
type Actor struct {
	ID   uuid.UUID
	Role string
	// Impersonator is set when an admin is acting as another user. It is
	// the back-reference that makes "return to admin" a capability check.
	Impersonator *uuid.UUID
}

// IsAdmin reports whether the actor holds the admin role, directly or via
// an impersonating admin.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Impersonator != nil
}
