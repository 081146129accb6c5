// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "ADMIN"

	// Default role for standard registered users
	RoleUser UserRole = "USER"
)

// IsValid reports whether the role is one of the known role values.
//
// Roles arrive from client input at registration time, so they must be
// checked before being staged or persisted.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}
