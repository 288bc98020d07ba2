package model

import (
	"strings"
	"time"
)

// Role is the access level of an operator.  Viewers can only read the
// configuration; editors and admins can change it, and only admins can
// create other operators.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole normalizes a role name.  Unknown names read as RoleViewer.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleEditor, RoleAdmin:
		return r
	}
	return RoleViewer
}

// CanWrite reports whether the role may change the configuration.
func (r Role) CanWrite() bool { return r == RoleEditor || r == RoleAdmin }

// Operator is a revenue manager account.  PasswordHash is a bcrypt hash; the
// plain password is never stored.
type Operator struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
