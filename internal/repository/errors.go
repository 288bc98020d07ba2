// Package repository persists the rate configuration and the operator
// accounts.  Every backend speaks the same interfaces so the service layer
// never knows where the data lives.
package repository

import "errors"

// ErrEmailExists is returned when an operator email is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrOperatorNotFound is returned when no operator matches the lookup.
var ErrOperatorNotFound = errors.New("operator not found")
