// Package guard marks values that were produced by their constructor so that
// zero-value structs can be told apart from validated ones.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in commands, queries and value objects. Its zero
// value is "not constructed"; only NewConstructorGuard produces a valid guard.
//
// Example:
//
//	type StartRouteCommand struct {
//	    routeID kernel.UUID
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c StartRouteCommand) Validate() error {
//	    return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
