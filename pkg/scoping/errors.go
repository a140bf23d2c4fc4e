package scoping

import "errors"

var (
	// ErrEntityNotBound is returned when a registered entity is used before
	// it was bound to a scope source.
	ErrEntityNotBound = errors.New("scoping: entity is not bound to a tenancy coordinator")

	// ErrEntityNotRegistered is returned by Bind and SetEnabled for unknown entities.
	ErrEntityNotRegistered = errors.New("scoping: entity is not registered")

	// ErrUnknownTenantField is returned when an entity's schema lacks its tenant field.
	ErrUnknownTenantField = errors.New("scoping: entity has no such tenant field")
)

// ErrUnknownHook is returned by Injector.Apply for hooks it does not handle.
var ErrUnknownHook = errors.New("scoping: unknown hook")
