package bwtree

import "errors"

// Tree errors.
var (
	// ErrCapacityExhausted is returned when the mapping table has no PIDs
	// left to allocate. The tree remains usable for reads and for mutations
	// that do not allocate new pages.
	ErrCapacityExhausted = errors.New("bwtree: mapping table capacity exhausted")

	// ErrNilComparator is returned by New when no key comparator is supplied.
	ErrNilComparator = errors.New("bwtree: key comparator is nil")

	// ErrNilValueEqual is returned by New when no value equality checker is
	// supplied.
	ErrNilValueEqual = errors.New("bwtree: value equality checker is nil")

	// ErrInvalidOptions is returned by New when option validation fails.
	ErrInvalidOptions = errors.New("bwtree: invalid options")
)
