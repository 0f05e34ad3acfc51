package types

import "errors"

var (
	// ErrInvalidID is returned for ids that cannot name a unit
	ErrInvalidID = errors.New("invalid unit id")

	// ErrAlreadyExists is returned when a target object is already present
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a unit, backend or volume is absent
	ErrNotFound = errors.New("not found")

	// ErrToolFailure is returned when an external rename or listing
	// command fails or does not have the expected effect
	ErrToolFailure = errors.New("external tool failure")

	// ErrUnverified is returned when a rename command succeeded but the
	// listing needed to confirm it could not be read. The rename stands.
	ErrUnverified = errors.New("rename not verified")

	// ErrUnsupportedKind is returned for backend kinds without a rename primitive
	ErrUnsupportedKind = errors.New("unsupported storage kind")

	// ErrMalformedName is returned for names that follow neither the disk
	// nor the backup archive naming pattern
	ErrMalformedName = errors.New("malformed volume name")

	// ErrNotOnNode is returned when the node configuration root is missing
	ErrNotOnNode = errors.New("not running on a hypervisor node")
)
