package ebb

import "errors"

// Errors reported by the registry and the persistence codec. They are
// wrapped with context; test for them with errors.Is.
var (
	// ErrUnregisteredType means a stream names a type ID that no factory
	// is registered for.
	ErrUnregisteredType = errors.New("ebb: unregistered node type")

	// ErrUnsupportedType means a node's dynamic type cannot be recreated by
	// a factory (it is not a pointer to a struct).
	ErrUnsupportedType = errors.New("ebb: node type cannot be persisted")

	// ErrTypeCollision means two distinct type names hash to the same ID.
	ErrTypeCollision = errors.New("ebb: type ID collision")

	// ErrBadMagic means the stream does not start with the tree header.
	ErrBadMagic = errors.New("ebb: not a node tree stream")

	// ErrUnsupportedVersion means the stream header names a format version
	// this package cannot read.
	ErrUnsupportedVersion = errors.New("ebb: unsupported stream version")

	// ErrTruncated means the stream ended inside a header, record or payload.
	ErrTruncated = errors.New("ebb: truncated stream")

	// ErrTooLarge means a count, length or nesting depth exceeds its limit.
	ErrTooLarge = errors.New("ebb: stream limit exceeded")

	// ErrTrailingPayload means a node payload was not consumed exactly by
	// the node's loader.
	ErrTrailingPayload = errors.New("ebb: payload not fully consumed")
)
