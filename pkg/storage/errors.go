package storage

import "errors"

var (
	// ErrStoreUnavailable is returned by every operation after Close, and by
	// persistence when the backing snapshot cannot be read. Callers are
	// expected to degrade to an explicit "no data" response.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrNodeNotFound is returned when a node id does not exist in the
	// current generation.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned by ReplaceGraph when two nodes in one
	// batch share the same (label, type) pair or the same id.
	ErrDuplicateNode = errors.New("duplicate node in batch")

	// ErrDuplicateEdge is returned by ReplaceGraph when two edges in one
	// batch share the same (source, target, type) triple or the same id.
	ErrDuplicateEdge = errors.New("duplicate edge in batch")

	// ErrMissingEndpoint is returned by ReplaceGraph when an edge references
	// a node id that is not part of the same batch.
	ErrMissingEndpoint = errors.New("edge endpoint not in batch")
)
