package domain

import "errors"

var (
	// ErrBackendUnavailable indicates the upstream reputation backend could
	// not be reached or answered non-2xx.
	ErrBackendUnavailable = errors.New("reputation backend unavailable")

	// ErrStaleSnapshot indicates an aggregation ran against inputs that were
	// invalidated before the result could be committed.
	ErrStaleSnapshot = errors.New("snapshot invalidated during aggregation")

	// ErrNoPrincipal indicates actor metadata without a principal name.
	ErrNoPrincipal = errors.New("no principal entity configured")
)
