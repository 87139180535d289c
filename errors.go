package dealcore

import "errors"

var (
	// ErrNotFound reports that the entity is absent from the system of
	// record. The absence is cached with a short-lived negative marker, so
	// repeat lookups within the negative TTL do not touch the loader.
	ErrNotFound = errors.New("dealcore: not found")

	// ErrLockUnavailable reports that the rebuild mutex stayed busy for the
	// whole bounded retry budget. Not an outage: another caller holds the
	// rebuild; retry later.
	ErrLockUnavailable = errors.New("dealcore: rebuild mutex unavailable")
)
