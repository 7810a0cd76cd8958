package progress

import "errors"

var (
	// ErrStorageRead marks a missing or corrupt storage slot. It is logged and
	// replaced by the slot default, never returned from Load.
	ErrStorageRead = errors.New("storage read error")
	// ErrStorageWrite marks a failed flush; the in-memory state stays authoritative.
	ErrStorageWrite = errors.New("storage write error")
	// ErrValidation rejects out-of-range input at the setter; state is unchanged.
	ErrValidation = errors.New("validation error")
	// ErrSlotNotFound is returned by slot storages for keys never written.
	ErrSlotNotFound = errors.New("slot not found")
)
