package storage

import (
	"context"
	"time"
)

// ServiceLease is held by the running service on the storage it flushes to.
const ServiceLease = "service"

// Leaser lets one process claim a slot storage for a while. The service keeps
// renewing its lease; tools writing to the same storage check for it first,
// otherwise the service's next flush would overwrite their changes.
type Leaser interface {
	// AcquireLease takes or renews the lease. It returns false when the lease
	// is held by another owner and not expired.
	AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	// ReleaseLease drops the lease, if owner still holds it.
	ReleaseLease(ctx context.Context, name, owner string) error
	// LeaseHolder returns the owner of an unexpired lease.
	LeaseHolder(ctx context.Context, name string) (owner string, held bool, err error)
}
