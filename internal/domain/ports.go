package domain

import "context"

type HotelRepository interface {
	// Save inserts when h.ID is zero and returns the row with its new ID;
	// otherwise it updates the existing row or returns ErrNotFound.
	Save(ctx context.Context, h Hotel) (Hotel, error)
	FindByID(ctx context.Context, id int64) (Hotel, error)
	FindAll(ctx context.Context, pr PageRequest) (Page, error)
	DeleteByID(ctx context.Context, id int64) error

	// Maintenance
	RedactTitle(ctx context.Context, id int64) error

	// InTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise,
	// including when fn panics.
	InTx(ctx context.Context, fn func(tx HotelRepository) error) error
}

// MetricsSink receives fire-and-forget counter increments. Implementations
// must be safe for concurrent use and must not block the caller.
type MetricsSink interface {
	Increment(name string)
}
