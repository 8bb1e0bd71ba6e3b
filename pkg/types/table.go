package types

import "context"

// TableService is the managed table API the apply driver talks to.
// Implementations report a pre-existing table on create with an error
// wrapping ErrAlreadyExists and a missing table on delete with an error
// wrapping ErrNotFound; the driver treats both as success.
type TableService interface {
	// CreateTable creates the table described by req.
	CreateTable(ctx context.Context, req CreateTableRequest) error

	// DeleteTable removes the table addressed by req.
	DeleteTable(ctx context.Context, req DeleteTableRequest) error
}
