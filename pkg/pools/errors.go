package pools

import "errors"

var (
	// ErrInvalidInitCount is returned when a pool is built with a negative
	// initial reservoir size.
	ErrInvalidInitCount = errors.New("init count must be non-negative")

	// ErrInvalidGrowthCount is returned when a pool is built with a growth
	// batch smaller than one. Growth could never serve an item.
	ErrInvalidGrowthCount = errors.New("growth count must be at least 1")

	// ErrPoolTornDown is the panic value (wrapped) for any operation on a
	// pool after Teardown.
	ErrPoolTornDown = errors.New("pool has been torn down")
)
