package schema

import "github.com/ansel1/merry"

var (
	// ErrConflict is returned when a table or index to be created already exists,
	// and wrapped by the data layer for unique key violations.
	ErrConflict = merry.New("schema conflict")

	// ErrMissing is returned when a table to be dropped does not exist.
	ErrMissing = merry.New("schema missing")
)
