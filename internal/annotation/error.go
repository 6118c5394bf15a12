package annotation

import "errors"

var (
	ErrMissingColumn   = errors.New("annotation table is missing a required column")
	ErrInvalidGeometry = errors.New("invalid annotation geometry")
	ErrInvalidValue    = errors.New("invalid annotation value")
	ErrEmptyTable      = errors.New("annotation table has no rows")
)
