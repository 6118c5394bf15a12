package tiles

import "errors"

var (
	ErrNoMatch     = errors.New("no tile matches grid key")
	ErrYearMissing = errors.New("no year token in tile path")
)
