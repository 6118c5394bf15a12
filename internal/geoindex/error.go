package geoindex

import "errors"

var ErrPatternMismatch = errors.New("grid key pattern mismatch")
