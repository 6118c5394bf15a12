package raster

import "errors"

var (
	ErrEmptyCrop     = errors.New("extent does not create a valid crop")
	ErrNoDataCrop    = errors.New("crop is entirely nodata")
	ErrOutOfBounds   = errors.New("window exceeds raster bounds")
	ErrShapeMismatch = errors.New("output shape does not match pixel buffer")
	ErrInvalidTile   = errors.New("invalid tile")
	ErrInvalidArray  = errors.New("invalid array file")
)
