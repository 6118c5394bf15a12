package index

import "errors"

var (
	ErrUnknownSplitLabel = errors.New("unknown split label")
	ErrGroupEncoding     = errors.New("group ids are not dense")
	ErrUnknownImage      = errors.New("unknown image")
	ErrShapeMismatch     = errors.New("metadata shape mismatch")
	ErrInconsistentImage = errors.New("image rows disagree")
	ErrUnknownField      = errors.New("unknown metadata field")
)
