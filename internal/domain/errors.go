package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("duplicate category name under same parent")
	ErrParentNotFound    = errors.New("parent category not found")
	ErrNotSiblings       = errors.New("ids are not siblings of the given parent")
	ErrFetch             = errors.New("image fetch failed")
	ErrProcessing        = errors.New("image processing failed")
	ErrModelRejected     = errors.New("model rejected the request")
)
