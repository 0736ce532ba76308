package machines

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrCodeTaken  = errors.New("machine with this code already exists")
	ErrNotFound   = errors.New("machine not found")
)
