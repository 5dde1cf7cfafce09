package domain

import "errors"

// ErrNotFound is wrapped by collaborators when a requested record does not exist.
var ErrNotFound = errors.New("not found")
