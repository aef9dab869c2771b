package assignmentdb

import "errors"

// ErrNotFound indicates the requested assignment does not exist.
var ErrNotFound = errors.New("assignment not found")
