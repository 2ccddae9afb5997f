package store

import "errors"

// ErrNotFound is returned by every store when the requested row does not
// exist. Callers dispatch on it with errors.Is.
var ErrNotFound = errors.New("not found")
