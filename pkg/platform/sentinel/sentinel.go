// Package sentinel names the storage facts that repositories report and
// services translate: the SML catalogue and the capability cache
// return these, possibly wrapped.
package sentinel

import "errors"

var (
	// ErrNotFound: no SML definition or record with that identity.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an SML definition with that id already exists.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: a shared cache could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
