// Package repository holds the SQL access code of the audit store.  Sentinel
// errors let higher layers tell a missing row from a failed query.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
