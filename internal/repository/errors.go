// Package repository contains the data-access layer: one struct per
// aggregate, each holding the shared *sql.DB (or the Redis client for the
// session registry).  Sentinel errors defined here let handlers translate
// failure scenarios into HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when creating a user whose email is already
// registered.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist.  Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
