// Package repository implements data access against MySQL. Every query
// is parameterized; multi-statement sequences run inside a transaction
// so a crash between statements never leaves a half-applied change
// visible to concurrent readers. Sentinel errors let the service layer
// distinguish business failures from plain storage errors.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an account insert or email update
// collides with an existing account's email.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNameExists is returned when a room upload reuses a room name.
var ErrRoomNameExists = errors.New("room name already exists")

// ErrSeatTaken is returned when an order claims a seat that another
// order already holds for the same showing.
var ErrSeatTaken = errors.New("seat already taken for this showing")

// ErrBadReference is returned when an insert points at a movie or room
// that does not exist.
var ErrBadReference = errors.New("referenced entity not found")

// isDuplicate reports a MySQL duplicate-key violation (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isBadReference reports a MySQL foreign-key violation (error 1452).
func isBadReference(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1452")
}
