package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSeatTaken is returned by the conditional reservation insert
	// when an active hold already blocks the (trip, seat) pair.
	ErrSeatTaken = errors.New("seat already reserved")
)
