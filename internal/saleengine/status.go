package saleengine

import (
	"errors"
	"strings"
)

// Status is the lifecycle state of a sale.
type Status string

const (
	// StatusPending is the initial state of every sale.
	StatusPending Status = "PENDING"
	// StatusCompleted marks a finished sale.
	StatusCompleted Status = "COMPLETED"
	// StatusCanceled marks a canceled sale.
	StatusCanceled Status = "CANCELED"
)

// ErrUnknownStatus is returned when a status string is not one of the known states.
var ErrUnknownStatus = errors.New("unknown sale status")

// ParseStatus validates and normalises a status string.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCanceled:
		return StatusCanceled, nil
	}
	return "", ErrUnknownStatus
}

// CanTransition reports whether a sale may move between the two states.
// Every pairwise transition is allowed; the machine keeps no history and does
// not enforce a forward-only workflow.
func CanTransition(from, to Status) bool {
	_, errFrom := ParseStatus(string(from))
	_, errTo := ParseStatus(string(to))
	return errFrom == nil && errTo == nil
}
