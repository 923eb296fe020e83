package services

import (
	"errors"
	"fmt"

	"GOTOURS_BACK-END/internal/store"
)

// Kind classifies a service failure.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindInternal     Kind = "internal"
)

// Reason narrows a Conflict (and a few other kinds) to a specific rule.
type Reason string

const (
	ReasonAlreadyBooked         Reason = "ALREADY_BOOKED"
	ReasonFullyBooked           Reason = "FULLY_BOOKED"
	ReasonAlreadyReviewed       Reason = "ALREADY_REVIEWED"
	ReasonTourNotYetCompleted   Reason = "TOUR_NOT_YET_COMPLETED"
	ReasonCapacityBelowBookings Reason = "CAPACITY_BELOW_BOOKINGS"
	ReasonNotBooked             Reason = "NOT_BOOKED"
	ReasonGuideMismatch         Reason = "GUIDE_MISMATCH"
)

// Error is the error type returned by every service operation.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	// Fields holds per-field validation messages.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// ReasonOf returns the Reason of err, if any.
func ReasonOf(err error) Reason {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func conflict(reason Reason, msg string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// validationErrors collects field messages; nil when nothing failed.
type validationErrors map[string]string

func (v validationErrors) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: v}
}

func invalid(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: map[string]string{field: msg}}
}

// fromStore translates persistence errors. what names the entity for
// ErrNotFound; ErrUserNotFound always names the user. op describes the
// operation for internal failures.
func fromStore(err error, what, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUserNotFound):
		return notFound("user")
	case errors.Is(err, store.ErrNotFound):
		return notFound(what)
	case errors.Is(err, store.ErrAlreadyBooked):
		return conflict(ReasonAlreadyBooked, "you have already booked this tour")
	case errors.Is(err, store.ErrFullyBooked):
		return conflict(ReasonFullyBooked, "this tour is fully booked")
	case errors.Is(err, store.ErrAlreadyReviewed):
		return conflict(ReasonAlreadyReviewed, "you have already reviewed this tour")
	case errors.Is(err, store.ErrCapacityBelowBookings):
		return conflict(ReasonCapacityBelowBookings, "max participants cannot be lower than the current number of bookings")
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return internal("failed to "+op, err)
}
