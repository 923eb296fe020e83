// Package services implements the marketplace rules: booking capacity,
// tour ownership, review eligibility, role management and sign-in. Every
// rule is checked before anything is written; failures come back as *Error.
package services

import (
	"time"

	"github.com/google/uuid"
)

// BookingRecorder observes booking attempts by outcome.
type BookingRecorder interface {
	RecordBooking(result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBooking(string) {}

// Option customizes a service.
type Option func(*options)

type options struct {
	now      func() time.Time
	newID    func() uuid.UUID
	recorder BookingRecorder
}

func defaultOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		newID:    uuid.New,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides how new record ids are generated.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithBookingRecorder reports booking outcomes, typically to Prometheus.
func WithBookingRecorder(r BookingRecorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func (o options) utcNow() time.Time {
	return o.now().UTC()
}
