// Package authz holds the role and ownership predicates every mutating
// operation is gated on. The predicates are pure: they only look at the
// session actor and the entity being touched.
package authz

import (
	"github.com/google/uuid"

	"GOTOURS_BACK-END/internal/models"
)

// Actor is the identity taken from a verified session.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}

// Anonymous is the zero actor.
var Anonymous = Actor{}

// IsAuthenticated reports whether the actor came from a session.
func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == models.RoleAdmin
}

// IsStaff reports whether the actor may publish tours (ADMIN or GUIDE).
func (a Actor) IsStaff() bool {
	if !a.IsAuthenticated() {
		return false
	}
	return a.Role == models.RoleAdmin || a.Role == models.RoleGuide
}

// CanCreateTour gates tour creation.
func CanCreateTour(a Actor) bool {
	return a.IsStaff()
}

// CanManageTour gates tour update and delete: admins manage every tour,
// everyone else only their own.
func CanManageTour(a Actor, tour models.Tour) bool {
	if !a.IsAuthenticated() {
		return false
	}
	return a.IsAdmin() || a.ID == tour.CreatorID
}

// CanListOwnTours gates the "my tours" view.
func CanListOwnTours(a Actor) bool {
	return a.IsStaff()
}

// CanUploadImages gates object storage uploads.
func CanUploadImages(a Actor) bool {
	return a.IsStaff()
}

// CanManageRoles gates role changes and the user directory.
func CanManageRoles(a Actor) bool {
	return a.IsAdmin()
}

// OwnsBooking gates booking cancellation and detail views.
func OwnsBooking(a Actor, b models.Booking) bool {
	return a.IsAuthenticated() && a.ID == b.UserID
}
