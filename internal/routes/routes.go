package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"GOTOURS_BACK-END/internal/config"
	"GOTOURS_BACK-END/internal/handlers"
	"GOTOURS_BACK-END/internal/middleware"
)

// Handlers groups everything the route table dispatches to
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.GoogleAuthHandler
	Tours    *handlers.ToursHandler
	Bookings *handlers.BookingsHandler
	Reviews  *handlers.ReviewsHandler
	Users    *handlers.UsersHandler
	Upload   *handlers.UploadHandler

	// Optional
	Metrics http.Handler
	Uploads http.Handler // serves disk-stored images under /uploads/
	Swagger bool
}

// SetupRoutes configures all application routes. users resolves the
// current role of the token holder on authenticated routes.
func SetupRoutes(mux *http.ServeMux, h Handlers, jwtCfg *config.JWTConfig, users middleware.UserLookup) {
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(next, jwtCfg, users)
	}

	// Health check routes
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)

	// Authentication routes
	mux.HandleFunc("GET /api/auth/google/login", h.Auth.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", h.Auth.GoogleCallback)
	mux.HandleFunc("GET /api/auth/me", auth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/claim-admin", h.Auth.ClaimAdmin)

	// Tours
	mux.HandleFunc("GET /api/tours", h.Tours.ListTours)
	mux.HandleFunc("POST /api/tours", auth(h.Tours.CreateTour))
	mux.HandleFunc("GET /api/tours/mine", auth(h.Tours.MyTours))
	mux.HandleFunc("GET /api/tours/{id}", h.Tours.GetTour)
	mux.HandleFunc("PATCH /api/tours/{id}", auth(h.Tours.UpdateTour))
	mux.HandleFunc("PUT /api/tours/{id}", auth(h.Tours.UpdateTour))
	mux.HandleFunc("DELETE /api/tours/{id}", auth(h.Tours.DeleteTour))
	mux.HandleFunc("GET /api/tours/{id}/availability", h.Tours.Availability)

	// Bookings
	mux.HandleFunc("POST /api/tours/{id}/book", auth(h.Bookings.BookTour))
	mux.HandleFunc("POST /api/bookings", auth(h.Bookings.CreateBooking))
	mux.HandleFunc("GET /api/tours/{id}/check-booking", auth(h.Bookings.CheckBooking))
	mux.HandleFunc("GET /api/bookings", auth(h.Bookings.ListBookings))
	mux.HandleFunc("GET /api/bookings/{id}", auth(h.Bookings.GetBooking))
	mux.HandleFunc("DELETE /api/bookings/{id}", auth(h.Bookings.CancelBooking))

	// Reviews and guide profiles
	mux.HandleFunc("POST /api/reviews", auth(h.Reviews.CreateReview))
	mux.HandleFunc("GET /api/tours/{id}/can-review", auth(h.Reviews.CanReview))
	mux.HandleFunc("GET /api/guides/{id}/reviews", h.Reviews.GuideReviews)
	mux.HandleFunc("GET /api/users/{id}/profile", h.Reviews.GuideProfile)
	mux.HandleFunc("GET /api/users/{id}/average-rating", h.Reviews.AverageRating)

	// User administration
	mux.HandleFunc("GET /api/users", auth(h.Users.ListUsers))
	mux.HandleFunc("PATCH /api/users/{id}/role", auth(h.Users.UpdateRole))

	// Images
	mux.HandleFunc("POST /api/upload", auth(h.Upload.Upload))
	if h.Uploads != nil {
		mux.Handle("GET /uploads/", h.Uploads)
	}

	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
	if h.Swagger {
		mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	}

	// Root route
	mux.HandleFunc("GET /{$}", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("GoTours backend is running."))
}
