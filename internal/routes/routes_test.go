package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GOTOURS_BACK-END/internal/config"
	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/handlers"
	"GOTOURS_BACK-END/internal/identity"
	"GOTOURS_BACK-END/internal/middleware"
	"GOTOURS_BACK-END/internal/models"
	"GOTOURS_BACK-END/internal/oauthstate"
	"GOTOURS_BACK-END/internal/objectstore"
	"GOTOURS_BACK-END/internal/routes"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/store/memory"
)

const frontendCallback = "http://frontend.test/auth/callback"

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (stubProvider) Exchange(ctx context.Context, code string) (identity.UserInfo, error) {
	if code != "good-code" {
		return identity.UserInfo{}, errors.New("bad code")
	}
	return identity.UserInfo{Email: "walker@example.com", Name: "Walker", VerifiedEmail: true}, nil
}

type app struct {
	t      *testing.T
	srv    *httptest.Server
	store  *memory.Store
	jwtCfg *config.JWTConfig
}

func newApp(t *testing.T) *app {
	t.Helper()
	st := memory.New()
	jwtCfg := &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour, Issuer: "gotours-test"}

	images, err := objectstore.NewDiskStore(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	tourSvc := services.NewTourService(st)
	bookingSvc := services.NewBookingService(st)
	authSvc := services.NewAuthService(st, stubProvider{}, oauthstate.NewMemoryStore(),
		middleware.NewTokenIssuer(jwtCfg), services.AuthConfig{})

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, routes.Handlers{
		Health:   handlers.NewHealthHandler(st),
		Auth:     handlers.NewGoogleAuthHandler(authSvc, frontendCallback),
		Tours:    handlers.NewToursHandler(tourSvc, bookingSvc),
		Bookings: handlers.NewBookingsHandler(bookingSvc),
		Reviews:  handlers.NewReviewsHandler(services.NewReviewService(st)),
		Users:    handlers.NewUsersHandler(services.NewUserService(st)),
		Upload:   handlers.NewUploadHandler(images, 1<<20),
		Uploads:  images.Handler("/uploads/"),
	}, jwtCfg, st)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &app{t: t, srv: srv, store: st, jwtCfg: jwtCfg}
}

// user seeds a user and returns a bearer token for them.
func (a *app) user(name string, role models.Role) (models.User, string) {
	a.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(a.t, a.store.CreateUser(context.Background(), u))
	token, err := middleware.GenerateToken(u, a.jwtCfg)
	require.NoError(a.t, err)
	return u, token
}

func (a *app) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *app) createTour(token string, maxParticipants int, date time.Time) dto.TourResponse {
	a.t.Helper()
	var tour dto.TourResponse
	status := a.do(http.MethodPost, "/api/tours", token, dto.CreateTourRequest{
		Title:           "Harbour at dusk",
		Description:     "<p>Boats and lights</p>",
		ImageURL:        "https://example.com/harbour.jpg",
		Price:           40,
		Duration:        2,
		Date:            date.UTC().Format(time.RFC3339),
		MaxParticipants: maxParticipants,
	}, &tour)
	require.Equal(a.t, http.StatusCreated, status)
	return tour
}

func (a *app) availability(tourID string) dto.AvailabilityResponse {
	a.t.Helper()
	var avail dto.AvailabilityResponse
	require.Equal(a.t, http.StatusOK, a.do(http.MethodGet, "/api/tours/"+tourID+"/availability", "", nil, &avail))
	return avail
}

func TestBookingScenarioOverHTTP(t *testing.T) {
	a := newApp(t)
	_, guide := a.user("guide", models.RoleGuide)
	_, ua := a.user("ana", models.RoleUser)
	_, ub := a.user("ben", models.RoleUser)
	_, uc := a.user("cho", models.RoleUser)

	tour := a.createTour(guide, 2, time.Now().Add(72*time.Hour))
	assert.Equal(t, 2, tour.AvailableSpots)
	assert.Equal(t, "guide", tour.Creator.Name)

	var booked dto.CreateBookingResponse
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", ua, nil, &booked))
	assert.NotEmpty(t, booked.BookingID)
	assert.Equal(t, 1, a.availability(tour.ID).AvailableSpots)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", ub, nil, nil))
	assert.Equal(t, 0, a.availability(tour.ID).AvailableSpots)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", uc, nil, &errResp))
	assert.Equal(t, string(services.ReasonFullyBooked), errResp.Code)

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", ua, nil, &errResp))
	assert.Equal(t, string(services.ReasonAlreadyBooked), errResp.Code)

	// only the owner can cancel
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/api/bookings/"+booked.BookingID, ub, nil, nil))
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/bookings/"+booked.BookingID, ua, nil, nil))
	assert.Equal(t, 1, a.availability(tour.ID).AvailableSpots)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", uc, nil, nil))
	avail := a.availability(tour.ID)
	assert.Equal(t, 0, avail.AvailableSpots)
	assert.Equal(t, 2, avail.BookedCount)

	var check dto.CheckBookingResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/tours/"+tour.ID+"/check-booking", ua, nil, &check))
	assert.False(t, check.HasBooked)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/tours/"+tour.ID+"/check-booking", uc, nil, &check))
	assert.True(t, check.HasBooked)

	var mine dto.BookingListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/bookings", uc, nil, &mine))
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, tour.ID, mine.Bookings[0].Tour.ID)
}

func TestAuthAndRoleGating(t *testing.T) {
	a := newApp(t)
	_, owner := a.user("owner", models.RoleGuide)
	_, otherGuide := a.user("other", models.RoleGuide)
	_, admin := a.user("admin", models.RoleAdmin)
	plain, user := a.user("plain", models.RoleUser)

	tour := a.createTour(owner, 5, time.Now().Add(24*time.Hour))

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/bookings", "not-a-token", nil, nil))
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/tours", user, dto.CreateTourRequest{Title: "x"}, nil))

	title := "Harbour at night"
	patch := dto.UpdateTourRequest{Title: &title}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPatch, "/api/tours/"+tour.ID, otherGuide, patch, nil))
	var updated dto.TourResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodPatch, "/api/tours/"+tour.ID, admin, patch, &updated))
	assert.Equal(t, title, updated.Title)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/api/tours/"+tour.ID, otherGuide, nil, nil))
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/tours/"+tour.ID, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/tours/"+tour.ID, "", nil, nil))

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", user, nil, nil))
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPatch, "/api/users/"+plain.ID.String()+"/role", user, dto.UpdateRoleRequest{Role: "ADMIN"}, nil))

	var promoted dto.UserResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodPatch, "/api/users/"+plain.ID.String()+"/role", admin, dto.UpdateRoleRequest{Role: "GUIDE"}, &promoted))
	assert.Equal(t, "GUIDE", promoted.Role)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPatch, "/api/users/"+plain.ID.String()+"/role", admin, dto.UpdateRoleRequest{Role: "KING"}, nil))

	var users dto.UserListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/users", admin, nil, &users))
	assert.Len(t, users.Users, 4)
}

func TestRoleChangesApplyToIssuedTokens(t *testing.T) {
	a := newApp(t)
	_, owner := a.user("owner", models.RoleGuide)
	_, root := a.user("root", models.RoleAdmin)
	deputy, deputyToken := a.user("deputy", models.RoleAdmin)

	tour := a.createTour(owner, 5, time.Now().Add(24*time.Hour))

	var demoted dto.UserResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodPatch, "/api/users/"+deputy.ID.String()+"/role", root, dto.UpdateRoleRequest{Role: "USER"}, &demoted))
	require.Equal(t, "USER", demoted.Role)

	// the token still says ADMIN
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/api/tours/"+tour.ID, deputyToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/users", deputyToken, nil, nil))

	var me dto.UserResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/auth/me", deputyToken, nil, &me))
	assert.Equal(t, "USER", me.Role)

	t.Run("token of an unknown user", func(t *testing.T) {
		ghost := models.User{ID: uuid.New(), Email: "ghost@example.com", Role: models.RoleAdmin}
		token, err := middleware.GenerateToken(ghost, a.jwtCfg)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users", token, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/tours/"+tour.ID+"/book", token, nil, nil))
	})
}

func TestCreateBookingByBody(t *testing.T) {
	a := newApp(t)
	_, guide := a.user("guide", models.RoleGuide)
	_, walker := a.user("walker", models.RoleUser)
	_, other := a.user("other", models.RoleUser)
	tour := a.createTour(guide, 2, time.Now().Add(48*time.Hour))

	one, two := 1, 2

	t.Run("participants other than one", func(t *testing.T) {
		for _, n := range []int{0, 2, -1} {
			var errResp dto.ErrorResponse
			status := a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: tour.ID, Participants: &n}, &errResp)
			assert.Equal(t, http.StatusBadRequest, status, "participants=%d", n)
			assert.Contains(t, errResp.Fields, "participants")
		}
		assert.Equal(t, 2, a.availability(tour.ID).AvailableSpots)
	})

	t.Run("bad tour ids", func(t *testing.T) {
		var errResp dto.ErrorResponse
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{Participants: &one}, &errResp))
		assert.Contains(t, errResp.Fields, "tourId")
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: "nope"}, nil))
		assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: uuid.NewString()}, nil))
	})

	t.Run("books one spot", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/bookings", "", dto.CreateBookingRequest{TourID: tour.ID}, nil))

		var booked dto.CreateBookingResponse
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: tour.ID, Participants: &one}, &booked))
		assert.NotEmpty(t, booked.BookingID)
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/bookings", other, dto.CreateBookingRequest{TourID: tour.ID}, nil))
		assert.Equal(t, 0, a.availability(tour.ID).AvailableSpots)

		var errResp dto.ErrorResponse
		assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: tour.ID, Participants: &one}, &errResp))
		assert.Equal(t, string(services.ReasonAlreadyBooked), errResp.Code)
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/bookings", walker, dto.CreateBookingRequest{TourID: tour.ID, Participants: &two}, nil))
	})
}

func TestBadInputsAndMissingResources(t *testing.T) {
	a := newApp(t)
	_, guide := a.user("guide", models.RoleGuide)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/tours/not-a-uuid", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/tours/"+uuid.NewString()+"/availability", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/tours/"+uuid.NewString()+"/book", guide, nil, nil))
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/tours?limit=-1", "", nil, nil))

	var errResp dto.ErrorResponse
	status := a.do(http.MethodPost, "/api/tours", guide, dto.CreateTourRequest{Title: "Only a title"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Fields, "maxParticipants")
	assert.Contains(t, errResp.Fields, "date")
}

func TestReviewFlowOverHTTP(t *testing.T) {
	a := newApp(t)
	guideUser, guide := a.user("guide", models.RoleGuide)
	_, walker := a.user("walker", models.RoleUser)

	past := a.createTour(guide, 3, time.Now().Add(-48*time.Hour))
	future := a.createTour(guide, 3, time.Now().Add(48*time.Hour))
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/tours/"+past.ID+"/book", walker, nil, nil))
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/tours/"+future.ID+"/book", walker, nil, nil))

	var can dto.CanReviewResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/tours/"+future.ID+"/can-review", walker, nil, &can))
	assert.False(t, can.CanReview)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/tours/"+past.ID+"/can-review", walker, nil, &can))
	assert.True(t, can.CanReview)

	var errResp dto.ErrorResponse
	status := a.do(http.MethodPost, "/api/reviews", walker, dto.CreateReviewRequest{
		TourID: future.ID, UserID: guideUser.ID.String(), Rating: 5, Comment: "Soon",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(services.ReasonTourNotYetCompleted), errResp.Code)

	review := dto.CreateReviewRequest{TourID: past.ID, UserID: guideUser.ID.String(), Rating: 4, Comment: "Lovely evening"}
	var created dto.ReviewResponse
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/reviews", walker, review, &created))
	assert.Equal(t, 4, created.Rating)

	errResp = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/reviews", walker, review, &errResp))
	assert.Equal(t, string(services.ReasonAlreadyReviewed), errResp.Code)

	var avg dto.AverageRatingResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/users/"+guideUser.ID.String()+"/average-rating", "", nil, &avg))
	require.NotNil(t, avg.AverageRating)
	assert.InDelta(t, 4.0, *avg.AverageRating, 1e-9)
	assert.Equal(t, 1, avg.TotalReviews)

	var reviews []dto.GuideReviewResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/guides/"+guideUser.ID.String()+"/reviews", "", nil, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "walker", reviews[0].ReviewerName)
}

func TestGoogleSignInFlow(t *testing.T) {
	a := newApp(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	var start dto.GoogleLoginResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/auth/google/login", "", nil, &start))
	require.NotEmpty(t, start.State)
	assert.Contains(t, start.AuthURL, start.State)

	callback := func(state, code string) url.Values {
		t.Helper()
		resp, err := client.Get(a.srv.URL + "/api/auth/google/callback?" + url.Values{"state": {state}, "code": {code}}.Encode())
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		return loc.Query()
	}

	q := callback(start.State, "good-code")
	token := q.Get("token")
	require.NotEmpty(t, token)

	var me dto.UserResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/auth/me", token, nil, &me))
	assert.Equal(t, "walker@example.com", me.Email)
	assert.Equal(t, "USER", me.Role)

	// states are single use
	q = callback(start.State, "good-code")
	assert.Equal(t, string(services.KindUnauthorized), q.Get("error"))
	assert.Empty(t, q.Get("token"))
}

func TestHealthAndRoot(t *testing.T) {
	a := newApp(t)

	var health dto.HealthResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil, &health))
	assert.Equal(t, "ok", health.Status)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/readyz", "", nil, &health))
	assert.Equal(t, "ready", health.Status)

	resp, err := http.Get(a.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(a.srv.URL + "/no-such-page")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
