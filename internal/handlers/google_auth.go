package handlers

import (
	"net/http"
	"net/url"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/utils"
)

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	auth        *services.AuthService
	frontendURL string
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance.
// frontendURL receives the session token after the callback.
func NewGoogleAuthHandler(auth *services.AuthService, frontendURL string) *GoogleAuthHandler {
	return &GoogleAuthHandler{auth: auth, frontendURL: frontendURL}
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	start, err := h.auth.BeginLogin(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: start.AuthURL,
		State:   start.State,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Validates the state, signs the user in and redirects to the frontend with a token (or an error)
// @Tags authentication
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State parameter for CSRF protection"
// @Success 302 "Redirect to the frontend callback URL"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "frontend callback URL is misconfigured")
		return
	}
	params := target.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		params.Set("error", providerErr)
		target.RawQuery = params.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}

	res, err := h.auth.CompleteLogin(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		kind := services.KindOf(err)
		if kind == services.KindInternal {
			logging.FromContext(r.Context()).Error().Err(err).Msg("google sign-in failed")
		}
		params.Set("error", string(kind))
		target.RawQuery = params.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}

	params.Set("token", res.Token)
	target.RawQuery = params.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// Me returns the signed-in user
// @Summary Current user
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/me [get]
func (h *GoogleAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Me(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, userResponse(u))
}

// ClaimAdmin creates or promotes an admin with the bootstrap secret
// @Summary Claim admin
// @Description Disabled unless ADMIN_BOOTSTRAP_SECRET_HASH is configured
// @Tags authentication
// @Accept json
// @Produce json
// @Param payload body dto.ClaimAdminRequest true "Email and bootstrap secret"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/auth/claim-admin [post]
func (h *GoogleAuthHandler) ClaimAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.ClaimAdminRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	u, err := h.auth.ClaimAdmin(r.Context(), req.Email, req.Name, req.Secret)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, userResponse(u))
}
