package handlers

import (
	"net/http"

	"GOTOURS_BACK-END/internal/dto"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/utils"
)

// UsersHandler manages the user directory and roles
type UsersHandler struct {
	users *services.UserService
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// ListUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/users [get]
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.UserListResponse{Success: true, Users: out})
}

// UpdateRole handles PATCH /api/users/{id}/role
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/{id}/role [patch]
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	u, err := h.users.UpdateRole(r.Context(), utils.ActorFromContext(r.Context()), id, req.Role)
	if err != nil {
		utils.WriteServiceError(w, r, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, userResponse(u))
}
