package dto

// GoogleLoginResponse represents the response for Google login initiation
type GoogleLoginResponse struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// ClaimAdminRequest is the admin bootstrap payload
type ClaimAdminRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Secret string `json:"secret"`
}
