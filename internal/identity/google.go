// Package identity talks to the external sign-in provider.
package identity

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"GOTOURS_BACK-END/internal/config"
)

// UserInfo is the profile returned by the provider after sign-in.
type UserInfo struct {
	Email         string
	Name          string
	Picture       string
	VerifiedEmail bool
}

// GoogleProvider signs users in with Google OAuth.
type GoogleProvider struct {
	oauth2Config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider from the OAuth configuration.
func NewGoogleProvider(cfg config.GoogleOAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthCodeURL returns the consent page URL for the given CSRF state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token and fetches the
// signed-in user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (UserInfo, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return UserInfo{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	svc, err := googleOAuth2.NewService(ctx, option.WithTokenSource(p.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return UserInfo{}, fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return UserInfo{}, fmt.Errorf("get user info: %w", err)
	}

	verified := false
	if info.VerifiedEmail != nil {
		verified = *info.VerifiedEmail
	}
	return UserInfo{
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		VerifiedEmail: verified,
	}, nil
}
