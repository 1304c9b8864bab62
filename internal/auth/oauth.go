package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"veganbite/internal/config"
	"veganbite/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrUnverifiedEmail = errors.New("google account email is not verified")

// GoogleUser is the subset of the Google profile the service stores.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IdentityProvider turns an authorization code into a Google identity.
type IdentityProvider interface {
	AuthCodeURL(audience domain.PrincipalKind, state string) string
	Exchange(ctx context.Context, audience domain.PrincipalKind, code string) (*GoogleUser, error)
}

// GoogleOAuth implements IdentityProvider with separate redirect URLs for the
// storefront and the admin console.
type GoogleOAuth struct {
	configs     map[domain.PrincipalKind]*oauth2.Config
	userInfoURL string
}

// NewGoogleOAuth builds the customer and admin OAuth2 configurations.
func NewGoogleOAuth(cfg config.OAuthConfig) *GoogleOAuth {
	base := func(redirect string) *oauth2.Config {
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  redirect,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return &GoogleOAuth{
		configs: map[domain.PrincipalKind]*oauth2.Config{
			domain.PrincipalCustomer: base(cfg.RedirectURL),
			domain.PrincipalAdmin:    base(cfg.AdminRedirectURL),
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleOAuth) AuthCodeURL(audience domain.PrincipalKind, state string) string {
	return g.configs[audience].AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleOAuth) Exchange(ctx context.Context, audience domain.PrincipalKind, code string) (*GoogleUser, error) {
	cfg, ok := g.configs[audience]
	if !ok {
		return nil, fmt.Errorf("unknown oauth audience %q", audience)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("google userinfo returned %d: %s", resp.StatusCode, body)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode google profile: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("google profile has no id")
	}
	if !user.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}
	return &user, nil
}
