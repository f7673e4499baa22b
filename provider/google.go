package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth2 "golang.org/x/oauth2/google"

	"github.com/sketchmentor/core/domain"
	autherr "github.com/sketchmentor/core/errors"
)

// GoogleUserInfoEndpoint is overridable for tests.
var GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleBackend authenticates users against Google via the OAuth2
// authorization-code flow. The front end runs the redirect dance and
// hands the resulting code to SignIn; an empty code means the user
// closed the consent window without granting one.
type GoogleBackend struct {
	config *oauth2.Config
}

// NewGoogleBackend creates a Google backend with the standard
// openid/profile/email scopes.
func NewGoogleBackend(clientID, clientSecret, redirectURL string) *GoogleBackend {
	return &GoogleBackend{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: googleoauth2.Endpoint,
		},
	}
}

func (g *GoogleBackend) Name() string { return "google" }

// AuthCodeURL returns the consent URL the front end redirects to.
// state is the caller's CSRF token.
func (g *GoogleBackend) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Authenticate exchanges the authorization code and resolves the
// Google identity behind it.
func (g *GoogleBackend) Authenticate(ctx context.Context, req domain.SignInRequest) (*domain.Identity, error) {
	if req.AuthCode == "" {
		// Consent window closed without granting a code.
		return nil, autherr.ErrFlowCancelled
	}

	token, err := g.config.Exchange(ctx, req.AuthCode)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	return g.fetchIdentity(ctx, token)
}

// fetchIdentity retrieves the user info document for the token.
func (g *GoogleBackend) fetchIdentity(ctx context.Context, token *oauth2.Token) (*domain.Identity, error) {
	client := g.config.Client(ctx, token)
	resp, err := client.Get(GoogleUserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from Google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch user info from Google: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode Google user info: %w", err)
	}
	if raw.Sub == "" {
		return nil, fmt.Errorf("google user info is missing the subject id")
	}

	return &domain.Identity{
		ID:    "google:" + raw.Sub,
		Email: raw.Email,
		Name:  raw.Name,
	}, nil
}

var _ Backend = (*GoogleBackend)(nil)
