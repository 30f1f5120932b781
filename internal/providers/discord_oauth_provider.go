package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DiscordOAuthProvider drives the Discord OAuth code flow used for site
// login. Unlike Roblox, Discord takes client credentials in the form body.
type DiscordOAuthProvider struct {
	APIBaseURL   string // https://discord.com/api
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Client       *http.Client
}

func NewDiscordOAuthProvider(clientID, clientSecret, redirectURI string) *DiscordOAuthProvider {
	return &DiscordOAuthProvider{
		APIBaseURL:   "https://discord.com/api",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthorizeURL builds the redirect target for the site-login start route.
func (p *DiscordOAuthProvider) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

type discordTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ExchangeCode trades the callback code for an access token.
func (p *DiscordOAuthProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.APIBaseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ProviderError{Op: "discord.token", Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &ProviderError{Op: "discord.token", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError("discord.token", resp.StatusCode, "token exchange failed")
	}

	var tok discordTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &ProviderError{Op: "discord.token", Message: "failed to decode response", Err: err}
	}
	if tok.AccessToken == "" {
		return "", upstreamError("discord.token", resp.StatusCode, "empty access token")
	}
	return tok.AccessToken, nil
}

// DiscordUser is the identify-scope subset of /users/@me.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FetchMe reads the authenticated Discord user.
func (p *DiscordOAuthProvider) FetchMe(ctx context.Context, accessToken string) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, &ProviderError{Op: "discord.me", Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "discord.me", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("discord.me", resp.StatusCode, "user fetch failed")
	}

	var me DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, &ProviderError{Op: "discord.me", Message: "failed to decode response", Err: err}
	}
	if me.ID == "" {
		return nil, upstreamError("discord.me", resp.StatusCode, "empty user id")
	}
	return &me, nil
}
