package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RobloxOAuthProvider drives the Roblox OAuth code flow and group role
// lookup used during verification.
type RobloxOAuthProvider struct {
	AuthBaseURL   string // https://apis.roblox.com/oauth/v1
	GroupsBaseURL string // https://groups.roblox.com
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	Client        *http.Client
}

func NewRobloxOAuthProvider(clientID, clientSecret, redirectURI string) *RobloxOAuthProvider {
	return &RobloxOAuthProvider{
		AuthBaseURL:   "https://apis.roblox.com/oauth/v1",
		GroupsBaseURL: "https://groups.roblox.com",
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RedirectURI:   redirectURI,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthorizeURL builds the redirect target for /auth/roblox.
func (p *RobloxOAuthProvider) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("scope", "openid profile")
	q.Set("state", state)
	return p.AuthBaseURL + "/authorize?" + q.Encode()
}

type robloxTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ExchangeCode trades the callback code for an access token. Client
// credentials go in the Basic header, matching Roblox's token endpoint.
func (p *RobloxOAuthProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.AuthBaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ProviderError{Op: "roblox.token", Message: "failed to create request", Err: err}
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.ClientID + ":" + p.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &ProviderError{Op: "roblox.token", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError("roblox.token", resp.StatusCode, "token exchange failed")
	}

	var tok robloxTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &ProviderError{Op: "roblox.token", Message: "failed to decode response", Err: err}
	}
	if tok.AccessToken == "" {
		return "", upstreamError("roblox.token", resp.StatusCode, "empty access token")
	}
	return tok.AccessToken, nil
}

// RobloxProfile is the OIDC userinfo subset the verification flow needs.
type RobloxProfile struct {
	UserID      int64
	Username    string
	DisplayName string
}

type robloxUserinfo struct {
	Sub               string `json:"sub"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// FetchProfile reads the OIDC userinfo for the access token.
func (p *RobloxOAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*RobloxProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.AuthBaseURL+"/userinfo", nil)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.userinfo", Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.userinfo", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("roblox.userinfo", resp.StatusCode, "userinfo fetch failed")
	}

	var info robloxUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &ProviderError{Op: "roblox.userinfo", Message: "failed to decode response", Err: err}
	}

	userID, err := strconv.ParseInt(info.Sub, 10, 64)
	if err != nil || userID == 0 {
		return nil, upstreamError("roblox.userinfo", resp.StatusCode, "could not read subject id")
	}

	username := info.Name
	if username == "" {
		username = info.PreferredUsername
	}
	if username == "" {
		username = fmt.Sprintf("Roblox_%d", userID)
	}

	return &RobloxProfile{
		UserID:      userID,
		Username:    username,
		DisplayName: username,
	}, nil
}

// GroupRole is the member's role in one group.
type GroupRole struct {
	GroupID int64
	Rank    int
	Name    string
}

type groupRolesResponse struct {
	Data []struct {
		Group struct {
			ID int64 `json:"id"`
		} `json:"group"`
		Role struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			Rank int    `json:"rank"`
		} `json:"role"`
	} `json:"data"`
}

// FetchGroupRole returns the member's role in groupID, or rank 0 / "Guest"
// when the user is not in the group.
func (p *RobloxOAuthProvider) FetchGroupRole(ctx context.Context, userID, groupID int64) (*GroupRole, error) {
	endpoint := fmt.Sprintf("%s/v2/users/%d/groups/roles", p.GroupsBaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.groups", Message: "failed to create request", Err: err}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.groups", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("roblox.groups", resp.StatusCode, "group roles fetch failed")
	}

	var roles groupRolesResponse
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		return nil, &ProviderError{Op: "roblox.groups", Message: "failed to decode response", Err: err}
	}

	for _, entry := range roles.Data {
		if entry.Group.ID == groupID {
			return &GroupRole{GroupID: groupID, Rank: entry.Role.Rank, Name: entry.Role.Name}, nil
		}
	}
	return &GroupRole{GroupID: groupID, Rank: 0, Name: "Guest"}, nil
}
