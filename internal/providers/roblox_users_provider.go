package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RobloxUsersProvider fetches public profile and avatar data used to
// enrich quota rows and back the dashboard's batch proxy.
type RobloxUsersProvider struct {
	UsersBaseURL  string // https://users.roblox.com
	ThumbsBaseURL string // https://thumbnails.roblox.com
	Client        *http.Client
}

func NewRobloxUsersProvider() *RobloxUsersProvider {
	return &RobloxUsersProvider{
		UsersBaseURL:  "https://users.roblox.com",
		ThumbsBaseURL: "https://thumbnails.roblox.com",
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PublicUser is the public profile subset the dashboard displays.
type PublicUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// GetUser fetches one public profile.
func (p *RobloxUsersProvider) GetUser(ctx context.Context, userID int64) (*PublicUser, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%d", p.UsersBaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.users", Message: "failed to create request", Err: err}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.users", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("roblox.users", resp.StatusCode, "user fetch failed")
	}

	var user PublicUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &ProviderError{Op: "roblox.users", Message: "failed to decode response", Err: err}
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Name
	}
	return &user, nil
}

// Thumbnail is one avatar headshot entry.
type Thumbnail struct {
	TargetID int64  `json:"targetId"`
	State    string `json:"state"`
	ImageURL string `json:"imageUrl"`
}

type thumbBatchResponse struct {
	Data []Thumbnail `json:"data"`
}

// GetHeadshots fetches avatar headshots for a batch of user ids.
func (p *RobloxUsersProvider) GetHeadshots(ctx context.Context, userIDs []int64, size string, circular bool) ([]Thumbnail, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	q := url.Values{}
	q.Set("userIds", strings.Join(ids, ","))
	q.Set("size", size)
	q.Set("format", "Png")
	q.Set("isCircular", strconv.FormatBool(circular))

	endpoint := p.ThumbsBaseURL + "/v1/users/avatar-headshot?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.thumbs", Message: "failed to create request", Err: err}
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "roblox.thumbs", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("roblox.thumbs", resp.StatusCode, "thumbnail fetch failed")
	}

	var batch thumbBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, &ProviderError{Op: "roblox.thumbs", Message: "failed to decode response", Err: err}
	}
	return batch.Data, nil
}
