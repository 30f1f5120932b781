package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/providers"
)

const (
	userCacheTTL  = 10 * time.Minute
	thumbCacheTTL = 30 * time.Minute
	maxBatchIDs   = 100
)

// countUpstream records one external API call. Registry is optional so
// handler tests don't need the global Prometheus state.
func countUpstream(reg *metrics.MetricsRegistry, provider string, err error) {
	if reg == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	reg.UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

func parseIDList(raw string) ([]int64, bool) {
	if raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchIDs {
		return nil, false
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// RobloxUsersHandler proxies batch profile lookups through the cache so a
// dashboard full of avatars does not hammer the Roblox API.
func RobloxUsersHandler(
	users *providers.RobloxUsersProvider,
	cache *common.CacheService,
	reg *metrics.MetricsRegistry,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, ok := parseIDList(r.URL.Query().Get("ids"))
		if !ok {
			respondWithError(w, http.StatusBadRequest, "ids must be a comma-separated list of user ids")
			return
		}

		out := make([]dtos.RobloxUser, 0, len(ids))
		for _, id := range ids {
			key := "roblox:user:" + strconv.FormatInt(id, 10)
			val, err := cache.GetOrSet(key, userCacheTTL, func() (any, error) {
				user, err := users.GetUser(r.Context(), id)
				countUpstream(reg, "roblox_users", err)
				return user, err
			})
			if err != nil {
				logging.Warn("Roblox user lookup failed", "error", err, "user_id", id)
				continue
			}
			user, ok := val.(*providers.PublicUser)
			if !ok || user == nil {
				continue
			}
			out = append(out, dtos.RobloxUser{
				ID:          user.ID,
				Name:        user.Name,
				DisplayName: user.DisplayName,
			})
		}

		respondWithSuccess(w, http.StatusOK, &out)
	}
}

// RobloxThumbsHandler proxies batch headshot lookups. The whole batch is
// cached under one key; the dashboard always asks for the same roster.
func RobloxThumbsHandler(
	users *providers.RobloxUsersProvider,
	cache *common.CacheService,
	reg *metrics.MetricsRegistry,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawIDs := r.URL.Query().Get("ids")
		ids, ok := parseIDList(rawIDs)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "ids must be a comma-separated list of user ids")
			return
		}

		key := "roblox:thumbs:" + rawIDs
		val, err := cache.GetOrSet(key, thumbCacheTTL, func() (any, error) {
			thumbs, err := users.GetHeadshots(r.Context(), ids, "150x150", true)
			countUpstream(reg, "roblox_thumbnails", err)
			return thumbs, err
		})
		if err != nil {
			logging.Warn("Roblox thumbnail lookup failed", "error", err)
			respondWithServiceError(w, err)
			return
		}

		thumbs, _ := val.([]providers.Thumbnail)
		batch := dtos.ThumbBatch{Data: make([]dtos.RobloxThumb, 0, len(thumbs))}
		for _, t := range thumbs {
			batch.Data = append(batch.Data, dtos.RobloxThumb{
				TargetID: t.TargetID,
				State:    t.State,
				ImageURL: t.ImageURL,
			})
		}

		respondWithSuccess(w, http.StatusOK, &batch)
	}
}
