package api

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/common/clock"
	"surfari/boardwalk/internal/config"
	"surfari/boardwalk/internal/db"
	"surfari/boardwalk/internal/db/repositories"
	"surfari/boardwalk/internal/metrics"
	"surfari/boardwalk/internal/providers"
	"surfari/boardwalk/internal/services"
)

type Repositories struct {
	Live     *repositories.LiveSessionRepository
	Archive  *repositories.ArchiveRepository
	Calendar *repositories.CalendarRepository
	Links    *repositories.LinkRepository
}

type Services struct {
	Ledger       *services.LedgerService
	Quota        *services.QuotaService
	Calendar     *services.CalendarService
	Verification *services.VerificationService
	Notifier     *services.NotifierService
	Sessions     *common.SessionService
	Signer       *common.URLSignerService
	RobloxUsers  *providers.RobloxUsersProvider
	RobloxOAuth  *providers.RobloxOAuthProvider
}

// Dependencies is the fully wired object graph handed to the router and
// the background workers. Everything is constructed here, once, from the
// loaded config; nothing reads the environment after this point.
type Dependencies struct {
	Config   *config.Config
	Store    *db.Store
	Redis    *redis.Client
	Metrics  *metrics.MetricsRegistry
	Location *time.Location
	Repos    *Repositories
	Services *Services
	Cache    *common.CacheService
	UpSince  time.Time
}

func InitDependencies(cfg *config.Config, store *db.Store, redisClient *redis.Client, reg *metrics.MetricsRegistry) (*Dependencies, error) {
	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.TimezoneName, err)
	}

	clk := &clock.DefaultClock{}
	cache := common.NewCacheService(300, 600)

	repos := &Repositories{
		Live:     repositories.NewLiveSessionRepository(store.SQL),
		Archive:  repositories.NewArchiveRepository(store.SQL),
		Calendar: repositories.NewCalendarRepository(store.SQL),
		Links:    repositories.NewLinkRepository(store.ORM),
	}

	robloxOAuth := providers.NewRobloxOAuthProvider(
		cfg.RobloxClientID, cfg.RobloxClientSecret, cfg.RobloxRedirectURI)
	discordOAuth := providers.NewDiscordOAuthProvider(
		cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	robloxUsers := providers.NewRobloxUsersProvider()

	codec := common.NewStateCodec(cfg.StateSecret, clk)
	notifier := services.NewNotifierService(cfg.BotURL, cfg.WebhookSecret, reg)

	svcs := &Services{
		Ledger: services.NewLedgerService(repos.Live, repos.Archive, clk, reg),
		Quota: services.NewQuotaService(
			repos.Archive, repos.Live, robloxUsers, cache, clk,
			cfg.QuotaTargetMinutes, cfg.WeekStartDay, loc),
		Calendar: services.NewCalendarService(repos.Calendar, clk, loc),
		Verification: services.NewVerificationService(
			codec, robloxOAuth, discordOAuth, repos.Links, notifier,
			cfg.SurfariGroupID, cfg.FallbackGuildID),
		Notifier:    notifier,
		Sessions:    common.NewSessionService(redisClient),
		Signer:      common.NewURLSignerService([]byte(cfg.DashboardSecret), redisClient),
		RobloxUsers: robloxUsers,
		RobloxOAuth: robloxOAuth,
	}

	return &Dependencies{
		Config:   cfg,
		Store:    store,
		Redis:    redisClient,
		Metrics:  reg,
		Location: loc,
		Repos:    repos,
		Services: svcs,
		Cache:    cache,
		UpSince:  time.Now(),
	}, nil
}
