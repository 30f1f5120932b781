package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"surfari/boardwalk/internal/auth"
	"surfari/boardwalk/internal/common"
	"surfari/boardwalk/internal/constants"
	"surfari/boardwalk/internal/db/repositories"
	"surfari/boardwalk/internal/logging"
	"surfari/boardwalk/internal/models/dtos"
	"surfari/boardwalk/internal/services"
)

// loginStateCookie carries the CSRF state for the site-login flow. The
// bot-verify flow uses constants.StateCookieName for its signed state.
const loginStateCookie = "ds"

const linkTokenTTL = 10 * time.Minute

// RobloxAuthStartHandler begins the bot-verify flow. The signed state
// minted by the bot arrives as a query parameter; it is stashed in a
// short-lived cookie so the callback can recover it even when Roblox
// drops the state round-trip.
func RobloxAuthStartHandler(verification *services.VerificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if state == "" {
			respondWithError(w, http.StatusBadRequest, "missing state")
			return
		}

		authorizeURL, err := verification.StartURL(services.ModeBotVerify, state)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     constants.StateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// RobloxAuthCallbackHandler finishes the bot-verify flow and renders a
// plain confirmation page. The member closes the tab and returns to
// Discord, where the bot has already applied their roles.
func RobloxAuthCallbackHandler(verification *services.VerificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if state == "" {
			if cookie, err := r.Cookie(constants.StateCookieName); err == nil {
				state = cookie.Value
			}
		}
		if code == "" || state == "" {
			respondWithError(w, http.StatusBadRequest, "missing code or state")
			return
		}

		link, err := verification.CompleteRobloxVerification(r.Context(), state, code)
		if err != nil {
			logging.Warn("Roblox verification failed", "error", err)
			respondWithServiceError(w, err)
			return
		}

		// Clear the state cookie, it is single purpose.
		http.SetCookie(w, &http.Cookie{
			Name: constants.StateCookieName, Value: "", Path: "/", MaxAge: -1,
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w,
			"<html><body><h1>Verified as %s</h1><p>You can close this tab and return to Discord.</p></body></html>",
			sanitizeUsername(link.RobloxUsername))
	}
}

// sanitizeUsername strips markup characters before the username lands in
// the confirmation page. Usernames come from Roblox but are still
// untrusted output.
func sanitizeUsername(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '<', '>', '&', '"', '\'':
			continue
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// DiscordLoginStartHandler begins the site-login flow with a random CSRF
// state pinned in a cookie.
func DiscordLoginStartHandler(verification *services.VerificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.New().String()

		authorizeURL, err := verification.StartURL(services.ModeSiteLogin, state)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     loginStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// DiscordLoginCallbackHandler finishes the site-login flow, issues a
// dashboard session, and redirects into the SPA.
func DiscordLoginCallbackHandler(
	verification *services.VerificationService,
	sessions *common.SessionService,
	dashboardBaseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		cookie, err := r.Cookie(loginStateCookie)
		if code == "" || err != nil || state == "" ||
			subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
			respondWithError(w, http.StatusBadRequest, "state mismatch")
			return
		}

		data, err := verification.CompleteDiscordLogin(r.Context(), code)
		if err != nil {
			logging.Warn("Discord login failed", "error", err)
			respondWithServiceError(w, err)
			return
		}

		sessionID, err := sessions.CreateSession(r.Context(), *data)
		if err != nil {
			logging.Error("Session create failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name: loginStateCookie, Value: "", Path: "/", MaxAge: -1,
		})
		setSessionCookie(w, sessionID)
		http.Redirect(w, r, dashboardBaseURL, http.StatusFound)
	}
}

// DashboardLinkHandler mints a signed single-use dashboard login URL for
// the companion bot. Guarded by the shared dashboard secret rather than a
// user session.
func DashboardLinkHandler(
	signer *common.URLSignerService,
	dashboardSecret, baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		expected := "Bearer " + dashboardSecret
		if dashboardSecret == "" ||
			subtle.ConstantTimeCompare([]byte(authz), []byte(expected)) != 1 {
			respondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		req, err := decodeAndValidate[dtos.DashboardLinkRequest](r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid link payload")
			return
		}

		token, expiresAt, err := signer.GenerateLinkToken(req.DiscordID, req.GuildID, linkTokenTTL)
		if err != nil {
			logging.Error("Link token mint failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondWithSuccess(w, http.StatusOK, &dtos.DashboardLink{
			URL:       baseURL + "/auth/redeem?token=" + url.QueryEscape(token),
			ExpiresAt: expiresAt,
		})
	}
}

// DashboardRedeemHandler exchanges a single-use link token for a dashboard
// session. The token burns on first redemption.
func DashboardRedeemHandler(
	signer *common.URLSignerService,
	sessions *common.SessionService,
	links *repositories.LinkRepository,
	fallbackGuildID, dashboardBaseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			respondWithError(w, http.StatusBadRequest, "missing token")
			return
		}

		signed, err := signer.ValidateToken(r.Context(), token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "invalid or used token")
			return
		}

		guildID := signed.GuildID
		if guildID == "" {
			guildID = fallbackGuildID
		}
		link, err := links.FindByDiscord(r.Context(), signed.DiscordID, guildID)
		if err != nil {
			logging.Error("Link lookup failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if link == nil {
			respondWithError(w, http.StatusNotFound, "account not verified")
			return
		}

		if err := signer.MarkTokenAsUsed(r.Context(), signed.TokenID); err != nil {
			logging.Error("Token burn failed", "error", err, "token_id", signed.TokenID)
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		sessionID, err := sessions.CreateSession(r.Context(), common.SessionData{
			DiscordID:      link.DiscordID,
			GuildID:        link.GuildID,
			RobloxUserID:   link.RobloxUserID,
			RobloxUsername: link.RobloxUsername,
			RoleRank:       link.RoleRank,
		})
		if err != nil {
			logging.Error("Session create failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		setSessionCookie(w, sessionID)
		http.Redirect(w, r, dashboardBaseURL, http.StatusFound)
	}
}

// LogoutHandler drops the dashboard session server-side and clears the
// cookie.
func LogoutHandler(sessions *common.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
			_ = sessions.DeleteSession(r.Context(), cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name: constants.SessionCookieName, Value: "", Path: "/", MaxAge: -1,
		})
		respondWithSuccess(w, http.StatusOK, &dtos.IngestAck{OK: true})
	}
}

// MeHandler returns the authenticated dashboard identity.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.GetSession(r.Context())
		if session == nil {
			respondWithError(w, http.StatusUnauthorized, "missing session")
			return
		}
		respondWithSuccess(w, http.StatusOK, session)
	}
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
