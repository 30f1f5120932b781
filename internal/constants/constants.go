package constants

// ClaimRole identifies a claimable slot on a calendar session.
type ClaimRole string

const (
	RoleHost    ClaimRole = "host"
	RoleCohost  ClaimRole = "cohost"
	RoleTrainer ClaimRole = "trainer"
)

// Valid reports whether r is one of the known claim roles.
func (r ClaimRole) Valid() bool {
	switch r {
	case RoleHost, RoleCohost, RoleTrainer:
		return true
	}
	return false
}

// Request header names shared between the game, the bot and the dashboard.
const (
	HeaderGameKey          = "X-Game-Key"
	HeaderWebhookSignature = "X-Surfari-Signature"
	HeaderRequestID        = "X-Request-ID"
)

// Dashboard session cookie.
const SessionCookieName = "surfari_session"

// OAuth state cookie round-tripped through the Roblox redirect.
const StateCookieName = "rs"

// EstSlotHours are the EST-anchored start hours of the eight fixed two-hour
// training blocks published per calendar day.
var EstSlotHours = []int{0, 3, 6, 9, 12, 15, 18, 21}

// SlotDurationHours is the length of one published calendar slot.
const SlotDurationHours = 2

// MaxPublishWeeks caps how far ahead the claim board can be published.
const MaxPublishWeeks = 12
