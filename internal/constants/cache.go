package constants

import "time"

const (
	WeeklyPricingCachePrefix = "weekly_pricing" // Weekly schedule by property ID (CacheBuilder adds colon)
	UserCachePrefix          = "user"           // User by ID
	WeeklyPricingCacheExpiry = 6 * time.Hour
	UserCacheExpiry          = 7 * 24 * time.Hour // 7 days
)

// Pub/sub channels on the events cache.
const (
	ReservationEventsChannel = "reservation_events"
)
