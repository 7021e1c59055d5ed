package config

import "time"

// ExploreConfig tunes the explore page and live filter sessions.
type ExploreConfig struct {
	Debounce       time.Duration // quiescence window for search input
	PageSize       int           // desktop cards per page
	PageSizeMobile int           // compact cards per page
	Strategy       string        // "client" slices locally, "server" asks upstream to paginate
	IdleTTL        time.Duration // live sessions untouched this long are evicted
	MaxSessions    int           // live sessions held at once; the stalest makes room
	UpcomingLimit  int           // cards in the home page upcoming strip
}

func LoadExploreConfig() ExploreConfig {
	c := ExploreConfig{
		Debounce:       envDur("EXPLORE_DEBOUNCE", 400*time.Millisecond),
		PageSize:       envInt("EXPLORE_PAGE_SIZE", 12),
		PageSizeMobile: envInt("EXPLORE_PAGE_SIZE_MOBILE", 6),
		Strategy:       getenv("EXPLORE_STRATEGY", "client"),
		IdleTTL:        envDur("EXPLORE_IDLE_TTL", 15*time.Minute),
		MaxSessions:    envInt("EXPLORE_MAX_SESSIONS", 10000),
		UpcomingLimit:  envInt("HOME_UPCOMING_LIMIT", 4),
	}
	if c.PageSize < 1 {
		c.PageSize = 12
	}
	if c.PageSizeMobile < 1 {
		c.PageSizeMobile = c.PageSize
	}
	return c
}

// BookingConfig controls how long an abandoned booking dialog is remembered.
type BookingConfig struct {
	DialogTTL time.Duration
	Prefix    string
}

func LoadBookingConfig() BookingConfig {
	return BookingConfig{
		DialogTTL: envDur("BOOKING_DIALOG_TTL", 30*time.Minute),
		Prefix:    getenv("BOOKING_DIALOG_PREFIX", "mabarin:dialog"),
	}
}
