package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the activity timezone
)

// Config holds the runtime configuration of the web front-end.  Each field
// corresponds to an environment variable.  Upstream API settings live in
// UpstreamConfig and feature tunables in ExploreConfig/BookingConfig.
type Config struct {
	Env             string         // application environment (e.g. "dev", "prod")
	Port            string         // HTTP port to listen on
	SessionSecret   string         // HKDF input for cookie signing keys
	SessionTTLHours int            // lifetime of the session cookie in hours
	LogLevel        string         // debug, info, warn or error
	Location        *time.Location // timezone used to interpret activity dates
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                      // environment (dev/test/prod)
		Port:            must("APP_PORT"),                     // port to bind the HTTP server
		SessionSecret:   must("SESSION_SECRET"),               // secret the cookie keys are derived from
		SessionTTLHours: intOr("SESSION_TTL_HOURS", 24),       // session lifetime
		LogLevel:        getenv("LOG_LEVEL", "info"),          // application log level
		Location:        mustLocation(getenv("TIMEZONE", "Asia/Jakarta")),
	}
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool { return c.Env == "prod" || c.Env == "production" }

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr is like getenv() but converts the value into an integer.  A value
// that is present but not a number is fatal, an absent one yields def.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid TIMEZONE %q: %v", name, err)
	}
	return loc
}
