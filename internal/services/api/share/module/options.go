package module

import (
	"time"

	"sharerelay/internal/adapters/persist/postgrest"
	"sharerelay/internal/platform/config"
	sharesvc "sharerelay/internal/services/api/share/service"
	persistsvc "sharerelay/internal/services/persist/service"
)

// Options configures the share module
type Options struct {
	Store      string
	PostgREST  postgrest.Options
	Persist    persistsvc.Options
	Share      sharesvc.Config
	RateLimit  int
	RateWindow time.Duration
}

// OptionsFromConfig reads RELAY_STORE, SHARE_RATE_* and the persistence keys
func OptionsFromConfig(c config.Conf) Options {
	return Options{
		Store:      c.MayEnum("RELAY_STORE", StorePostgREST, StorePostgREST, StorePostgres),
		PostgREST:  postgrest.OptionsFromEnv(c),
		Persist:    persistsvc.OptionsFromEnv(c),
		Share:      sharesvc.ConfigFromEnv(c),
		RateLimit:  c.Prefix("SHARE_").MayInt("RATE_LIMIT", 120),
		RateWindow: c.Prefix("SHARE_").MayDuration("RATE_WINDOW", time.Minute),
	}
}
