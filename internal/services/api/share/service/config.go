package service

import (
	"sharerelay/internal/platform/config"
)

// Video row shapes
const (
	VideosModeRelay = "relay"
	VideosModeWeb   = "web"
)

// Config selects tables and row shapes
type Config struct {
	TableChannels string
	TableVideos   string
	OnConflict    []string
	VideosMode    string
	// DefaultUserID and DefaultChannelID fill web mode video rows
	DefaultUserID    string
	DefaultChannelID string
	// EmitOnDuplicate publishes even when the row already existed
	EmitOnDuplicate bool
}

// ConfigFromEnv reads the SUPABASE_ table keys and EMIT_SSE_ON_DUP
func ConfigFromEnv(c config.Conf) Config {
	s := c.Prefix("SUPABASE_")
	return Config{
		TableChannels:    s.MayString("TABLE_CHANNELS", "channels"),
		TableVideos:      s.MayString("TABLE_VIDEOS", "relay_videos"),
		OnConflict:       s.MayCSV("UPSERT_ON_CONFLICT", []string{"account_id", "platform", "external_id"}),
		VideosMode:       s.MayEnum("VIDEOS_MODE", VideosModeRelay, VideosModeRelay, VideosModeWeb),
		DefaultUserID:    s.MayString("DEFAULT_USER_ID", ""),
		DefaultChannelID: s.MayString("DEFAULT_CHANNEL_ID", ""),
		EmitOnDuplicate:  c.MayBool("EMIT_SSE_ON_DUP", true),
	}
}
