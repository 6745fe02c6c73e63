package service

import (
	"time"

	"sharerelay/internal/core/linkparse"
	pstrings "sharerelay/internal/platform/strings"
	ptime "sharerelay/internal/platform/time"
	persist "sharerelay/internal/services/persist/domain"
)

// share is the resolved submission the row builders work from
type share struct {
	route      string
	kind       linkparse.Kind
	platform   linkparse.Platform
	externalID string
	url        string
	source     string
	createdAt  int64
	memo       *string
}

// relayRow is the PersistedRow. user_id is present so the persistence layer
// can fill it from account_id before every attempt
func relayRow(s share) persist.Row {
	var memo any
	if s.memo != nil {
		memo = pstrings.NullIfBlank(*s.memo)
	}
	return persist.Row{
		"account_id":  s.route,
		"platform":    string(s.platform),
		"external_id": s.externalID,
		"url":         s.url,
		"source":      s.source,
		"created_at":  s.createdAt,
		"memo":        memo,
		"user_id":     nil,
	}
}

// webVideoRow is the web dashboard videos shape. reason is set when the row
// cannot be built and nothing should be written
func webVideoRow(cfg Config, s share) (row persist.Row, reason string) {
	if s.platform != linkparse.PlatformYouTube {
		return nil, "SUPABASE_VIDEOS_MODE=web is youtube-only right now"
	}
	if cfg.DefaultUserID == "" || cfg.DefaultChannelID == "" {
		return nil, "missing SUPABASE_DEFAULT_USER_ID or SUPABASE_DEFAULT_CHANNEL_ID for web/videos"
	}
	return persist.Row{
		"user_id":          cfg.DefaultUserID,
		"channel_id":       cfg.DefaultChannelID,
		"youtube_video_id": s.externalID,
		"title":            nil,
		"thumbnail_url":    nil,
		"source":           s.source,
		"collected_at":     ptime.ISOZ(time.UnixMilli(s.createdAt)),
	}, ""
}

// rowFor picks the table and row for s
func rowFor(cfg Config, s share) (table string, row persist.Row, reason string) {
	if s.kind == linkparse.KindChannel {
		return cfg.TableChannels, relayRow(s), ""
	}
	if cfg.VideosMode == VideosModeWeb {
		row, reason = webVideoRow(cfg, s)
		return cfg.TableVideos, row, reason
	}
	return cfg.TableVideos, relayRow(s), ""
}
