// Package linkparse classifies shared links into (kind, platform) and derives
// the platform scoped external id used as part of the persistence key.
// Every function here is total: malformed input degrades to ("video", "unknown")
// and a missing id, never a panic
package linkparse

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"sharerelay/internal/core/normalize"
)

// Kind is the shape of the shared resource
type Kind string

// Kinds
const (
	KindVideo   Kind = "video"
	KindChannel Kind = "channel"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool { return k == KindVideo || k == KindChannel }

// ParseKind lowercases and trims s; ok is false for anything but video/channel
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Platform names the origin site of a link
type Platform string

// Platforms in detection priority order
const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformDouyin    Platform = "douyin"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// FallbackLen is the number of hex chars kept from the content hash
const FallbackLen = 12

var (
	ytVideoID   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	numericPath = regexp.MustCompile(`(?i)/video/(\d+)`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
)

// platform domains, checked in order
var platformDomains = []struct {
	p       Platform
	needles []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformDouyin, []string{"douyin.com"}},
	{PlatformInstagram, []string{"instagram.com"}},
}

// hosts that hand out opaque redirect links instead of content ids
var shortLinkHosts = []string{"v.douyin.com", "vm.tiktok.com", "vt.tiktok.com"}

var igReserved = map[string]struct{}{
	"p": {}, "reel": {}, "reels": {}, "stories": {}, "explore": {}, "tv": {},
}

var douyinIDParams = []string{"modal_id", "aweme_id", "item_id"}

// Normalize is the canonical form every rule and the fallback hash work on
func Normalize(raw string) string { return normalize.URL(raw) }

// IsBareHandle reports an "@name" token with no path separators or spaces
func IsBareHandle(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > 1 && s[0] == '@' && !strings.ContainsAny(s, " /")
}

// DetectPlatform returns the hint when given, else the first platform whose
// domain appears in the link
func DetectPlatform(raw, hint string) Platform {
	if h := strings.ToLower(strings.TrimSpace(hint)); h != "" {
		return Platform(h)
	}
	low := strings.ToLower(raw)
	for _, d := range platformDomains {
		for _, n := range d.needles {
			if strings.Contains(low, n) {
				return d.p
			}
		}
	}
	return PlatformUnknown
}

// DetectKind guesses channel or video from the link shape alone
func DetectKind(raw string) Kind {
	s := Normalize(raw)
	if IsBareHandle(s) {
		return KindChannel
	}
	low := strings.ToLower(s)

	// handle+video combos (tiktok.com/@a/video/1) are videos
	if numericPath.MatchString(low) {
		return KindVideo
	}
	if strings.Contains(low, "youtube.com/@") ||
		strings.Contains(low, "/channel/") ||
		strings.Contains(low, "/user/") ||
		strings.Contains(low, "/c/") {
		return KindChannel
	}
	if strings.Contains(low, "tiktok.com/@") {
		return KindChannel
	}
	if strings.Contains(low, "instagram.com") {
		if _, ok := instagramProfile(s); ok {
			return KindChannel
		}
	}
	return KindVideo
}

// Classify resolves (kind, platform) with the caller's hints taking precedence.
// An unknown kind hint is returned as given so the caller can reject it
func Classify(raw, kindHint, platformHint string) (Kind, Platform) {
	k := DetectKind(raw)
	if strings.TrimSpace(kindHint) != "" {
		k, _ = ParseKind(kindHint)
	}
	return k, DetectPlatform(raw, platformHint)
}

// ExtractID derives the external id. Hints win; ok is false when nothing
// deterministic applies, which means notify but do not persist
func ExtractID(kind Kind, p Platform, raw, hintChannel, hintVideo string) (string, bool) {
	s := Normalize(raw)
	switch kind {
	case KindVideo:
		if h := strings.TrimSpace(hintVideo); h != "" {
			return h, true
		}
		return videoID(p, s)
	case KindChannel:
		if h := strings.TrimSpace(hintChannel); h != "" {
			return h, true
		}
		return channelID(p, s)
	}
	return "", false
}

// FallbackID is the content addressed id for links whose real id hides behind
// a redirect. Two short links to the same content get different ids
func FallbackID(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])[:FallbackLen]
}

func videoID(p Platform, s string) (string, bool) {
	switch p {
	case PlatformYouTube:
		ids := parseYouTube(s)
		return ids.videoID, ids.videoID != ""
	case PlatformTikTok:
		if id, ok := numericVideo(s); ok {
			return id, true
		}
		return shortLinkFallback(s)
	case PlatformDouyin:
		if id, ok := numericVideo(s); ok {
			return id, true
		}
		if id, ok := douyinQueryID(s); ok {
			return id, true
		}
		return shortLinkFallback(s)
	case PlatformInstagram:
		return instagramMedia(s)
	}
	return "", false
}

func channelID(p Platform, s string) (string, bool) {
	switch p {
	case PlatformYouTube:
		ids := parseYouTube(s)
		if ids.channelID != "" {
			return ids.channelID, true
		}
		if ids.handle != "" {
			return "@" + ids.handle, true
		}
	case PlatformTikTok:
		if h := segmentAfter(s, "tiktok.com/@"); h != "" {
			return "@" + h, true
		}
	case PlatformInstagram:
		if h, ok := instagramProfile(s); ok {
			return "@" + h, true
		}
	}
	return "", false
}

type youtubeIDs struct {
	videoID   string
	channelID string
	handle    string
}

// parseYouTube applies the youtube rules in order; later video forms win
func parseYouTube(s string) youtubeIDs {
	var out youtubeIDs
	if IsBareHandle(s) {
		out.handle = strings.Trim(s, "@")
		return out
	}

	if v := segmentAfter(s, "youtu.be/"); ytVideoID.MatchString(v) {
		out.videoID = v
	}
	if v := watchParam(s); ytVideoID.MatchString(v) {
		out.videoID = v
	}
	if v := segmentAfter(s, "/shorts/"); ytVideoID.MatchString(v) {
		out.videoID = v
	}
	out.channelID = segmentAfter(s, "/channel/")

	for _, marker := range []string{"youtube.com/@", "/user/", "/c/"} {
		if h := segmentAfter(s, marker); h != "" {
			out.handle = h
			break
		}
	}
	return out
}

// watchParam reads v from a /watch query in any position. Links url.Parse
// rejects fall back to the literal watch?v= form
func watchParam(s string) string {
	if u, err := url.Parse(s); err == nil && strings.HasSuffix(strings.ToLower(u.Path), "/watch") {
		if v := u.Query().Get("v"); v != "" {
			return v
		}
	}
	if i := indexFold(s, "watch?v="); i >= 0 {
		v, _, _ := strings.Cut(s[i+len("watch?v="):], "&")
		return v
	}
	return ""
}

func numericVideo(s string) (string, bool) {
	m := numericPath.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func douyinQueryID(s string) (string, bool) {
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	q := u.Query()
	for _, k := range douyinIDParams {
		if v := strings.TrimSpace(q.Get(k)); digitsOnly.MatchString(v) {
			return v, true
		}
	}
	return "", false
}

func shortLinkFallback(s string) (string, bool) {
	low := strings.ToLower(s)
	for _, h := range shortLinkHosts {
		if strings.Contains(low, h) {
			return FallbackID(s), true
		}
	}
	return "", false
}

// instagramPath returns the non-empty path segments of an instagram link
func instagramPath(s string) []string {
	i := indexFold(s, "instagram.com")
	if i < 0 {
		return nil
	}
	rest := s[i+len("instagram.com"):]
	rest, _, _ = strings.Cut(rest, "?")
	rest, _, _ = strings.Cut(rest, "#")
	var segs []string
	for seg := range strings.SplitSeq(rest, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

func instagramProfile(s string) (string, bool) {
	segs := instagramPath(s)
	if len(segs) == 0 {
		return "", false
	}
	name := strings.TrimPrefix(segs[0], "@")
	if name == "" {
		return "", false
	}
	if _, reserved := igReserved[strings.ToLower(name)]; reserved {
		return "", false
	}
	return name, true
}

func instagramMedia(s string) (string, bool) {
	segs := instagramPath(s)
	for i := 0; i+1 < len(segs); i++ {
		switch strings.ToLower(segs[i]) {
		case "p", "reel", "reels", "tv":
			return segs[i+1], true
		}
	}
	return "", false
}

// segmentAfter returns the path segment following marker (case-insensitive),
// cut at the first '/', '?' or '#'
func segmentAfter(s, marker string) string {
	i := indexFold(s, marker)
	if i < 0 {
		return ""
	}
	rest := s[i+len(marker):]
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// indexFold is strings.Index with ASCII case folding on the needle
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
