package models

import (
	"fmt"
	"strings"
)

// Platform identifies a supported social media platform.
// Values use the platform's own lowercase name. Note that the OAuth layer
// speaks "google" for YouTube connections; the mapping lives in one place,
// PlatformFromProvider / (Platform).Provider, and must be used on connect,
// disconnect, and display alike.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformReddit    Platform = "reddit"
	PlatformYouTube   Platform = "youtube"
)

// AllPlatforms lists every platform the collection pipeline understands.
var AllPlatforms = []Platform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTwitter,
	PlatformReddit,
	PlatformYouTube,
}

// ParsePlatform converts a string into a Platform, case-insensitively.
// Returns an error for unknown platform names.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Canonical normalizes provider aliases to the platform they represent.
// "google" appears in OAuth paths and stored records from the provider
// side of the YouTube connection; everywhere else the platform is youtube.
func (p Platform) Canonical() Platform {
	if strings.EqualFold(string(p), "google") {
		return PlatformYouTube
	}
	return p
}

// Provider returns the OAuth provider key for the platform.
// YouTube connections are brokered through Google's OAuth endpoints, so the
// backend provider key differs from the platform name.
func (p Platform) Provider() string {
	if p == PlatformYouTube {
		return "google"
	}
	return string(p)
}

// PlatformFromProvider resolves an OAuth provider key back to the platform
// it represents. The inverse of Provider.
func PlatformFromProvider(provider string) (Platform, error) {
	if strings.EqualFold(provider, "google") {
		return PlatformYouTube, nil
	}
	return ParsePlatform(provider)
}

// DisplayName returns the platform name cased for user-facing notices.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	default:
		if p == "" {
			return ""
		}
		return strings.ToUpper(string(p[:1])) + string(p[1:])
	}
}
