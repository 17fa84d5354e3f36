package helpers

import "net/url"

// DefaultAvatarURL builds the generated-initials avatar assigned to fresh
// profiles, in the platform's neon-on-black branding.
func DefaultAvatarURL(username string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=39FF14&color=000000"
}
