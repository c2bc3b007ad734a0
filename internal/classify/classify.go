// Package classify turns a raw User-Agent into bot/device/browser/OS
// fields. The mssola/useragent parser is the primary source; ordered
// substring rule tables fill whatever it leaves empty, and structured
// values supplied upstream always win over anything derived here.
package classify

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device types form a closed set. Desktop is the fallback, never "unknown".
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"

	// Unknown is the sentinel for browser/OS families that match nothing.
	Unknown = "Unknown"
)

type Classification struct {
	IsBot          bool
	Browser        string
	BrowserVersion string
	OS             string
	DeviceType     string
}

// rule pairs a lowercase UA substring with the value it implies. Tables are
// evaluated first-match-wins, so more specific tokens must come before
// general ones that are substrings of them.
type rule struct {
	token string
	value string
}

// Edge and Opera ship "Chrome" in their UA, and Chrome ships "Safari", so
// order here is load-bearing.
var browserRules = []rule{
	{"edg/", "Edge"},
	{"edge/", "Edge"},
	{"opr/", "Opera"},
	{"opera", "Opera"},
	{"samsungbrowser/", "Samsung Internet"},
	{"firefox/", "Firefox"},
	{"fxios/", "Firefox"},
	{"crios/", "Chrome"},
	{"chrome/", "Chrome"},
	{"safari/", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident/", "Internet Explorer"},
}

// Version strings before the generic platform token they contain.
var osRules = []rule{
	{"windows phone", "Windows Phone"},
	{"windows nt 10.0", "Windows 10"},
	{"windows nt 6.3", "Windows 8.1"},
	{"windows nt 6.2", "Windows 8"},
	{"windows nt 6.1", "Windows 7"},
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"ipod", "iOS"},
	{"mac os x", "macOS"},
	{"macintosh", "macOS"},
	{"android", "Android"},
	{"cros", "ChromeOS"},
	{"linux", "Linux"},
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "silk/"}

func matchRules(rules []rule, lowerUA string) string {
	for _, r := range rules {
		if strings.Contains(lowerUA, r.token) {
			return r.value
		}
	}
	return ""
}

// Classify derives all fields from the raw user-agent alone. The ordered
// rule tables decide browser and OS families; the useragent parser
// contributes the browser version and mobile/bot hints.
func Classify(rawUA string) Classification {
	c := Classification{IsBot: IsBot(rawUA)}
	lower := strings.ToLower(rawUA)

	ua := useragent.New(rawUA)
	_, c.BrowserVersion = ua.Browser()

	c.Browser = matchRules(browserRules, lower)
	c.OS = matchRules(osRules, lower)
	c.DeviceType = deviceType(ua, lower)

	if c.Browser == "" {
		c.Browser = Unknown
		c.BrowserVersion = ""
	}
	if c.OS == "" {
		c.OS = Unknown
	}
	return c
}

// Merge overlays derived values under structured ones: a field already
// supplied upstream is never overwritten, derived values only fill gaps.
func Merge(structured, derived Classification) Classification {
	out := structured
	if out.Browser == "" {
		out.Browser = derived.Browser
	}
	if out.BrowserVersion == "" {
		out.BrowserVersion = derived.BrowserVersion
	}
	if out.OS == "" {
		out.OS = derived.OS
	}
	if out.DeviceType == "" {
		out.DeviceType = derived.DeviceType
	}
	out.IsBot = structured.IsBot || derived.IsBot
	return out
}

func deviceType(ua *useragent.UserAgent, lowerUA string) string {
	for _, marker := range tabletMarkers {
		if strings.Contains(lowerUA, marker) {
			return DeviceTablet
		}
	}
	// Android without the "mobile" token is a tablet
	if strings.Contains(lowerUA, "android") && !strings.Contains(lowerUA, "mobile") {
		return DeviceTablet
	}
	if ua.Mobile() || strings.Contains(lowerUA, "mobi") {
		return DeviceMobile
	}
	return DeviceDesktop
}
