package classify

import (
	"strings"

	"github.com/mssola/useragent"
)

// Substrings matched case-insensitively against the User-Agent. This is a
// policy table: extend it freely, but matching stays case-insensitive
// substring containment.
var botSignatures = []string{
	// Generic patterns
	"bot",
	"spider",
	"crawl",

	// Link-preview / unfurler bots
	"facebookexternalhit",
	"facebot",
	"whatsapp",
	"slackbot",
	"telegrambot",
	"applebot",
	"twitterbot",
	"linkedinbot",
	"preview",

	// Google
	"google web preview",
	"google favicon",
	"google-ad",
	"google-site-verification",
	"chrome-lighthouse",

	// HTTP client libraries (not real browsers)
	"go-http-client/",
	"curl/",
	"wget/",
	"python-requests/",
	"python-urllib/",
	"pycurl/",
	"java/",
	"libwww-perl/",
	"okhttp/",
	"ruby",

	// Headless / renderers
	"headlesschrome/",
	"phantomjs",
	"slimerjs",
	"wkhtmltoimage",
	"wkhtmltopdf",

	// Security / scanning
	"zgrab/",
	"netcraftsurveyagent/",
	"burpcollaborator.net/",
	"wappalyzer",
	"whatweb/",
}

// IsBot reports whether the user-agent looks like a bot, crawler, or
// link-preview fetcher. Pure function of its input.
func IsBot(rawUA string) bool {
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return true
	}
	lower := strings.ToLower(rawUA)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
