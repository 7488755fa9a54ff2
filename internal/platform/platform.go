// Package platform holds the constants which tie the pipeline to the
// short-video platform it scrapes: URL shapes, and the browser-like
// header set the platform's servers expect to see. Servers key their
// anti-scraping behaviour on these headers, so every outbound request
// to the platform must carry them.
package platform

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MobileUserAgent mimics a Chrome-on-Android client; desktop agents
	// are served a page without the embedded state blob.
	MobileUserAgent = "Mozilla/5.0 (Linux; Android 8.0.0; SM-G955U Build/R16NW) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Mobile Safari/537.36"

	// Referer expected by the platform's CDN and share pages.
	Referer = "https://www.douyin.com/?is_from_mobile_home=1&recommend=1"

	shareLinkHost     = "iesdouyin.com"
	shareLinkTemplate = "https://www.iesdouyin.com/share/video/%s/"
)

// shortLinkHosts are the platform-issued redirector domains; a URL on
// one of these hosts must be unshortened before the scraper can use it.
var shortLinkHosts = []string{"v.douyin.com", "dy.app"}

var standardPathMatcher = regexp.MustCompile(`/video/(\d+)`)

// IsShortLink reports whether the URL belongs to one of the
// platform's redirector domains.
func IsShortLink(url string) bool {
	for _, host := range shortLinkHosts {
		if strings.Contains(url, host) {
			return true
		}
	}

	return false
}

// IsShareLink reports whether the URL is already in the canonical
// share-link form the page scraper is tuned to parse.
func IsShareLink(url string) bool {
	return strings.Contains(url, shareLinkHost)
}

// StandardVideoID extracts the video ID from a standard-form
// ('/video/<id>') URL, returning "" when the URL is not in that form.
func StandardVideoID(url string) string {
	if !strings.Contains(url, "douyin.com/video") {
		return ""
	}

	if groups := standardPathMatcher.FindStringSubmatch(url); len(groups) == 2 {
		return groups[1]
	}

	return ""
}

// ShareLink builds the canonical share-link form for a video ID.
func ShareLink(videoID string) string {
	return fmt.Sprintf(shareLinkTemplate, videoID)
}

// ApplyBrowserHeaders decorates the request with the mobile
// user-agent and referer the platform expects.
func ApplyBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", MobileUserAgent)
	req.Header.Set("Referer", Referer)
}
