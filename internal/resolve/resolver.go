package resolve

import (
	"net/http"
	"regexp"
	"time"

	"github.com/clipsift/clipsift/internal/platform"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("Resolver")

// urlMatcher performs a deliberately loose scan: anything from an
// http(s) scheme up to the next whitespace. Share messages pasted in
// by users wrap URLs in arbitrary prose, so a full URL grammar would
// reject more than it gains.
var urlMatcher = regexp.MustCompile(`https?://[^\s]+`)

// maxRedirectDepth bounds short-link recursion; a redirect loop
// terminates here and the last-seen URL is returned as-is.
const maxRedirectDepth = 5

// Resolver normalises free-form user input in to a canonical,
// fetchable page URL for the scraper.
type Resolver struct {
	client *http.Client
}

// New creates a Resolver whose redirect-following requests are
// bounded by the provided timeout.
func New(timeout time.Duration) *Resolver {
	return &Resolver{client: &http.Client{Timeout: timeout}}
}

// Resolve extracts the first HTTP(S) URL from the raw text provided
// and normalises it: short-links are unshortened via their redirect
// chain, standard-form video URLs are rewritten to the share-link
// form, and share-links pass through unchanged. An empty string is
// returned when the text contains no URL at all.
//
// Network failures during redirect resolution are soft: the original
// URL is returned unchanged and the caller must treat a URL which
// still looks like a short-link as a resolution failure.
func (resolver *Resolver) Resolve(rawText string) string {
	url := urlMatcher.FindString(rawText)
	if url == "" {
		log.Emit(logger.WARNING, "no URL found in input text (len=%d)\n", len(rawText))
		return ""
	}

	return resolver.canonicalise(url, 0)
}

func (resolver *Resolver) canonicalise(url string, depth int) string {
	if depth >= maxRedirectDepth {
		log.Emit(logger.WARNING, "redirect depth limit reached while resolving %s\n", url)
		return url
	}

	if platform.IsShortLink(url) {
		redirected, err := resolver.followRedirects(url)
		if err != nil {
			log.Emit(logger.ERROR, "failed to resolve short-link %s: %s\n", url, err.Error())
			return url
		}

		if redirected == url {
			// Server refused to move us anywhere; returning the
			// short-link signals a soft failure to the caller.
			return url
		}

		log.Emit(logger.DEBUG, "short-link %s redirected to %s\n", url, redirected)
		return resolver.canonicalise(redirected, depth+1)
	}

	if videoID := platform.StandardVideoID(url); videoID != "" {
		shareURL := platform.ShareLink(videoID)
		log.Emit(logger.DEBUG, "standard link rewritten to share form: %s\n", shareURL)
		return shareURL
	}

	return url
}

// followRedirects chases the redirect chain for the given URL and
// returns the final location. HEAD is attempted first as it is
// cheaper; some servers reject HEAD outright, in which case a full
// GET is issued instead.
func (resolver *Resolver) followRedirects(url string) (string, error) {
	finalURL, err := resolver.requestFinalURL(http.MethodHead, url)
	if err == nil && finalURL != url {
		return finalURL, nil
	}

	return resolver.requestFinalURL(http.MethodGet, url)
}

func (resolver *Resolver) requestFinalURL(method string, url string) (string, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return "", err
	}
	platform.ApplyBrowserHeaders(req)

	resp, err := resolver.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), nil
}
