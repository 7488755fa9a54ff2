package scrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/clipsift/clipsift/internal/media"
	"github.com/clipsift/clipsift/internal/platform"
	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("Scraper")

const (
	// loaderDataKey is the versioned key path segment the platform's
	// server-side renderer files the video payload under.
	loaderDataKey = "video_(id)/page"

	// audioOnlyMarker appears in the play-address URI when the clip has
	// no video track; the compact container shares its extension with
	// genuine audio files so the URI is the only reliable hint.
	audioOnlyMarker = ".mp3"

	// playURLTemplate turns a play-address URI in to a fetchable
	// media URL.
	playURLTemplate = "https://www.douyin.com/aweme/v1/play/?video_id=%s&ratio=720p&line=0"
)

// stateMatcher locates the renderer's assignment statement,
// tolerating the 'window.' prefix variant. Only the prefix up to the
// opening brace is matched; the JSON value itself is delimited by
// the decoder, since the page carries arbitrary scripts after the
// blob.
var stateMatcher = regexp.MustCompile(`(?:window\.)?_ROUTER_DATA\s*=\s*\{`)

var (
	ErrNoStateBlob    = errors.New("page does not contain an embedded state blob")
	ErrMalformedState = errors.New("embedded state blob is not parseable")
	ErrMissingKey     = errors.New("embedded state blob is missing an expected key")
)

// FailedRequestError is returned when the share page responds with
// a non-OK status, typically the platform's anti-scraping layer
// rejecting the request headers.
type FailedRequestError struct {
	HTTPCode int
}

func (err *FailedRequestError) Error() string {
	return fmt.Sprintf("share page request failed (HTTP %d)", err.HTTPCode)
}

type (
	routerData struct {
		LoaderData map[string]json.RawMessage `json:"loaderData"`
	}

	videoPage struct {
		VideoInfoRes *struct {
			ItemList []pageItem `json:"item_list"`
		} `json:"videoInfoRes"`
	}

	pageItem struct {
		AwemeID string `json:"aweme_id"`
		Desc    string `json:"desc"`
		Author  struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
		Video struct {
			PlayAddr struct {
				URI     string   `json:"uri"`
				URLList []string `json:"url_list"`
			} `json:"play_addr"`
			AudioAddr *struct {
				URLList []string `json:"url_list"`
			} `json:"audio_addr"`
			Cover struct {
				URLList []string `json:"url_list"`
			} `json:"cover"`
		} `json:"video"`
		Images []struct {
			URLList []string `json:"url_list"`
		} `json:"images"`
	}
)

// Extractor fetches a canonical share page and extracts the
// structured media references from the state blob embedded by the
// platform's server-side renderer.
type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Extract fetches the page at the URL provided and produces the
// VideoInfo for its first content item. The key path in to the
// embedded JSON is fixed; absence of any expected key at any depth
// is a hard failure for this call (no guessing).
func (extractor *Extractor) Extract(url string) (*media.VideoInfo, error) {
	pageHTML, err := extractor.fetchPage(url)
	if err != nil {
		return nil, err
	}

	blob, err := locateStateBlob(pageHTML)
	if err != nil {
		return nil, err
	}

	item, err := decodeFirstItem(blob)
	if err != nil {
		return nil, err
	}

	return buildVideoInfo(item), nil
}

func (extractor *Extractor) fetchPage(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	platform.ApplyBrowserHeaders(req)

	resp, err := extractor.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch share page %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FailedRequestError{HTTPCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse share page %s: %w", url, err)
	}

	return doc.Find("script").Text(), nil
}

// locateStateBlob finds the renderer's assignment statement inside
// the page's script content and returns the text from the blob's
// opening brace onwards. Anything after the JSON value (trailing
// statements, later scripts) is left in place for the decoder to
// ignore.
func locateStateBlob(scriptText string) (string, error) {
	loc := stateMatcher.FindStringIndex(scriptText)
	if loc == nil {
		return "", ErrNoStateBlob
	}

	return scriptText[loc[1]-1:], nil
}

// decodeState decodes exactly one JSON value from the head of the
// blob text, tolerating whatever script content follows it.
func decodeState(blob string) (routerData, error) {
	var state routerData
	err := json.NewDecoder(strings.NewReader(blob)).Decode(&state)

	return state, err
}

// decodeFirstItem unmarshals the blob and walks the fixed key path
// down to the first content item. If naive parsing fails the blob is
// re-tried with its escaped path separators unescaped; embedded
// blobs sometimes double-escape them.
func decodeFirstItem(blob string) (*pageItem, error) {
	state, err := decodeState(blob)
	if err != nil {
		unescaped := strings.ReplaceAll(blob, `\/`, "/")
		if state, err = decodeState(unescaped); err != nil {
			log.Emit(logger.ERROR, "state blob unparseable even after unescaping: %s\n", err.Error())
			return nil, ErrMalformedState
		}
	}

	pageData, ok := state.LoaderData[loaderDataKey]
	if !ok {
		return nil, fmt.Errorf("%w: loaderData[%q]", ErrMissingKey, loaderDataKey)
	}

	var page videoPage
	if err := json.Unmarshal(pageData, &page); err != nil {
		return nil, ErrMalformedState
	}
	if page.VideoInfoRes == nil {
		return nil, fmt.Errorf("%w: videoInfoRes", ErrMissingKey)
	}
	if len(page.VideoInfoRes.ItemList) == 0 {
		return nil, fmt.Errorf("%w: item_list is empty", ErrMissingKey)
	}

	return &page.VideoInfoRes.ItemList[0], nil
}

// buildVideoInfo maps a raw page item on to the pipeline's
// VideoInfo. A play-address URI carrying the audio-only marker is
// treated as the audio URL; otherwise the video URL is built from
// the URI and a sibling audio_addr field is probed separately.
func buildVideoInfo(item *pageItem) *media.VideoInfo {
	info := &media.VideoInfo{
		ContentID: item.AwemeID,
		Title:     item.Desc,
		Author:    item.Author.Nickname,
	}

	playURI := item.Video.PlayAddr.URI
	switch {
	case playURI == "":
		// Gallery pages carry no play address at all.
	case strings.Contains(playURI, audioOnlyMarker):
		info.AudioURL = playURI
	default:
		info.VideoURL = fmt.Sprintf(playURLTemplate, playURI)
		if item.Video.AudioAddr != nil && len(item.Video.AudioAddr.URLList) > 0 {
			info.AudioURL = item.Video.AudioAddr.URLList[0]
		}
	}

	if covers := item.Video.Cover.URLList; len(covers) > 0 {
		info.CoverURL = covers[0]
	}

	for _, image := range item.Images {
		if len(image.URLList) > 0 {
			info.ImageURLs = append(info.ImageURLs, image.URLList[0])
		}
	}

	log.Emit(logger.DEBUG, "extracted info for content %s (gallery=%v)\n", info.ContentID, info.IsGallery())
	return info
}
