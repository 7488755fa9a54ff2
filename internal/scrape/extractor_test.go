package scrape_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clipsift/clipsift/internal/scrape"
	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.SetMinLoggingLevel(logger.VERBOSE.Level())
}

const videoStateBlob = `{
	"loaderData": {
		"video_(id)/page": {
			"videoInfoRes": {
				"item_list": [{
					"aweme_id": "7311810479121345",
					"desc": "a cooking tutorial",
					"author": {"nickname": "chef"},
					"video": {
						"play_addr": {"uri": "v0300fg10000abcdef", "url_list": []},
						"cover": {"url_list": ["https://cdn.example.com/cover.jpeg"]}
					}
				}]
			}
		}
	}
}`

const galleryStateBlob = `{
	"loaderData": {
		"video_(id)/page": {
			"videoInfoRes": {
				"item_list": [{
					"aweme_id": "7311810479129999",
					"desc": "photo dump",
					"author": {"nickname": "someone"},
					"video": {"play_addr": {"uri": "", "url_list": []}, "cover": {"url_list": ["https://cdn.example.com/cover.jpeg"]}},
					"images": [
						{"url_list": ["https://cdn.example.com/1.jpeg", "https://cdn.example.com/1-alt.jpeg"]},
						{"url_list": ["https://cdn.example.com/2.jpeg"]}
					]
				}]
			}
		}
	}
}`

func pageWithBlob(blob string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><script>window.start=1</script></head>
		<body><div id="app"></div><script>window._ROUTER_DATA = %s</script></body></html>`, blob)
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	}))
}

func TestExtract_VideoPage(t *testing.T) {
	server := serveHTML(t, pageWithBlob(videoStateBlob))
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.Equal(t, "7311810479121345", info.ContentID)
	assert.Equal(t, "a cooking tutorial", info.Title)
	assert.Equal(t, "chef", info.Author)
	assert.Equal(t, "https://www.douyin.com/aweme/v1/play/?video_id=v0300fg10000abcdef&ratio=720p&line=0", info.VideoURL)
	assert.Equal(t, "https://cdn.example.com/cover.jpeg", info.CoverURL)
	assert.False(t, info.IsGallery())
}

func TestExtract_GalleryPage(t *testing.T) {
	server := serveHTML(t, pageWithBlob(galleryStateBlob))
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.True(t, info.IsGallery())
	assert.Equal(t, "", info.VideoURL)
	// Only the first URL of each image's candidate list is taken.
	assert.Equal(t, []string{"https://cdn.example.com/1.jpeg", "https://cdn.example.com/2.jpeg"}, info.ImageURLs)
}

func TestExtract_AudioOnlyPlayAddress(t *testing.T) {
	blob := strings.Replace(videoStateBlob, "v0300fg10000abcdef", "https://cdn.example.com/track.mp3", 1)
	server := serveHTML(t, pageWithBlob(blob))
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.Equal(t, "", info.VideoURL)
	assert.Equal(t, "https://cdn.example.com/track.mp3", info.AudioURL)
}

func TestExtract_ScriptsFollowingStateBlob(t *testing.T) {
	// Real pages carry analytics and bootstrap scripts after the
	// state blob; their braces must not bleed in to the decoded value.
	html := fmt.Sprintf(`<html><body>
		<script>window.start=1</script>
		<script>window._ROUTER_DATA = %s</script>
		<script>(function(){var config = {foo: 1};window.boot(config)})()</script>
		</body></html>`, videoStateBlob)
	server := serveHTML(t, html)
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.Equal(t, "7311810479121345", info.ContentID)
	assert.Equal(t, "chef", info.Author)
}

func TestExtract_TrailingStatementOnBlobScript(t *testing.T) {
	html := fmt.Sprintf(`<html><body><script>window._ROUTER_DATA = %s;window.loaded = true</script></body></html>`, videoStateBlob)
	server := serveHTML(t, html)
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.Equal(t, "7311810479121345", info.ContentID)
}

func TestExtract_AssignmentWithoutWindowPrefix(t *testing.T) {
	html := fmt.Sprintf("<html><body><script>_ROUTER_DATA = %s</script></body></html>", videoStateBlob)
	server := serveHTML(t, html)
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, err)
	assert.Equal(t, "7311810479121345", info.ContentID)
}

func TestExtract_MissingStateBlob(t *testing.T) {
	server := serveHTML(t, "<html><body><script>var x = 1;</script></body></html>")
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, info)
	assert.ErrorIs(t, err, scrape.ErrNoStateBlob)
}

func TestExtract_MissingLoaderDataKey(t *testing.T) {
	server := serveHTML(t, pageWithBlob(`{"loaderData": {"some_other/page": {}}}`))
	defer server.Close()

	extractor := scrape.New(time.Second)
	info, err := extractor.Extract(server.URL)

	assert.Nil(t, info)
	assert.ErrorIs(t, err, scrape.ErrMissingKey)
}

func TestExtract_EmptyItemList(t *testing.T) {
	server := serveHTML(t, pageWithBlob(`{"loaderData": {"video_(id)/page": {"videoInfoRes": {"item_list": []}}}}`))
	defer server.Close()

	extractor := scrape.New(time.Second)
	_, err := extractor.Extract(server.URL)
	assert.ErrorIs(t, err, scrape.ErrMissingKey)
}

func TestExtract_NonOKStatusReturnsFailedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	extractor := scrape.New(time.Second)
	_, err := extractor.Extract(server.URL)

	var failedRequest *scrape.FailedRequestError
	assert.ErrorAs(t, err, &failedRequest)
	assert.Equal(t, http.StatusForbidden, failedRequest.HTTPCode)
}
