package transcribe_test

import (
	"errors"
	"testing"

	"github.com/clipsift/clipsift/internal/transcribe"
	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.SetMinLoggingLevel(logger.VERBOSE.Level())
}

type mockProvider struct {
	mock.Mock
	name      string
	available bool
}

func (provider *mockProvider) Name() string    { return provider.name }
func (provider *mockProvider) Available() bool { return provider.available }

func (provider *mockProvider) Transcribe(audioPath string) (string, error) {
	args := provider.Called(audioPath)
	return args.String(0), args.Error(1)
}

func newMockProvider(name string, available bool) *mockProvider {
	return &mockProvider{name: name, available: available}
}

func TestTranscribe_FirstProviderWins(t *testing.T) {
	first := newMockProvider("first", true)
	first.On("Transcribe", "a.mp3").Return("今天天气不错", nil)
	second := newMockProvider("second", true)

	transcriber := transcribe.NewWithProviders(first, second)
	assert.Equal(t, "今天天气不错", transcriber.Transcribe("a.mp3"))

	first.AssertNumberOfCalls(t, "Transcribe", 1)
	second.AssertNotCalled(t, "Transcribe", mock.Anything)
}

func TestTranscribe_AdvancesPastFailures(t *testing.T) {
	failing := newMockProvider("failing", true)
	failing.On("Transcribe", "a.mp3").Return("", errors.New("quota exhausted"))
	empty := newMockProvider("empty", true)
	empty.On("Transcribe", "a.mp3").Return("", nil)
	working := newMockProvider("working", true)
	working.On("Transcribe", "a.mp3").Return("transcript text", nil)

	transcriber := transcribe.NewWithProviders(failing, empty, working)
	assert.Equal(t, "transcript text", transcriber.Transcribe("a.mp3"))

	// A provider is consulted at most once per call and strictly in
	// chain order.
	failing.AssertNumberOfCalls(t, "Transcribe", 1)
	empty.AssertNumberOfCalls(t, "Transcribe", 1)
	working.AssertNumberOfCalls(t, "Transcribe", 1)
}

func TestTranscribe_UnavailableProvidersSkipped(t *testing.T) {
	unconfigured := newMockProvider("unconfigured", false)
	working := newMockProvider("working", true)
	working.On("Transcribe", "a.mp3").Return("text", nil)

	transcriber := transcribe.NewWithProviders(unconfigured, working)
	assert.Equal(t, "text", transcriber.Transcribe("a.mp3"))

	unconfigured.AssertNotCalled(t, "Transcribe", mock.Anything)
}

func TestTranscribe_ExhaustedChainReturnsEmpty(t *testing.T) {
	failing := newMockProvider("failing", true)
	failing.On("Transcribe", "a.mp3").Return("", errors.New("boom"))
	unconfigured := newMockProvider("unconfigured", false)

	transcriber := transcribe.NewWithProviders(failing, unconfigured)
	assert.Equal(t, "", transcriber.Transcribe("a.mp3"))
}

func TestTranscribe_NoProvidersConfigured(t *testing.T) {
	transcriber := transcribe.NewWithProviders()
	assert.Equal(t, "", transcriber.Transcribe("a.mp3"))
}
