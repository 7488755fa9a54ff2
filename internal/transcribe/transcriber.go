package transcribe

import (
	"net/http"
	"time"

	"github.com/clipsift/clipsift/pkg/logger"
)

var log = logger.Get("Transcriber")

// Provider is a single speech-recognition backend in the fallback
// chain. Availability is evaluated at call time from the process
// environment, so a provider whose credentials appear mid-run is
// picked up without a restart.
type Provider interface {
	Name() string
	Available() bool
	Transcribe(audioPath string) (string, error)
}

// Transcriber converts normalised audio in to text by attempting an
// ordered chain of providers until one returns non-empty text or
// the chain is exhausted. Providers are never retried; any failure
// simply advances the chain.
type Transcriber struct {
	providers []Provider
}

// New constructs the default provider chain, ordered by expected
// transcription accuracy on the target language: the primary cloud
// ASR, a multimodal transcription API, an offline recogniser, a
// second cloud provider, and the generic web speech API last.
func New(timeout time.Duration) *Transcriber {
	client := &http.Client{Timeout: timeout}

	return &Transcriber{providers: []Provider{
		&tongyiProvider{client: client},
		&dashscopeProvider{client: client},
		&localWhisperProvider{},
		&gcloudProvider{client: client},
		&webSpeechProvider{client: client},
	}}
}

// NewWithProviders builds a Transcriber over an explicit chain.
func NewWithProviders(providers ...Provider) *Transcriber {
	return &Transcriber{providers: providers}
}

// Transcribe runs the chain against the audio file provided. The
// empty string signals total failure; no error ever escapes to the
// caller. Provider unavailability (missing credentials) and
// recognition failure (no speech found) differ only in how they are
// logged - both advance the chain.
func (transcriber *Transcriber) Transcribe(audioPath string) string {
	for _, provider := range transcriber.providers {
		if !provider.Available() {
			log.Emit(logger.DEBUG, "provider %s unavailable (missing credentials/binary), skipping\n", provider.Name())
			continue
		}

		text, err := provider.Transcribe(audioPath)
		if err != nil {
			log.Emit(logger.WARNING, "provider %s failed: %s\n", provider.Name(), err.Error())
			continue
		}

		if text == "" {
			log.Emit(logger.INFO, "provider %s found no speech, advancing chain\n", provider.Name())
			continue
		}

		log.Emit(logger.SUCCESS, "provider %s transcribed %d chars\n", provider.Name(), len(text))
		return text
	}

	log.Emit(logger.WARNING, "transcription chain exhausted for %s\n", audioPath)
	return ""
}
