// Package announcer dispatches spoken messages to a voice sink.
package announcer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"interval_timer/internal/logger"

	"github.com/jonboulle/clockwork"
)

// ErrSinkUnavailable means the sink cannot speak right now; the message is skipped.
var ErrSinkUnavailable = errors.New("voice sink unavailable")

// Voice identifies a speech voice offered by a sink. The zero Voice asks the
// sink for its default.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang,omitempty"`
}

// Sink is the underlying speech output.
type Sink interface {
	// Voices returns the currently available voices; may be empty until ready.
	Voices() []Voice
	// VoicesReady is closed once the voice list has been populated.
	VoicesReady() <-chan struct{}
	// Speak dispatches text and returns without waiting for playback to finish.
	Speak(ctx context.Context, text string, voice Voice) error
}

// Options tunes voice selection.
type Options struct {
	// Voice is the preferred voice name, matched case-insensitively.
	Voice string
	// VoiceWait bounds the one-time wait for VoicesReady.
	VoiceWait time.Duration
	Clock     clockwork.Clock
}

// Announcer speaks run transitions through a Sink.
type Announcer struct {
	sink      Sink
	preferred string
	wait      time.Duration
	clock     clockwork.Clock
	log       *logger.Logger

	waitOnce sync.Once
}

func New(sink Sink, opts Options, log *logger.Logger) *Announcer {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Announcer{
		sink:      sink,
		preferred: strings.TrimSpace(opts.Voice),
		wait:      opts.VoiceWait,
		clock:     opts.Clock,
		log:       log,
	}
}

// Announce dispatches text and returns once the sink accepted it.
func (a *Announcer) Announce(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	voice := a.voice(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	err := a.sink.Speak(ctx, text, voice)
	switch {
	case err == nil:
		a.log.Debugw("announced", "text", text, "voice", voice.Name)
		return nil
	case errors.Is(err, ErrSinkUnavailable):
		a.log.Warnw("announce_skipped", "text", text, "err", err)
		return nil
	default:
		return err
	}
}

// voice picks the voice for the next utterance. Only the very first call may
// block, waiting for the sink to report its voices.
func (a *Announcer) voice(ctx context.Context) Voice {
	a.waitOnce.Do(func() {
		if len(a.sink.Voices()) == 0 {
			a.awaitVoices(ctx)
		}
	})
	return pickVoice(a.sink.Voices(), a.preferred)
}

func (a *Announcer) awaitVoices(ctx context.Context) {
	if a.wait <= 0 {
		return
	}
	select {
	case <-a.sink.VoicesReady():
	case <-a.clock.After(a.wait):
		a.log.Warnw("voices_not_ready", "waited", a.wait.String())
	case <-ctx.Done():
	}
}

func pickVoice(voices []Voice, preferred string) Voice {
	if len(voices) == 0 {
		return Voice{}
	}
	if preferred != "" {
		for _, v := range voices {
			if strings.EqualFold(v.Name, preferred) {
				return v
			}
		}
	}
	return voices[0]
}
