package announcer

import (
	"context"

	"interval_timer/internal/logger"
)

// LogSink writes utterances to the structured log. Its voice list is fixed at
// construction, so it is ready immediately.
type LogSink struct {
	log    *logger.Logger
	voices []Voice
	ready  chan struct{}
}

func NewLogSink(log *logger.Logger, voiceNames ...string) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	voices := make([]Voice, 0, len(voiceNames))
	for _, n := range voiceNames {
		voices = append(voices, Voice{Name: n})
	}
	ready := make(chan struct{})
	close(ready)
	return &LogSink{log: log, voices: voices, ready: ready}
}

func (s *LogSink) Voices() []Voice {
	out := make([]Voice, len(s.voices))
	copy(out, s.voices)
	return out
}

func (s *LogSink) VoicesReady() <-chan struct{} { return s.ready }

func (s *LogSink) Speak(ctx context.Context, text string, voice Voice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Infow("speak", "text", text, "voice", voice.Name)
	return nil
}
