package console

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Speaker plays short tones for strike outcomes. A disabled Speaker is
// silent; the game never depends on audio.
type Speaker struct {
	mu      sync.Mutex
	enabled bool
}

// NewSpeaker starts the audio device when on is set. Failing to start it is
// logged and leaves the Speaker disabled.
func NewSpeaker(on bool) *Speaker {
	s := &Speaker{}
	if !on {
		return s
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("Audio initialization failed: %v", err)
		return s
	}
	s.enabled = true
	return s
}

func (s *Speaker) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Speaker) Hit()  { s.play(880, 60*time.Millisecond) }
func (s *Speaker) Sink() { s.play(440, 250*time.Millisecond) }
func (s *Speaker) Miss() { s.play(220, 30*time.Millisecond) }

func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		speaker.Close()
		s.enabled = false
	}
}

func (s *Speaker) play(freq int, d time.Duration) {
	if !s.Enabled() {
		return
	}
	t, err := tone(freq, d)
	if err != nil {
		log.Printf("Failed to build %dHz tone: %v", freq, err)
		return
	}
	speaker.Play(t)
}

func tone(freq int, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, float64(freq))
	if err != nil {
		return nil, err
	}
	return beep.Take(sampleRate.N(d), sine), nil
}
