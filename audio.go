package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/hajimehoshi/go-mp3"
	"github.com/hajimehoshi/oto/v2"
)

// audioSampleRate is the rate of the shared output context. Cue files
// recorded at another rate fall back to the system beep.
const audioSampleRate = 44100

// AudioManager plays the short mp3 cues that confirm toggles.
type AudioManager struct {
	enabled bool
	volume  float64
	cues    map[string]string
	logger  *slog.Logger

	initOnce sync.Once
	ctx      *oto.Context
	initErr  error

	mu    sync.Mutex
	cache map[string][]byte
}

// NewAudioManager creates a new audio manager
func NewAudioManager(config *Config, logger *slog.Logger) *AudioManager {
	return &AudioManager{
		enabled: config.Audio.Enabled,
		volume:  float64(config.Audio.Volume) / 100,
		cues:    config.Audio.Cues,
		logger:  logger,
		cache:   make(map[string][]byte),
	}
}

// Play starts the named cue and returns immediately.
func (am *AudioManager) Play(cue string) {
	if !am.enabled {
		return
	}
	go am.PlayWait(cue)
}

// PlayWait plays the named cue and returns when it has finished.
func (am *AudioManager) PlayWait(cue string) {
	if !am.enabled {
		return
	}
	if err := am.play(cue); err != nil {
		am.logger.Debug("Cue playback fell back to beep", "cue", cue, "error", err)
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			am.logger.Warn("Failed to beep", "error", err)
		}
	}
}

func (am *AudioManager) play(cue string) error {
	pcm, err := am.load(cue)
	if err != nil {
		return err
	}
	am.initOnce.Do(func() {
		var ready chan struct{}
		am.ctx, ready, am.initErr = oto.NewContext(audioSampleRate, 2, oto.FormatSignedInt16LE)
		if am.initErr == nil {
			<-ready
		}
	})
	if am.initErr != nil {
		return fmt.Errorf("audio output: %w", am.initErr)
	}

	player := am.ctx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.SetVolume(am.volume)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}
	return player.Err()
}

// load decodes the cue file once and keeps the PCM samples.
func (am *AudioManager) load(cue string) ([]byte, error) {
	am.mu.Lock()
	defer am.mu.Unlock()
	if pcm, ok := am.cache[cue]; ok {
		return pcm, nil
	}

	path, ok := am.cues[cue]
	if !ok || path == "" {
		return nil, fmt.Errorf("no file configured for cue %q", cue)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if dec.SampleRate() != audioSampleRate {
		return nil, fmt.Errorf("%s: sample rate %d, want %d", path, dec.SampleRate(), audioSampleRate)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	am.cache[cue] = pcm
	return pcm, nil
}
