package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

/*
Engine plays one decoded audio buffer to completion. Play blocks until the
buffer has fully drained; callers must not start overlapping playback from
two turns.
*/
type Engine interface {
	Play(ctx context.Context, samples []float32) error
}

/*
Player is the platform-backed Engine. The underlying audio context is created
lazily on first use and shared for the life of the process, since the
platform allows only one.
*/
type Player struct {
	mu   sync.Mutex
	otoC *oto.Context
}

func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	otoCtx, err := p.context()
	if err != nil {
		return fmt.Errorf("audio device unavailable: %w", err)
	}

	player := otoCtx.NewPlayer(bytes.NewReader(encodeFloat32LE(samples)))
	defer player.Close()

	log.Debug("playing audio", "samples", len(samples), "seconds", float64(len(samples))/SampleRate)
	player.Play()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return nil
}

func (p *Player) context() (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.otoC != nil {
		return p.otoC, nil
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}

	<-ready
	p.otoC = otoCtx
	return p.otoC, nil
}
