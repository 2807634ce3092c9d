package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

// OtoDevice is the speaker output.
type OtoDevice struct {
	ctx   *oto.Context
	ready chan struct{}

	mu     sync.Mutex
	player oto.Player
}

// NewOtoDevice opens the platform audio context. Only one may exist per
// process.
func NewOtoDevice(sampleRate int) (*OtoDevice, error) {
	c, ready, err := oto.NewContext(sampleRate, channels, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("open audio context: %w", err)
	}
	return &OtoDevice{ctx: c, ready: ready}, nil
}

// Resume waits for the context to become ready and resumes it.
func (d *OtoDevice) Resume(ctx context.Context) error {
	select {
	case <-d.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := d.ctx.Resume(); err != nil {
		return err
	}
	return d.ctx.Err()
}

func (d *OtoDevice) Play(r io.Reader) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		return errors.New("audio device already playing")
	}
	d.player = d.ctx.NewPlayer(r)
	d.player.Play()
	return nil
}

func (d *OtoDevice) Close() error {
	d.mu.Lock()
	p := d.player
	d.player = nil
	d.mu.Unlock()

	var err error
	if p != nil {
		err = p.Close()
	}
	return errors.Join(err, d.ctx.Suspend())
}
