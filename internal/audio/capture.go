package audio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	// ChunkFrames is how many frames each device read returns.
	ChunkFrames = 1024
	// SampleRate is the capture rate in Hz.
	SampleRate = 44100
)

// Device is an open mono float32 input stream.
type Device interface {
	Start() error
	// Read blocks until the next chunk of samples is available.
	Read() ([]float32, error)
	Stop() error
	Close() error
}

// Recording is raw captured audio.
type Recording struct {
	Samples    []float32
	SampleRate int
}

// Duration in seconds.
func (r Recording) Duration() float64 {
	if r.SampleRate == 0 {
		return 0
	}
	return float64(len(r.Samples)) / float64(r.SampleRate)
}

// Capture records from dev until stop is closed or ctx is done. The read
// loop and the stop wait run as two tasks that are both joined before
// Capture returns. The loop notices the stop flag between chunks, so up to
// one extra chunk may be recorded after the signal. A read error ends the
// recording; the samples read so far are returned with it.
func Capture(ctx context.Context, dev Device, sampleRate int, stop <-chan struct{}) (Recording, error) {
	if err := dev.Start(); err != nil {
		return Recording{}, fmt.Errorf("start input stream: %w", err)
	}

	var (
		stopped atomic.Bool
		samples []float32
	)
	readerDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopped.Store(true)
		select {
		case <-stop:
		case <-gctx.Done():
		case <-readerDone:
		}
		return nil
	})
	g.Go(func() error {
		defer close(readerDone)
		for !stopped.Load() {
			chunk, err := dev.Read()
			if err != nil {
				return fmt.Errorf("read input stream: %w", err)
			}
			samples = append(samples, chunk...)
		}
		return nil
	})

	err := g.Wait()
	if stopErr := dev.Stop(); stopErr != nil && err == nil {
		err = fmt.Errorf("stop input stream: %w", stopErr)
	}

	rec := Recording{Samples: samples, SampleRate: sampleRate}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return rec, err
}

// Opener opens the input device for one recording.
type Opener func() (Device, error)

// Recorder opens a fresh device per recording and always closes it.
type Recorder struct {
	open       Opener
	sampleRate int
}

func NewRecorder(open Opener, sampleRate int) *Recorder {
	return &Recorder{open: open, sampleRate: sampleRate}
}

func (r *Recorder) Record(ctx context.Context, stop <-chan struct{}) (rec Recording, err error) {
	dev, err := r.open()
	if err != nil {
		return Recording{}, fmt.Errorf("open input device: %w", err)
	}
	defer func() {
		if closeErr := dev.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close input device: %w", closeErr))
		}
	}()

	return Capture(ctx, dev, r.sampleRate, stop)
}
