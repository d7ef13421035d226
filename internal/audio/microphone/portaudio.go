// Package microphone reads the default input device through PortAudio.
package microphone

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"virtual-doctor/internal/audio"
)

// Microphone is a mono float32 input stream on the default device.
type Microphone struct {
	stream *portaudio.Stream
	buf    []float32
}

// Open initializes PortAudio and opens the default input. Close releases
// both the stream and the PortAudio session.
func Open(sampleRate, framesPerBuffer int) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open default input: %w", err)
	}
	return &Microphone{stream: stream, buf: buf}, nil
}

// Opener adapts Open for audio.NewRecorder.
func Opener(sampleRate, framesPerBuffer int) audio.Opener {
	return func() (audio.Device, error) {
		m, err := Open(sampleRate, framesPerBuffer)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func (m *Microphone) Start() error {
	return m.stream.Start()
}

// Read blocks for one buffer. The returned slice is a copy.
func (m *Microphone) Read() ([]float32, error) {
	if err := m.stream.Read(); err != nil {
		return nil, err
	}
	chunk := make([]float32, len(m.buf))
	copy(chunk, m.buf)
	return chunk, nil
}

func (m *Microphone) Stop() error {
	return m.stream.Stop()
}

func (m *Microphone) Close() error {
	err := m.stream.Close()
	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}
	return err
}
