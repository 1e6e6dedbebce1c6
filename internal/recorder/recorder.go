// Package recorder implements the capture widget behind audio summaries:
// a small state machine over a capture device, with a one-second duration
// clock and a live input level for the meter.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// State is the recorder lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrPermission marks microphone access denials so the UI can show the
// dedicated message instead of a generic error.
var ErrPermission = errors.New("recorder: microphone access denied")

var errWrongState = errors.New("recorder: invalid state for operation")

// Meta is the form state saved alongside the blob.
type Meta struct {
	Name             string
	Language         string
	IdentifySpeakers bool
	Duration         time.Duration
}

// Recorder drives a Device through idle -> recording -> paused -> stopped.
// All methods are safe for concurrent use; the capture goroutine feeds the
// buffer while the UI thread queries state.
type Recorder struct {
	mu       sync.Mutex
	state    State
	dev      Device
	buf      bytes.Buffer
	duration time.Duration
	level    float64

	// form fields, editable while idle
	Name             string
	Language         string
	IdentifySpeakers bool

	clock func() time.Time
}

// New returns an idle recorder over dev with a timestamped default name.
func New(dev Device) *Recorder {
	r := &Recorder{dev: dev, clock: time.Now, Language: "fr"}
	r.Name = defaultName(r.clock())
	return r
}

// State returns the current lifecycle position.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Duration returns accumulated recording time. Only Reset zeroes it.
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// Level returns the last sampled input level in [0,1]. Zero while not
// recording.
func (r *Recorder) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return 0
	}
	return r.level
}

// Start requests the capture device and transitions idle -> recording.
// A denied device leaves the recorder idle with ErrPermission.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return fmt.Errorf("%w: start from %s", errWrongState, r.state)
	}
	r.mu.Unlock()

	if err := r.dev.Open(ctx); err != nil {
		if errors.Is(err, ErrPermission) {
			return err
		}
		return fmt.Errorf("opening capture device: %w", err)
	}

	r.mu.Lock()
	r.state = StateRecording
	r.mu.Unlock()

	go r.captureLoop()
	return nil
}

func (r *Recorder) captureLoop() {
	chunk := make([]byte, 4096)
	for {
		n, err := r.dev.Read(chunk)
		r.mu.Lock()
		if r.state == StateStopped || r.state == StateIdle {
			r.mu.Unlock()
			return
		}
		if n > 0 && r.state == StateRecording {
			r.buf.Write(chunk[:n])
			r.level = rms(chunk[:n])
		}
		r.mu.Unlock()
		if err != nil {
			// EOF or device teardown ends the loop; Stop handles state.
			return
		}
	}
}

// TickSecond advances the duration clock. The UI calls it from its
// one-second ticker; paused and stopped states ignore it.
func (r *Recorder) TickSecond() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRecording {
		r.duration += time.Second
	}
}

// Pause transitions recording -> paused. Chunks read while paused are
// dropped and the clock holds.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return fmt.Errorf("%w: pause from %s", errWrongState, r.state)
	}
	r.state = StatePaused
	r.level = 0
	return nil
}

// Resume transitions paused -> recording.
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", errWrongState, r.state)
	}
	r.state = StateRecording
	return nil
}

// Stop finalizes the blob and releases the device. The preview (Blob) is
// available afterwards.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if r.state != StateRecording && r.state != StatePaused {
		state := r.state
		r.mu.Unlock()
		return fmt.Errorf("%w: stop from %s", errWrongState, state)
	}
	r.state = StateStopped
	r.level = 0
	r.mu.Unlock()

	if err := r.dev.Close(); err != nil {
		return fmt.Errorf("releasing capture device: %w", err)
	}
	return nil
}

// Blob returns the finalized capture. Empty until Stop.
func (r *Recorder) Blob() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateStopped {
		return nil
	}
	out := make([]byte, r.buf.Len())
	copy(out, r.buf.Bytes())
	return out
}

// Reset discards the blob and clock and returns to idle with a freshly
// timestamped default name. Valid from any state; an open device is closed.
func (r *Recorder) Reset() {
	r.mu.Lock()
	wasLive := r.state == StateRecording || r.state == StatePaused
	r.state = StateIdle
	r.buf.Reset()
	r.duration = 0
	r.level = 0
	r.Name = defaultName(r.clock())
	r.mu.Unlock()

	if wasLive {
		_ = r.dev.Close()
	}
}

// Save hands the finalized blob plus metadata to complete, then resets.
// A failed completion keeps the recording so the user can retry.
func (r *Recorder) Save(complete func(blob []byte, meta Meta) error) error {
	r.mu.Lock()
	if r.state != StateStopped {
		state := r.state
		r.mu.Unlock()
		return fmt.Errorf("%w: save from %s", errWrongState, state)
	}
	blob := make([]byte, r.buf.Len())
	copy(blob, r.buf.Bytes())
	meta := Meta{
		Name:             r.Name,
		Language:         r.Language,
		IdentifySpeakers: r.IdentifySpeakers,
		Duration:         r.duration,
	}
	r.mu.Unlock()

	if err := complete(blob, meta); err != nil {
		return err
	}
	r.Reset()
	return nil
}

func defaultName(t time.Time) string {
	return "Recording " + t.Format("2006-01-02 15:04")
}

// rms computes the normalized root-mean-square level of little-endian
// 16-bit PCM samples.
func rms(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}
	var sum float64
	n := 0
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		f := float64(s) / math.MaxInt16
		sum += f * f
		n++
	}
	if n == 0 {
		return 0
	}
	level := math.Sqrt(sum / float64(n))
	if level > 1 {
		level = 1
	}
	return level
}
