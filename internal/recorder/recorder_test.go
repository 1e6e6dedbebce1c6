package recorder

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeDevice feeds a fixed PCM chunk on every Read until closed.
type fakeDevice struct {
	mu      sync.Mutex
	openErr error
	chunk   []byte
	closed  bool
	opens   int
}

func (d *fakeDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return d.openErr
	}
	d.opens++
	d.closed = false
	return nil
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, io.EOF
	}
	n := copy(p, d.chunk)
	return n, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// loudChunk is a full-scale square wave, two S16LE samples.
var loudChunk = []byte{0xff, 0x7f, 0xff, 0x7f}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestRecorderFullCycle(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{chunk: loudChunk}
	r := New(dev)
	require.Equal(t, StateIdle, r.State())
	require.Equal(t, "fr", r.Language)
	require.Contains(t, r.Name, "Recording ")

	require.NoError(t, r.Start(context.Background()))
	require.Equal(t, StateRecording, r.State())
	waitFor(t, func() bool { return r.Level() > 0.9 })

	r.TickSecond()
	r.TickSecond()
	require.Equal(t, 2*time.Second, r.Duration())

	require.NoError(t, r.Pause())
	require.Equal(t, StatePaused, r.State())
	require.Zero(t, r.Level(), "level drops while paused")
	r.TickSecond()
	require.Equal(t, 2*time.Second, r.Duration(), "clock holds while paused")

	require.NoError(t, r.Resume())
	require.Equal(t, StateRecording, r.State())

	require.NoError(t, r.Stop())
	require.Equal(t, StateStopped, r.State())
	require.NotEmpty(t, r.Blob())
	require.Equal(t, 2*time.Second, r.Duration(), "duration survives stop for the save form")
}

func TestRecorderRejectsWrongStateTransitions(t *testing.T) {
	t.Parallel()

	r := New(&fakeDevice{chunk: loudChunk})

	require.Error(t, r.Pause(), "pause from idle")
	require.Error(t, r.Resume(), "resume from idle")
	require.Error(t, r.Stop(), "stop from idle")
	require.Nil(t, r.Blob(), "no blob before stop")

	require.NoError(t, r.Start(context.Background()))
	require.Error(t, r.Start(context.Background()), "start while recording")
	require.Error(t, r.Resume(), "resume while recording")

	require.NoError(t, r.Stop())
	require.Error(t, r.Stop(), "stop twice")
}

func TestRecorderPermissionDenied(t *testing.T) {
	t.Parallel()

	r := New(&fakeDevice{openErr: ErrPermission})
	err := r.Start(context.Background())
	require.ErrorIs(t, err, ErrPermission)
	require.Equal(t, StateIdle, r.State(), "denied start leaves the recorder idle")
}

func TestRecorderResetFromAnyState(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{chunk: loudChunk}
	r := New(dev)
	require.NoError(t, r.Start(context.Background()))
	waitFor(t, func() bool { return r.Level() > 0 })
	r.TickSecond()

	r.Reset()
	require.Equal(t, StateIdle, r.State())
	require.Zero(t, r.Duration(), "reset zeroes the clock")
	require.Nil(t, r.Blob())
	require.Contains(t, r.Name, "Recording ", "reset restores a timestamped default name")
}

func TestRecorderSaveResetsOnlyOnSuccess(t *testing.T) {
	t.Parallel()

	dev := &fakeDevice{chunk: loudChunk}
	r := New(dev)
	r.IdentifySpeakers = true
	require.NoError(t, r.Start(context.Background()))
	waitFor(t, func() bool { return r.Level() > 0 })
	r.TickSecond()
	require.NoError(t, r.Stop())
	blob := r.Blob()
	require.NotEmpty(t, blob)

	// a failed upload keeps the take for retry
	uploadErr := errors.New("network down")
	err := r.Save(func(b []byte, meta Meta) error {
		require.Equal(t, blob, b)
		require.True(t, meta.IdentifySpeakers)
		require.Equal(t, time.Second, meta.Duration)
		return uploadErr
	})
	require.ErrorIs(t, err, uploadErr)
	require.Equal(t, StateStopped, r.State())
	require.Equal(t, blob, r.Blob(), "failed save keeps the recording")

	// retry succeeds and resets
	require.NoError(t, r.Save(func(b []byte, meta Meta) error { return nil }))
	require.Equal(t, StateIdle, r.State())
	require.Nil(t, r.Blob())
	require.Zero(t, r.Duration())
}

func TestRecorderSaveRequiresStopped(t *testing.T) {
	t.Parallel()

	r := New(&fakeDevice{chunk: loudChunk})
	err := r.Save(func([]byte, Meta) error { return nil })
	require.Error(t, err)

	require.NoError(t, r.Start(context.Background()))
	err = r.Save(func([]byte, Meta) error { return nil })
	require.Error(t, err)
}

func TestRMS(t *testing.T) {
	t.Parallel()

	require.Zero(t, rms(nil))
	require.Zero(t, rms([]byte{0x01}))
	require.Zero(t, rms([]byte{0x00, 0x00, 0x00, 0x00}), "silence")
	require.InDelta(t, 1.0, rms(loudChunk), 0.001, "full-scale square wave")
}
