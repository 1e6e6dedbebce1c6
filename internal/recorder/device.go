package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Device abstracts microphone capture. Read returns raw little-endian
// 16-bit mono PCM at 16 kHz.
type Device interface {
	Open(ctx context.Context) error
	Read(p []byte) (int, error)
	Close() error
}

// ExecDevice captures by spawning an external recorder process (arecord on
// ALSA systems, sox's rec elsewhere) and reading its stdout.
type ExecDevice struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr lockedBuffer
}

// lockedBuffer collects the capture process's stderr; the process writes
// from its own goroutine while Read may inspect it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// capture command candidates, first found wins
var captureCommands = [][]string{
	{"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw", "-"},
	{"rec", "-q", "-t", "raw", "-b", "16", "-e", "signed", "-r", "16000", "-c", "1", "-"},
}

func (d *ExecDevice) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd != nil {
		return errors.New("recorder: device already open")
	}

	var lastErr error
	for _, candidate := range captureCommands {
		path, err := exec.LookPath(candidate[0])
		if err != nil {
			lastErr = err
			continue
		}
		cmd := exec.CommandContext(ctx, path, candidate[1:]...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return err
		}
		d.stderr.Reset()
		cmd.Stderr = &d.stderr
		if err := cmd.Start(); err != nil {
			lastErr = classifyOpenError(err, d.stderr.String())
			continue
		}
		d.cmd = cmd
		d.stdout = stdout
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no capture command found")
	}
	return fmt.Errorf("recorder: %w", lastErr)
}

func (d *ExecDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	stdout := d.stdout
	d.mu.Unlock()
	if stdout == nil {
		return 0, d.readErr(io.EOF)
	}
	n, err := stdout.Read(p)
	if err != nil {
		return n, d.readErr(err)
	}
	return n, nil
}

// readErr upgrades an end-of-stream to ErrPermission when the capture
// process died complaining about device access. arecord prints the denial
// on stderr after Start has already succeeded, so Open never sees it.
func (d *ExecDevice) readErr(err error) error {
	if strings.Contains(strings.ToLower(d.stderr.String()), "permission denied") {
		return ErrPermission
	}
	return err
}

func (d *ExecDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd == nil {
		return nil
	}
	_ = d.stdout.Close()
	_ = d.cmd.Process.Kill()
	_ = d.cmd.Wait()
	d.cmd = nil
	d.stdout = nil
	return nil
}

func classifyOpenError(err error, stderr string) error {
	if errors.Is(err, os.ErrPermission) ||
		strings.Contains(strings.ToLower(stderr), "permission denied") {
		return ErrPermission
	}
	return err
}
