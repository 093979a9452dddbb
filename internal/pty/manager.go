// Package pty runs a program under a pseudo-terminal so synthetic input can
// be written to it.
package pty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotStarted is returned for operations on a manager with no process.
var ErrNotStarted = errors.New("PTY not started")

const stopTimeout = 2 * time.Second

// Options describes the program to run.
type Options struct {
	Command    string
	Args       []string
	WorkingDir string
	Rows       uint16
	Cols       uint16
}

// Manager manages a PTY and the process running in it
type Manager struct {
	opts Options

	mu   sync.Mutex
	ptmx *os.File
	cmd  *exec.Cmd
	done chan struct{}

	outputMu     sync.RWMutex
	outputBuffer *RingBuffer

	log zerolog.Logger
}

// RingBuffer is a simple ring buffer for storing recent output
type RingBuffer struct {
	data  []byte
	size  int
	write int
}

// NewRingBuffer creates a new ring buffer with the given size
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write writes data to the ring buffer
func (rb *RingBuffer) Write(p []byte) {
	for _, b := range p {
		rb.data[rb.write] = b
		rb.write = (rb.write + 1) % rb.size
	}
}

// String returns the buffer contents as a string
func (rb *RingBuffer) String() string {
	// Return from oldest to newest
	result := make([]byte, rb.size)
	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(rb.write+i)%rb.size]
	}
	// Trim null bytes
	start := 0
	for start < len(result) && result[start] == 0 {
		start++
	}
	return string(result[start:])
}

// NewManager creates a new PTY manager
func NewManager(opts Options) (*Manager, error) {
	if opts.Command == "" {
		return nil, fmt.Errorf("command is required")
	}
	if opts.Rows == 0 {
		opts.Rows = 24
	}
	if opts.Cols == 0 {
		opts.Cols = 80
	}

	return &Manager{
		opts:         opts,
		outputBuffer: NewRingBuffer(4096), // Keep last 4KB of output
		log:          log.With().Str("component", "pty").Logger(),
	}, nil
}

// Start starts the process in a PTY
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx != nil {
		return fmt.Errorf("PTY already started")
	}

	cmd := exec.CommandContext(ctx, m.opts.Command, m.opts.Args...)
	if m.opts.WorkingDir != "" {
		cmd.Dir = m.opts.WorkingDir
	}
	cmd.Env = os.Environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: m.opts.Rows, Cols: m.opts.Cols})
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.done = make(chan struct{})

	m.log.Info().Str("command", m.opts.Command).Int("pid", cmd.Process.Pid).Msg("Started process")

	go m.readOutput(ptmx)

	go func(done chan struct{}) {
		err := cmd.Wait()
		m.log.Debug().Err(err).Msg("Process exited")
		close(done)
	}(m.done)

	return nil
}

// Close stops the process and closes the PTY
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Signal(os.Interrupt)
		select {
		case <-m.done:
		case <-time.After(stopTimeout):
			m.cmd.Process.Kill()
			<-m.done
		}
	}

	var err error
	if m.ptmx != nil {
		err = m.ptmx.Close()
		m.ptmx = nil
	}
	m.cmd = nil
	return err
}

// readOutput reads from the PTY and stores output in the ring buffer
func (m *Manager) readOutput(ptmx *os.File) {
	buf := make([]byte, 1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			m.outputMu.Lock()
			m.outputBuffer.Write(buf[:n])
			m.outputMu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				m.log.Debug().Err(err).Msg("PTY read stopped")
			}
			return
		}
	}
}

// Write sends raw bytes to the process's terminal input
func (m *Manager) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return 0, ErrNotStarted
	}
	return m.ptmx.Write(p)
}

// RecentOutput returns recent output from the process
func (m *Manager) RecentOutput() string {
	m.outputMu.RLock()
	defer m.outputMu.RUnlock()
	return m.outputBuffer.String()
}

// Resize resizes the PTY window
func (m *Manager) Resize(rows, cols uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}

	return pty.Setsize(m.ptmx, &pty.Winsize{
		Rows: rows,
		Cols: cols,
	})
}

// Size reports the terminal size in cells.
func (m *Manager) Size() (rows, cols uint16, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return 0, 0, ErrNotStarted
	}
	ws, err := pty.GetsizeFull(m.ptmx)
	if err != nil {
		return 0, 0, err
	}
	return ws.Rows, ws.Cols, nil
}

// IsRunning returns whether the process is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}
