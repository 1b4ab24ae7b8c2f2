// Package logsink appends timestamped lines to one log file per UTC day.
package logsink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimestampFormat is ISO 8601 with millisecond precision. Timestamps are
// always rendered in UTC, so the zone prints as "Z".
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// DefaultBufferSize is the number of lines that may wait for the flush loop
// before Record blocks.
const DefaultBufferSize = 256

type entry struct {
	at      time.Time
	message string
	flushed chan struct{} // non-nil for flush markers
}

// Sink is an append-only daily log. Lines are written by a background loop
// in the order Record was called. Record waits for queue space when the
// buffer is full.
type Sink struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
	debug  bool

	mu     sync.RWMutex // guards closed and sends on ch
	closed bool
	ch     chan entry
	done   chan struct{}

	writeMu sync.Mutex
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock replaces time.Now, mostly for tests that cross midnight.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// WithLogger sets the operational logger used to report append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// WithDebug logs every appended file path at debug level.
func WithDebug(debug bool) Option {
	return func(s *Sink) { s.debug = debug }
}

// WithBufferSize sets the queue length. With zero, every Record waits for the
// flush loop to take the line.
func WithBufferSize(n int) Option {
	return func(s *Sink) { s.ch = make(chan entry, n) }
}

// New creates the log directory if needed and starts the flush loop.
func New(dir string, opts ...Option) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	s := &Sink{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
		ch:     make(chan entry, DefaultBufferSize),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	go s.flushLoop()
	return s, nil
}

// Dir returns the log directory.
func (s *Sink) Dir() string {
	return s.dir
}

// PathFor returns the log file that holds lines recorded at t.
func (s *Sink) PathFor(t time.Time) string {
	return filepath.Join(s.dir, t.UTC().Format("2006-01-02")+".log")
}

// Record queues one line. The timestamp and the target file are fixed here,
// at call time. Failures are reported on the operational logger only.
func (s *Sink) Record(message string) {
	e := entry{at: s.now().UTC(), message: message}

	s.mu.RLock()
	if !s.closed {
		s.ch <- e
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	// Queued lines go first
	<-s.done
	s.write(e)
}

// Flush blocks until every line recorded before the call is on disk.
func (s *Sink) Flush() {
	marker := entry{flushed: make(chan struct{})}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	s.ch <- marker
	s.mu.RUnlock()

	<-marker.flushed
}

// Close drains the queue and stops the flush loop. Lines recorded after
// Close are appended synchronously once the queue is empty.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *Sink) flushLoop() {
	defer close(s.done)
	for e := range s.ch {
		if e.flushed != nil {
			close(e.flushed)
			continue
		}
		s.write(e)
	}
}

func (s *Sink) write(e entry) {
	path := s.PathFor(e.at)
	line := fmt.Sprintf("%s - %s\n", e.at.Format(TimestampFormat), e.message)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Warn("failed to open log file", "path", path, "error", err)
		return
	}
	if _, err := f.WriteString(line); err != nil {
		s.logger.Warn("failed to append log line", "path", path, "error", err)
	}
	if err := f.Close(); err != nil {
		s.logger.Warn("failed to close log file", "path", path, "error", err)
	}

	if s.debug {
		s.logger.Debug("log line appended", "path", path)
	}
}
