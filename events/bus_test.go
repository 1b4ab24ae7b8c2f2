package events

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: bus whose operational log goes to buf
func newTestBus(t *testing.T) (*Bus, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewBus(logger), &buf
}

type memoryRecorder struct {
	lines []string
}

func (m *memoryRecorder) Record(message string) {
	m.lines = append(m.lines, message)
}

// TestPublish_RegistrationOrder verifies subscribers run in the order they
// were registered
func TestPublish_RegistrationOrder(t *testing.T) {
	bus, _ := newTestBus(t)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		bus.Subscribe(func(Event) error {
			order = append(order, name)
			return nil
		})
	}

	bus.Publish(New(PageAccessed, "index"))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

// TestPublish_KindFilter verifies a subscriber only sees the kinds it asked for
func TestPublish_KindFilter(t *testing.T) {
	bus, _ := newTestBus(t)

	var seen []Kind
	bus.Subscribe(func(ev Event) error {
		seen = append(seen, ev.Kind)
		return nil
	}, FileReadError)

	bus.Publish(New(PageAccessed, "about"))
	bus.Publish(New(FileReadSuccess, "about.html"))
	bus.Publish(New(FileReadError, "contact.html"))

	assert.Equal(t, []Kind{FileReadError}, seen)
}

// TestPublish_FailingSubscriberIsolated verifies errors and panics do not
// stop delivery to later subscribers
func TestPublish_FailingSubscriberIsolated(t *testing.T) {
	bus, logBuf := newTestBus(t)

	delivered := 0
	bus.Subscribe(func(Event) error { return errors.New("disk on fire") })
	bus.Subscribe(func(Event) error { panic("boom") })
	bus.Subscribe(func(Event) error {
		delivered++
		return nil
	})

	require.NotPanics(t, func() {
		bus.Publish(New(NonHomeAccess, "/about"))
	})

	assert.Equal(t, 1, delivered, "last subscriber should still run")
	assert.Contains(t, logBuf.String(), "disk on fire")
	assert.Contains(t, logBuf.String(), "subscriber panicked: boom")
}

// TestPublish_NoSubscribers verifies publishing into an empty bus is a no-op
func TestPublish_NoSubscribers(t *testing.T) {
	bus, logBuf := newTestBus(t)

	bus.Publish(New(FileReadSuccess, "index.html"))

	assert.Empty(t, logBuf.String())
}

// TestConsoleEcho verifies rendered messages are echoed one per line
func TestConsoleEcho(t *testing.T) {
	bus, _ := newTestBus(t)
	var out bytes.Buffer
	bus.Subscribe(ConsoleEcho(&out))

	bus.Publish(New(PageAccessed, "about"))
	bus.Publish(New(NonHomeAccess, "/about"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"The about page was accessed.",
		"Non-home page accessed: /about",
	}, lines)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

// TestConsoleEcho_WriteError verifies write failures surface as subscriber
// errors rather than panics
func TestConsoleEcho_WriteError(t *testing.T) {
	bus, logBuf := newTestBus(t)
	rec := &memoryRecorder{}
	bus.Subscribe(ConsoleEcho(failingWriter{}))
	bus.Subscribe(RecordTo(rec))

	bus.Publish(New(FileReadError, "missing.html"))

	assert.Equal(t, []string{"Error reading file: missing.html"}, rec.lines)
	assert.Contains(t, logBuf.String(), "event subscriber failed")
}

// TestEventMessage verifies the text rendered for each kind
func TestEventMessage(t *testing.T) {
	tests := []struct {
		kind     Kind
		subject  string
		expected string
	}{
		{PageAccessed, "index", "The index page was accessed."},
		{NonHomeAccess, "/events", "Non-home page accessed: /events"},
		{FileReadSuccess, "events.html", "File read successfully: events.html"},
		{FileReadError, "events.html", "Error reading file: events.html"},
		{Kind("other"), "x", "other: x"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ev := New(tt.kind, tt.subject)
			assert.Equal(t, tt.expected, ev.Message())
			assert.Equal(t, tt.kind.Valid(), tt.kind != Kind("other"))
		})
	}
}
