package events

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Handler receives a published event. A returned error is reported on the
// bus's operational logger and otherwise ignored.
type Handler func(Event) error

// Bus is an in-process publish/subscribe hub. Delivery is synchronous and
// follows registration order per kind.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Kind][]Handler
	logger *slog.Logger
}

// NewBus creates an empty bus. A nil logger falls back to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[Kind][]Handler),
		logger: logger,
	}
}

// Subscribe registers h for the given kinds, or for every kind when none are
// given.
func (b *Bus) Subscribe(h Handler, kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range kinds {
		b.subs[k] = append(b.subs[k], h)
	}
}

// Publish delivers ev to every subscriber of its kind before returning. A
// failing subscriber never stops delivery to the ones after it.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := b.subs[ev.Kind]
	b.mu.RUnlock()

	for i, h := range handlers {
		if err := b.deliver(h, ev); err != nil {
			b.logger.Warn("event subscriber failed",
				"kind", ev.Kind,
				"subject", ev.Subject,
				"subscriber", i,
				"error", err)
		}
	}
}

// deliver runs one handler, turning a panic into an error.
func (b *Bus) deliver(h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return h(ev)
}

// ConsoleEcho returns a subscriber that writes each event's message to w.
func ConsoleEcho(w io.Writer) Handler {
	var mu sync.Mutex
	return func(ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(w, ev.Message())
		return err
	}
}

// Recorder is anything that durably records a rendered message.
type Recorder interface {
	Record(message string)
}

// RecordTo returns a subscriber that hands each event's message to r.
func RecordTo(r Recorder) Handler {
	return func(ev Event) error {
		r.Record(ev.Message())
		return nil
	}
}
