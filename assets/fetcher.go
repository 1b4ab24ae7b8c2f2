// Package assets reads static resources from a read-only store and reports
// every read as a FileReadSuccess or FileReadError event.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/pevans/pagewire/events"
)

// ErrInvalidResource is returned for references that are not a clean path
// inside the asset root.
var ErrInvalidResource = errors.New("resource reference escapes the asset root")

// Plain text bodies for the failure outcome.
const (
	ContentTypeText   = "text/plain"
	InternalErrorBody = "500 Internal Server Error"
)

// Publisher is the part of the event bus the fetcher needs.
type Publisher interface {
	Publish(events.Event)
}

// Result is the outcome of one fetch. It is always a complete response:
// either the asset body or the plain text failure.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
	Err         error // cause of a failed read, never sent to clients
}

// OK reports whether the read succeeded.
func (r Result) OK() bool {
	return r.Status == http.StatusOK
}

// Fetcher reads resources from an fs.FS.
type Fetcher struct {
	store fs.FS
	bus   Publisher
}

// NewFetcher creates a fetcher over store.
func NewFetcher(store fs.FS, bus Publisher) *Fetcher {
	return &Fetcher{
		store: store,
		bus:   bus,
	}
}

// NewDirFetcher creates a fetcher over the directory root.
func NewDirFetcher(root string, bus Publisher) *Fetcher {
	return NewFetcher(os.DirFS(root), bus)
}

// ValidRef reports whether ref names a resource inside the store.
func ValidRef(ref string) bool {
	return ref != "." && fs.ValidPath(ref)
}

// Fetch reads ref and returns it with contentType. Missing files and I/O
// errors both produce the 500 outcome.
func (f *Fetcher) Fetch(ref, contentType string) Result {
	body, err := f.read(ref)
	if err != nil {
		f.bus.Publish(events.New(events.FileReadError, ref))
		return Result{
			Status:      http.StatusInternalServerError,
			ContentType: ContentTypeText,
			Body:        []byte(InternalErrorBody),
			Err:         err,
		}
	}

	f.bus.Publish(events.New(events.FileReadSuccess, ref))
	return Result{
		Status:      http.StatusOK,
		ContentType: contentType,
		Body:        body,
	}
}

func (f *Fetcher) read(ref string) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			body, err = nil, fmt.Errorf("asset store panicked: %v", r)
		}
	}()

	if !ValidRef(ref) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResource, ref)
	}

	body, err = fs.ReadFile(f.store, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return body, nil
}
