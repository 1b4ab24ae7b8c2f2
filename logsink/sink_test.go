package logsink

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: read the non-empty lines of a log file
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// fixedClock returns a clock that reports *at until changed
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

// TestNew_CreatesDirectory verifies the log directory is created on start
func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	sink, err := New(dir)
	require.NoError(t, err)
	defer sink.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Creating again over an existing directory is fine
	again, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

// TestNew_DirectoryIsAFile verifies a clear error when the path is taken
func TestNew_DirectoryIsAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := New(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

// TestRecord_LineFormat verifies timestamp, separator and message
func TestRecord_LineFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	sink, err := New(t.TempDir(), WithClock(fixedClock(&now)))
	require.NoError(t, err)

	sink.Record("The about page was accessed.")
	require.NoError(t, sink.Close())

	path := filepath.Join(sink.Dir(), "2026-03-14.log")
	assert.Equal(t, path, sink.PathFor(now))
	assert.Equal(t,
		[]string{"2026-03-14T15:09:26.535Z - The about page was accessed."},
		readLines(t, path))
}

// TestRecord_UsesUTCDate verifies local offsets do not change the file name
func TestRecord_UsesUTCDate(t *testing.T) {
	tz := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 1, 2, 5, 0, 0, 0, tz) // 2026-01-01 19:00 UTC
	sink, err := New(t.TempDir(), WithClock(fixedClock(&now)))
	require.NoError(t, err)

	sink.Record("late night")
	require.NoError(t, sink.Close())

	lines := readLines(t, filepath.Join(sink.Dir(), "2026-01-01.log"))
	assert.Equal(t, []string{"2026-01-01T19:00:00.000Z - late night"}, lines)
}

// TestRecord_RollsOverAtMidnight verifies the date is computed per call
func TestRecord_RollsOverAtMidnight(t *testing.T) {
	now := time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)
	sink, err := New(t.TempDir(), WithClock(fixedClock(&now)))
	require.NoError(t, err)

	sink.Record("before")
	sink.Flush()
	now = now.Add(2 * time.Second)
	sink.Record("after")
	require.NoError(t, sink.Close())

	before := readLines(t, filepath.Join(sink.Dir(), "2026-05-31.log"))
	after := readLines(t, filepath.Join(sink.Dir(), "2026-06-01.log"))
	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.True(t, strings.HasSuffix(before[0], " - before"))
	assert.True(t, strings.HasSuffix(after[0], " - after"))
}

// TestRecord_AppendsWithoutDedup verifies repeated messages each get a line
func TestRecord_AppendsWithoutDedup(t *testing.T) {
	sink, err := New(t.TempDir())
	require.NoError(t, err)

	for range 5 {
		sink.Record("same message")
	}
	sink.Flush()
	path := sink.PathFor(time.Now())
	assert.Len(t, readLines(t, path), 5)

	// A second sink on the same directory appends, never truncates
	require.NoError(t, sink.Close())
	again, err := New(sink.Dir())
	require.NoError(t, err)
	again.Record("same message")
	require.NoError(t, again.Close())
	assert.Len(t, readLines(t, path), 6)
}

// TestRecord_Concurrent verifies every concurrent Record produces one line
func TestRecord_Concurrent(t *testing.T) {
	sink, err := New(t.TempDir(), WithBufferSize(4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Record(fmt.Sprintf("message %d", i))
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	assert.Len(t, readLines(t, sink.PathFor(time.Now())), 50)
}

// TestRecord_KeepsCallOrder verifies lines land in call order even when the
// queue overflows
func TestRecord_KeepsCallOrder(t *testing.T) {
	tests := []struct {
		name   string
		buffer int
		lines  int
	}{
		{"unbuffered", 0, 2000},
		{"small buffer", 4, 2000},
		{"default buffer", DefaultBufferSize, 20 * DefaultBufferSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := New(t.TempDir(), WithBufferSize(tt.buffer))
			require.NoError(t, err)

			for i := range tt.lines {
				sink.Record(strconv.Itoa(i))
			}
			require.NoError(t, sink.Close())

			lines := readLines(t, sink.PathFor(time.Now()))
			require.Len(t, lines, tt.lines)
			for i, line := range lines {
				_, message, found := strings.Cut(line, " - ")
				require.True(t, found, line)
				require.Equal(t, strconv.Itoa(i), message, "line %d out of order", i)
			}
		})
	}
}

// TestRecord_CloseWhileRecording verifies lines recorded while Close runs
// still follow the queued ones
func TestRecord_CloseWhileRecording(t *testing.T) {
	sink, err := New(t.TempDir(), WithBufferSize(8))
	require.NoError(t, err)

	const total = 500
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range total {
			sink.Record(strconv.Itoa(i))
		}
	}()
	require.NoError(t, sink.Close())
	<-done

	lines := readLines(t, sink.PathFor(time.Now()))
	require.Len(t, lines, total)
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, " - "+strconv.Itoa(i)), line)
	}
}

// TestRecord_AfterClose verifies late lines are still appended
func TestRecord_AfterClose(t *testing.T) {
	sink, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "closing twice is harmless")

	sink.Record("late")
	sink.Flush()

	assert.Len(t, readLines(t, sink.PathFor(time.Now())), 1)
}

// TestRecord_WriteFailureIsReported verifies append failures are logged and
// swallowed
func TestRecord_WriteFailureIsReported(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	now := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)

	sink, err := New(t.TempDir(), WithLogger(logger), WithClock(fixedClock(&now)))
	require.NoError(t, err)

	// A directory where the day's file should be makes the open fail
	require.NoError(t, os.Mkdir(sink.PathFor(now), 0o755))

	require.NotPanics(t, func() {
		sink.Record("lost line")
		sink.Flush()
	})
	require.NoError(t, sink.Close())

	assert.Contains(t, logBuf.String(), "failed to open log file")
}
