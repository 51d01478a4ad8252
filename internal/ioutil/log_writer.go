// Package ioutil provides I/O utilities.
package ioutil

import (
	"bytes"
	"io"
	"sync"

	"go.abhg.dev/teapot/internal/silog"
)

// LogWriter builds and returns an io.Writer that
// writes messages to the given logger.
// If the logger is nil, a no-op writer is returned.
//
// The done function must be called when the writer is no longer needed.
// It will flush any buffered text to the logger.
//
// Writes to the returned writer are serialized with a mutex.
func LogWriter(logger *silog.Logger, lvl silog.Level) (w io.Writer, done func()) {
	if logger == nil {
		return io.Discard, func() {}
	}

	var printf func(string, ...any)
	switch lvl {
	case silog.LevelDebug:
		printf = logger.Debugf
	case silog.LevelInfo:
		printf = logger.Infof
	case silog.LevelWarn:
		printf = logger.Warnf
	case silog.LevelError:
		printf = logger.Errorf
	default:
		panic("unsupported log level")
	}

	w, flush := LogfWriter(printf, "")
	return w, flush
}

// TestOutputWriter builds and returns an io.Writer that
// writes messages, with prefix prepended, to the given test logger
// (such as a testing.TB).
// Buffered text is flushed when the test cleans up.
func TestOutputWriter(t interface {
	Logf(string, ...any)
	Cleanup(func())
}, prefix string,
) (w io.Writer) {
	w, flush := LogfWriter(t.Logf, prefix)
	t.Cleanup(flush)
	return w
}

// printfWriter is an io.Writer that writes to a log.Logger.
type printfWriter struct {
	// printf implementation should add a newline at the end.
	printf func(string, ...any)
	prefix string
	buff   bytes.Buffer
	mu     sync.Mutex
}

var _ io.Writer = (*printfWriter)(nil)

// LogfWriter builds and returns an io.Writer that passes each line
// written to it, with prefix prepended, to printf.
// The returned function flushes a trailing partial line.
func LogfWriter(printf func(string, ...any), prefix string) (io.Writer, func()) {
	w := &printfWriter{
		printf: printf,
		prefix: prefix,
	}
	return w, w.flush
}

var _newline = []byte{'\n'}

func (w *printfWriter) Write(bs []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(bs)
	for len(bs) > 0 {
		var (
			line []byte
			ok   bool
		)
		line, bs, ok = bytes.Cut(bs, _newline)
		if !ok {
			// No newline. Buffer and wait for more.
			w.buff.Write(line)
			break
		}

		if w.buff.Len() == 0 {
			// No prior partial write. Flush.
			w.printf("%s%s", w.prefix, line)
			continue
		}

		// Flush prior partial write.
		w.buff.Write(line)
		w.printf("%s%s", w.prefix, w.buff.Bytes())
		w.buff.Reset()
	}
	return total, nil
}

// flush flushes buffered text, even if it doesn't end with a newline.
func (w *printfWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buff.Len() > 0 {
		w.printf("%s%s", w.prefix, w.buff.Bytes())
		w.buff.Reset()
	}
}
