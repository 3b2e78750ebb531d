package docker_test

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// mockWriter is a thread-safe internal.Writer that captures output for
// assertions. Fatalf records the message instead of exiting.
type mockWriter struct {
	mu  sync.Mutex
	out bytes.Buffer
	err bytes.Buffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{}
}

func (m *mockWriter) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(&m.out, format, v...)
}

func (m *mockWriter) Println(v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(&m.out, v...)
}

func (m *mockWriter) Warning(v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprint(&m.err, "Warning: ")
	fmt.Fprintln(&m.err, v...)
}

func (m *mockWriter) Warningf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(&m.err, "Warning: "+format+"\n", v...)
}

func (m *mockWriter) Fatalf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(&m.err, "Fatal: "+format+"\n", v...)
}

func (m *mockWriter) GetWriter() io.Writer {
	return &lockedWriter{mu: &m.mu, buf: &m.out}
}

func (m *mockWriter) GetErrorWriter() io.Writer {
	return &lockedWriter{mu: &m.mu, buf: &m.err}
}

func (m *mockWriter) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

func (m *mockWriter) ErrorString() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err.String()
}

type lockedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
