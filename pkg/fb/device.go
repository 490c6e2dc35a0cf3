package fb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Device is a byte-addressable display sink.
type Device interface {
	io.WriterAt
	// Flush makes all previous writes visible.
	Flush() error
	Close() error
}

var (
	_ Device = (*File)(nil)
	_ Device = (*Buffer)(nil)
)

// File is a framebuffer device node such as /dev/fb0.
type File struct {
	f *os.File
}

// Open opens a framebuffer device node for writing.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open framebuffer %s", path)
	}
	return &File{f: f}, nil
}

// WriteAt writes p at byte offset off.
func (d *File) WriteAt(p []byte, off int64) (int, error) {
	return d.f.WriteAt(p, off)
}

// Flush syncs the device. Character devices that do not support fsync are
// already coherent after write and report success.
func (d *File) Flush() error {
	err := d.f.Sync()
	if err == nil || errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EROFS) {
		return nil
	}
	return pkgerrors.Wrap(err, "failed to flush framebuffer")
}

// Close closes the device node.
func (d *File) Close() error {
	return d.f.Close()
}

// Span is a written byte range.
type Span struct {
	Off int64
	Len int
}

// Buffer is an in-memory Device. It records every write until Reset.
type Buffer struct {
	mu      sync.Mutex
	data    []byte
	writes  []Span
	flushes int
	closed  bool
}

// NewBuffer creates a zeroed in-memory device of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// WriteAt copies p into the buffer at off. Writes past the end fail.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, os.ErrClosed
	}
	if off < 0 || off+int64(len(p)) > int64(len(b.data)) {
		return 0, fmt.Errorf("write of %d bytes at %d out of range [0, %d)", len(p), off, len(b.data))
	}
	copy(b.data[off:], p)
	b.writes = append(b.writes, Span{Off: off, Len: len(p)})
	return len(p), nil
}

// Flush counts flushes.
func (b *Buffer) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return os.ErrClosed
	}
	b.flushes++
	return nil
}

// Close marks the buffer closed. Further writes fail.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Writes returns the spans written since the last Reset.
func (b *Buffer) Writes() []Span {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Span(nil), b.writes...)
}

// Flushes returns the number of successful flushes.
func (b *Buffer) Flushes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushes
}

// Closed reports whether Close was called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Reset forgets recorded writes and flushes, keeping the contents.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = nil
	b.flushes = 0
}
