package archive

import (
	"errors"
	"fmt"
	"io"
)

var (
	errNoReader = errors.New("storage has no reader")
	errNoWriter = errors.New("storage has no writer")
)

// IOStorage adapts an io.Reader and/or io.Writer to Storage.
//
// If there is an error reading or writing, all further operations become
// no-ops (reads yield zero bytes). Err returns the error which stopped the
// stream; an Archive bound to an IOStorage reports it from its own Err.
type IOStorage struct {
	reader io.Reader
	writer io.Writer
	err    error
}

// ReaderStorage returns a read-only IOStorage.
func ReaderStorage(r io.Reader) *IOStorage {
	return &IOStorage{reader: r}
}

// WriterStorage returns a write-only IOStorage.
func WriterStorage(w io.Writer) *IOStorage {
	return &IOStorage{writer: w}
}

// Write writes p to the underlying writer.
func (s *IOStorage) Write(p []byte) int {
	if s.err != nil {
		return 0
	}
	if s.writer == nil {
		s.err = errNoWriter
		return 0
	}
	n, err := s.writer.Write(p)
	if err != nil {
		s.err = err
	} else if n != len(p) {
		s.err = io.ErrShortWrite
	}
	return n
}

// Read fills p from the underlying reader.
func (s *IOStorage) Read(p []byte) {
	if s.err != nil {
		clear(p)
		return
	}
	if s.reader == nil {
		s.err = errNoReader
		clear(p)
		return
	}
	n, err := io.ReadFull(s.reader, p)
	if err != nil {
		s.err = fmt.Errorf("%w after reading %d bytes", err, n)
		clear(p)
	}
}

// Err returns the error which stopped the storage, or nil.
func (s *IOStorage) Err() error {
	return s.err
}

// Close closes the underlying reader and writer if they implement io.Closer.
func (s *IOStorage) Close() error {
	var errs []error
	if c, ok := s.writer.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.reader.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
