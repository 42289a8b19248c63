package ingl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
)

// ByteSource supplies a complete encoded show. The codec itself performs no
// I/O; media are resolved to a buffer before parsing starts.
type ByteSource interface {
	Load() ([]byte, error)
	Name() string
}

// ByteSink receives a complete encoded show.
type ByteSink interface {
	Store(data []byte) error
	Name() string
}

// DefaultMaxFileSize bounds FileSource reads when MaxSize is zero.
const DefaultMaxFileSize int64 = 64 << 20

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// MemorySource serves a buffer held in memory.
type MemorySource struct {
	Data  []byte
	Label string
}

// Load returns the buffer.
func (m MemorySource) Load() ([]byte, error) {
	return m.Data, nil
}

// Name returns the label, or "memory".
func (m MemorySource) Name() string {
	if m.Label == "" {
		return "memory"
	}
	return m.Label
}

// MemorySink keeps the last stored buffer.
type MemorySink struct {
	data []byte
}

// Store copies data into the sink.
func (m *MemorySink) Store(data []byte) error {
	m.data = append(m.data[:0], data...)
	return nil
}

// Bytes returns the stored buffer.
func (m *MemorySink) Bytes() []byte {
	return m.data
}

// Name returns "memory".
func (m *MemorySink) Name() string {
	return "memory"
}

// FileSource reads a show file from disk.
type FileSource struct {
	Path    string
	MaxSize int64
}

// Load reads the whole file, refusing files larger than MaxSize.
func (f FileSource) Load() ([]byte, error) {
	limit := f.MaxSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ferrors.NotFoundError{Resource: "show file", ID: f.Path, Err: err}
		}
		return nil, ferrors.NewIO("stat", f.Path, err)
	}
	if info.Size() > limit {
		return nil, ferrors.NewValidation("size", fmt.Sprintf("%s is %d bytes, limit %d", f.Path, info.Size(), limit))
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, ferrors.NewIO("read", f.Path, err)
	}
	return data, nil
}

// Name returns the path.
func (f FileSource) Name() string {
	return f.Path
}

// FileSink writes a show file atomically via a temp file and rename.
type FileSink struct {
	Path string
}

// Store replaces the file at Path with data.
func (f FileSink) Store(data []byte) error {
	return WriteFileAtomic(f.Path, data)
}

// Name returns the path.
func (f FileSink) Name() string {
	return f.Path
}

// WriteFileAtomic writes data next to path and renames it into place, so
// readers never observe a partially written show.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ferrors.NewIO("create directory", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".show-*")
	if err != nil {
		return ferrors.NewIO("create temp file in", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return ferrors.NewIO("write", tempPath, err)
	}

	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return ferrors.NewIO("close", tempPath, err)
	}

	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return ferrors.NewIO("rename", path, err)
	}
	return nil
}
