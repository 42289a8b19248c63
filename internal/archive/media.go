package archive

import (
	"github.com/FocuswithJustin/FieldChart/core/ingl"
)

// Source loads a show file that may be xz or gzip compressed.
type Source struct {
	Path    string
	MaxSize int64 // limit on both the file and its decompressed form
}

// Load reads and unwraps the file.
func (s Source) Load() ([]byte, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = ingl.DefaultMaxFileSize
	}
	raw, err := ingl.FileSource{Path: s.Path, MaxSize: limit}.Load()
	if err != nil {
		return nil, err
	}
	return Decompress(raw, limit)
}

// Name returns the path.
func (s Source) Name() string {
	return s.Path
}

// Sink writes a show file wrapped in Compression, atomically.
type Sink struct {
	Path        string
	Compression Compression
}

// Store compresses data and replaces the file at Path.
func (s Sink) Store(data []byte) error {
	c := s.Compression
	if c == "" {
		c = CompressionNone
	}
	out, err := Compress(data, c)
	if err != nil {
		return err
	}
	return ingl.WriteFileAtomic(s.Path, out)
}

// Name returns the path.
func (s Sink) Name() string {
	return s.Path
}

var (
	_ ingl.ByteSource = Source{}
	_ ingl.ByteSink   = Sink{}
)
