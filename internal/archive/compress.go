// Package archive provides compressed show media. Shows are stored either
// raw or wrapped in xz or gzip; readers detect the wrapping from the magic
// bytes, so a compressed show loads wherever a plain one does.
package archive

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/ulikunitz/xz"
)

// Injectable functions for testing
var (
	gzipNewWriterLevel = gzip.NewWriterLevel
	xzNewWriter        = xz.NewWriter
	gzipNewReader      = gzip.NewReader
	xzNewReader        = xz.NewReader
)

// Compression names a wrapping format.
type Compression string

const (
	// CompressionNone stores the show bytes as they are.
	CompressionNone Compression = "none"
	// CompressionXZ uses XZ/LZMA2 compression (default, best ratio).
	CompressionXZ Compression = "xz"
	// CompressionGzip uses gzip compression (stdlib, faster).
	CompressionGzip Compression = "gzip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// ParseCompression maps a config or flag value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case CompressionNone, CompressionXZ, CompressionGzip:
		return c, nil
	case "":
		return CompressionNone, nil
	}
	return "", ferrors.NewUnsupported("compression format", s)
}

// Extension returns the file suffix conventionally added for c.
func (c Compression) Extension() string {
	switch c {
	case CompressionXZ:
		return ".xz"
	case CompressionGzip:
		return ".gz"
	}
	return ""
}

// Detect reports the wrapping of data from its magic bytes. Anything that is
// neither gzip nor xz is treated as uncompressed.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	}
	return CompressionNone
}

// Compress wraps data in c.
func Compress(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c {
	case CompressionNone:
		return bytes.Clone(data), nil
	case CompressionGzip:
		w, err = gzipNewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
	case CompressionXZ:
		w, err = xzNewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
	default:
		return nil, ferrors.NewUnsupported("compression format", string(c))
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish %s stream: %w", c, err)
	}
	return buf.Bytes(), nil
}

// Decompress unwraps data according to its magic bytes, refusing output
// larger than limit bytes. A limit of zero or less means no limit.
func Decompress(data []byte, limit int64) ([]byte, error) {
	var r io.Reader
	c := Detect(data)
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gzr, err := gzipNewReader(bytes.NewReader(data))
		if err != nil {
			return nil, ferrors.NewParse("gzip", "", err.Error())
		}
		defer gzr.Close()
		r = gzr
	case CompressionXZ:
		xzr, err := xzNewReader(bytes.NewReader(data))
		if err != nil {
			return nil, ferrors.NewParse("xz", "", err.Error())
		}
		r = xzr
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, ferrors.NewParse(string(c), "", err.Error())
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, ferrors.NewValidation("size", fmt.Sprintf("decompressed show exceeds %d bytes", limit))
	}
	return out, nil
}
