// Package cas stores show snapshots by content. Every snapshot is kept
// under its SHA-256 digest, with a BLAKE3 pointer alongside so a snapshot
// can also be found by a show's fingerprint.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

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

// ErrInvalidHash is returned when a digest is not 64 lowercase hex characters.
var ErrInvalidHash = errors.New("invalid hash format")

var hexDigest = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Digest identifies a stored blob.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// Store is a content-addressed blob directory.
//
// Layout:
//
//	<root>/blobs/sha256/<xx>/<sha256>
//	<root>/blobs/blake3/<xx>/<blake3>.json
type Store struct {
	root string
}

// NewStore opens the store at root, creating it if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs", "sha256"), 0755); err != nil {
		return nil, ferrors.NewIO("create", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Put stores data and its BLAKE3 pointer. Storing existing content is a
// no-op that returns the same digest.
func (s *Store) Put(data []byte) (Digest, error) {
	d := Digest{SHA256: Hash(data), BLAKE3: Blake3Hash(data), Size: int64(len(data))}
	path := s.blobPath(d.SHA256)
	if _, err := os.Stat(path); err != nil {
		if err := writeAtomic(path, ".blob-*", data); err != nil {
			return Digest{}, err
		}
	}
	if err := s.writePointer(d); err != nil {
		return Digest{}, err
	}
	return d, nil
}

// PutShow stores the serialized form of sh. The BLAKE3 half of the digest
// equals sh.Fingerprint().
func (s *Store) PutShow(sh *show.Show) (Digest, error) {
	d, err := s.Put(sh.Serialize())
	if err != nil {
		return Digest{}, err
	}
	logging.SnapshotStored(d.SHA256, d.BLAKE3, d.Size)
	return d, nil
}

// Get returns the blob with the given SHA-256 digest.
func (s *Store) Get(sha string) ([]byte, error) {
	if !hexDigest.MatchString(sha) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, sha)
	}
	path := s.blobPath(sha)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ferrors.NotFoundError{Resource: "snapshot", ID: sha, Err: err}
		}
		return nil, ferrors.NewIO("read", path, err)
	}
	return data, nil
}

// GetShow parses the snapshot with the given SHA-256 digest.
func (s *Store) GetShow(sha string) (*show.Show, error) {
	data, err := s.Get(sha)
	if err != nil {
		return nil, err
	}
	return show.Parse(data)
}

// Has reports whether a blob with the given SHA-256 digest exists.
func (s *Store) Has(sha string) bool {
	if !hexDigest.MatchString(sha) {
		return false
	}
	_, err := os.Stat(s.blobPath(sha))
	return err == nil
}

// Delete removes a blob and its BLAKE3 pointer. Deleting a missing blob
// returns a NotFoundError.
func (s *Store) Delete(sha string) error {
	data, err := s.Get(sha)
	if err != nil {
		return err
	}
	if err := os.Remove(s.pointerPath(Blake3Hash(data))); err != nil && !os.IsNotExist(err) {
		return ferrors.NewIO("remove", s.pointerPath(Blake3Hash(data)), err)
	}
	if err := os.Remove(s.blobPath(sha)); err != nil {
		return ferrors.NewIO("remove", s.blobPath(sha), err)
	}
	return nil
}

func (s *Store) blobPath(sha string) string {
	return filepath.Join(s.root, "blobs", "sha256", sha[:2], sha)
}

// writeAtomic writes data to a temp file next to path and renames it in.
func writeAtomic(path, pattern string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ferrors.NewIO("create", dir, err)
	}
	tempFile, err := os.CreateTemp(dir, pattern)
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

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
