package cas

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/zeebo/blake3"
)

type blake3Pointer struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

func (s *Store) pointerPath(b3 string) string {
	return filepath.Join(s.root, "blobs", "blake3", b3[:2], b3+".json")
}

func (s *Store) writePointer(d Digest) error {
	path := s.pointerPath(d.BLAKE3)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.Marshal(blake3Pointer{SHA256: d.SHA256, Size: d.Size})
	if err != nil {
		return fmt.Errorf("failed to marshal pointer: %w", err)
	}
	return writeAtomic(path, ".pointer-*", data)
}

// Lookup resolves a BLAKE3 digest to the full Digest of the stored blob.
func (s *Store) Lookup(b3 string) (Digest, error) {
	if !hexDigest.MatchString(b3) {
		return Digest{}, fmt.Errorf("%w: %q", ErrInvalidHash, b3)
	}
	path := s.pointerPath(b3)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Digest{}, &ferrors.NotFoundError{Resource: "snapshot", ID: b3, Err: err}
		}
		return Digest{}, ferrors.NewIO("read", path, err)
	}
	var p blake3Pointer
	if err := json.Unmarshal(data, &p); err != nil {
		return Digest{}, ferrors.NewParse("pointer", path, err.Error())
	}
	return Digest{SHA256: p.SHA256, BLAKE3: b3, Size: p.Size}, nil
}

// GetByBlake3 returns the blob whose BLAKE3 digest is b3. For snapshots
// this is the show's fingerprint.
func (s *Store) GetByBlake3(b3 string) ([]byte, error) {
	d, err := s.Lookup(b3)
	if err != nil {
		return nil, err
	}
	return s.Get(d.SHA256)
}

// Blake3Hash returns the hex BLAKE3 digest of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
