// Package blockstore is the thin contract over a page-oriented embedded
// store: a file of fixed-length records, keyed by a monotonically
// increasing integer BlockID, written and read one block at a time.
package blockstore

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// BlockID identifies one fixed-size block within a Store. Blocks are
// 1-based; BlockID(0) is never allocated.
type BlockID uint64

// Key returns the raw bytes used to address this block: the id as an
// 8-byte little-endian integer.
func (b BlockID) Key() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(b))
	return buf
}

// BlockIDFromKey decodes the bytes produced by Key.
func BlockIDFromKey(k []byte) BlockID {
	return BlockID(binary.LittleEndian.Uint64(k))
}

// ErrExists is returned by Open when create-exclusive is requested and
// the backing file is already present.
var ErrExists = errors.New("blockstore: file already exists")

// Store is a file of fixed-length BlockSize records, addressed by
// BlockID. It is the block store adapter the rest of the engine is
// built on.
type Store struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	blockSize int
}

// Open creates or opens path as a fixed-record block file.
//
// createIfMissing mirrors the underlying store's open(path,
// create_if_missing, exclusive) contract: when true and the file does
// not exist, it is created; when exclusive is also true, an existing
// file is a hard error instead of being reused.
func Open(path string, blockSize int, createIfMissing, exclusive bool) (*Store, error) {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if exists && exclusive {
		return nil, ErrExists
	}

	flags := os.O_RDWR
	if createIfMissing {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "blockstore: open %s", path)
	}
	log.WithFields(log.Fields{"path": path, "blockSize": blockSize, "existed": exists}).
		Debug("blockstore: opened")
	return &Store{path: path, file: f, blockSize: blockSize}, nil
}

// Put writes exactly BlockSize bytes of value at the block addressed by
// key. value must be len == BlockSize.
func (s *Store) Put(key []byte, value []byte) error {
	if len(value) != s.blockSize {
		return errors.Errorf("blockstore: put: value is %d bytes, want %d", len(value), s.blockSize)
	}
	id := BlockIDFromKey(key)
	off := blockOffset(id, s.blockSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.WriteAt(value, off); err != nil {
		return errors.Wrapf(err, "blockstore: put block %d", id)
	}
	return nil
}

// Get reads the BlockSize bytes stored at key.
func (s *Store) Get(key []byte) ([]byte, error) {
	id := BlockIDFromKey(key)
	off := blockOffset(id, s.blockSize)

	buf := make([]byte, s.blockSize)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.ReadAt(buf, off); err != nil {
		return nil, errors.Wrapf(err, "blockstore: get block %d", id)
	}
	return buf, nil
}

// NumBlocks returns how many fixed-size blocks are currently stored,
// derived from the file's length. Every block is BlockSize bytes and
// blocks are written contiguously from BlockID(1), so this doubles as
// the heap file's high-water mark on reopen.
func (s *Store) NumBlocks() (BlockID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, err := s.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "blockstore: stat")
	}
	return BlockID(info.Size() / int64(s.blockSize)), nil
}

// Close closes the backing file. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return errors.Wrap(err, "blockstore: close")
}

// Remove deletes the backing file at path; a missing file is not an
// error. It does not close a Store that has the file open.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "blockstore: remove %s", path)
	}
	return nil
}

func blockOffset(id BlockID, blockSize int) int64 {
	// BlockID is 1-based; block 1 starts at file offset 0.
	return int64(id-1) * int64(blockSize)
}
