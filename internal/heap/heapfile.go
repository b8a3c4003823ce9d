// Package heap implements the heap file: a named, on-disk, append-only
// sequence of slotted pages backing one relation.
package heap

import (
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kilndb/kilndb/internal/blockstore"
	"github.com/kilndb/kilndb/internal/page"
)

// File is a collection of slotted pages for one relation. Block
// allocation is append-only; there is no free-page reclamation.
type File struct {
	name   string
	dir    string
	store  *blockstore.Store
	last   blockstore.BlockID
	closed bool
}

func fileExt() string { return ".tbl" }

func pathFor(dir, name string) string {
	return filepath.Join(dir, name+fileExt())
}

// New returns a File handle for name rooted at dir. It does not touch
// the filesystem; call Create or Open next.
func New(dir, name string) *File {
	return &File{name: name, dir: dir, closed: true}
}

// Create opens the backing file exclusively (it must not already exist)
// and allocates the first block.
func (f *File) Create() error {
	store, err := blockstore.Open(pathFor(f.dir, f.name), page.BlockSize, true, true)
	if err != nil {
		return errors.Wrapf(err, "heap: create %s", f.name)
	}
	f.store = store
	f.closed = false
	f.last = 0

	if _, err := f.GetNew(); err != nil {
		f.store.Close()
		f.closed = true
		return errors.Wrapf(err, "heap: allocate first block of %s", f.name)
	}
	log.WithField("table", f.name).Info("heap: created")
	return nil
}

// Open opens an already-created heap file, deriving its high-water mark
// from the backing file's length.
func (f *File) Open() error {
	store, err := blockstore.Open(pathFor(f.dir, f.name), page.BlockSize, false, false)
	if err != nil {
		return errors.Wrapf(err, "heap: open %s", f.name)
	}
	last, err := store.NumBlocks()
	if err != nil {
		store.Close()
		return errors.Wrapf(err, "heap: open %s: determine block count", f.name)
	}
	f.store = store
	f.closed = false
	f.last = last
	return nil
}

// Close is idempotent with respect to the closed flag and safe to call
// more than once, including during teardown.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.store == nil {
		return nil
	}
	err := f.store.Close()
	return errors.Wrapf(err, "heap: close %s", f.name)
}

// Drop closes the file and removes its backing storage.
func (f *File) Drop() error {
	if err := f.Close(); err != nil {
		return err
	}
	if err := blockstore.Remove(pathFor(f.dir, f.name)); err != nil {
		return errors.Wrapf(err, "heap: drop %s", f.name)
	}
	log.WithField("table", f.name).Info("heap: dropped")
	return nil
}

// GetNew allocates a fresh, empty page, writes it to the block store,
// and re-reads it so the returned page's buffer is owned by the store.
func (f *File) GetNew() (*page.Page, error) {
	f.last++
	id := f.last
	p := page.New()
	if err := f.store.Put(id.Key(), p.Bytes()); err != nil {
		f.last--
		return nil, errors.Wrapf(err, "heap: %s: write new block %d", f.name, id)
	}
	return f.Get(id)
}

// Get reads the block addressed by id and overlays a slotted page on
// its bytes.
func (f *File) Get(id blockstore.BlockID) (*page.Page, error) {
	buf, err := f.store.Get(id.Key())
	if err != nil {
		return nil, errors.Wrapf(err, "heap: %s: read block %d", f.name, id)
	}
	p, err := page.Wrap(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "heap: %s: wrap block %d", f.name, id)
	}
	return p, nil
}

// Put writes p's bytes back under blockID.
func (f *File) Put(blockID blockstore.BlockID, p *page.Page) error {
	if err := f.store.Put(blockID.Key(), p.Bytes()); err != nil {
		return errors.Wrapf(err, "heap: %s: write block %d", f.name, blockID)
	}
	return nil
}

// BlockIDs returns every allocated block id, 1..last, ascending.
func (f *File) BlockIDs() []blockstore.BlockID {
	ids := make([]blockstore.BlockID, 0, f.last)
	for i := blockstore.BlockID(1); i <= f.last; i++ {
		ids = append(ids, i)
	}
	return ids
}

// Last returns the current high-water block id.
func (f *File) Last() blockstore.BlockID { return f.last }

// Name returns the heap file's relation name.
func (f *File) Name() string { return f.name }
