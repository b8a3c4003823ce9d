// Package page implements the slotted page: an in-memory, variable-length
// record store layered over a single fixed-size block, with record
// identifiers that remain stable across put/del.
package page

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// BlockSize is the fixed size, in bytes, of every page.
const BlockSize = 4096

// slotSize is the width of one slot directory entry: a 2-byte record
// size followed by a 2-byte record start offset.
const slotSize = 4

// ErrNoRoom is returned by Add/Put when the page cannot accommodate the
// requested bytes.
var ErrNoRoom = errors.New("page: no room")

// ErrNotFound is returned when a RecordID does not correspond to an
// allocated slot.
var ErrNotFound = errors.New("page: record not found")

// RecordID is a 1-based, page-local, append-only record identifier.
// Slot 0 is the page header; RecordID(id) always refers to slot id.
type RecordID uint16

// Page is the in-memory view over one BlockSize buffer. Slot 0 holds the
// header (numRecords, endFree); slots 1..numRecords describe records.
// A tombstoned slot has size==0 and offset==0.
type Page struct {
	buf []byte
}

// New returns a Page backed by a freshly zeroed, empty buffer: slot 0's
// header starts with numRecords=0 and endFree=BlockSize-1.
func New() *Page {
	buf := make([]byte, BlockSize)
	p := &Page{buf: buf}
	p.setNumRecords(0)
	p.setEndFree(BlockSize - 1)
	return p
}

// Wrap interprets an existing BlockSize buffer as a page whose header is
// parsed from the bytes already present (used when re-reading a block
// from the store).
func Wrap(buf []byte) (*Page, error) {
	if len(buf) != BlockSize {
		return nil, errors.Errorf("page: wrap: buffer is %d bytes, want %d", len(buf), BlockSize)
	}
	return &Page{buf: buf}, nil
}

// Bytes returns the underlying buffer, suitable for writing back to the
// block store.
func (p *Page) Bytes() []byte { return p.buf }

// NumRecords returns the slot count, including tombstones.
func (p *Page) NumRecords() int {
	return int(binary.LittleEndian.Uint16(p.buf[0:2]))
}

func (p *Page) setNumRecords(n int) {
	binary.LittleEndian.PutUint16(p.buf[0:2], uint16(n))
}

// EndFree returns the offset of the last free byte: records occupy
// [endFree+1, BlockSize) and free space spans [slotDirEnd, endFree].
func (p *Page) EndFree() int {
	return int(binary.LittleEndian.Uint16(p.buf[2:4]))
}

func (p *Page) setEndFree(off int) {
	binary.LittleEndian.PutUint16(p.buf[2:4], uint16(off))
}

// slotOffset returns the byte offset of slot id's 4-byte directory entry.
func slotOffset(id RecordID) int {
	return int(id) * slotSize
}

func (p *Page) slotSizeField(id RecordID) int {
	o := slotOffset(id)
	return int(binary.LittleEndian.Uint16(p.buf[o : o+2]))
}

func (p *Page) slotOffsetField(id RecordID) int {
	o := slotOffset(id)
	return int(binary.LittleEndian.Uint16(p.buf[o+2 : o+4]))
}

func (p *Page) setSlot(id RecordID, size, offset int) {
	o := slotOffset(id)
	binary.LittleEndian.PutUint16(p.buf[o:o+2], uint16(size))
	binary.LittleEndian.PutUint16(p.buf[o+2:o+4], uint16(offset))
}

// slotDirEnd is the first byte past the last slot entry (slots
// 0..numRecords occupy [0, slotDirEnd)).
func (p *Page) slotDirEnd() int {
	return (p.NumRecords() + 1) * slotSize
}

func (p *Page) isTombstone(id RecordID) bool {
	return p.slotSizeField(id) == 0 && p.slotOffsetField(id) == 0
}

// freeSpace returns the number of bytes available for a new record,
// measured against the slot directory as it stands before the record
// is added (mirrors the original has_room check: available = end_free
// - (num_records+1)*4).
func (p *Page) freeSpace() int {
	return p.EndFree() - p.slotDirEnd()
}

// Add stores data as a new record and returns its id. Fails with
// ErrNoRoom if there is not enough contiguous space for both the record
// bytes and a new slot entry.
func (p *Page) Add(data []byte) (RecordID, error) {
	if len(data) > p.freeSpace() {
		return 0, ErrNoRoom
	}
	id := RecordID(p.NumRecords() + 1)
	endFree := p.EndFree()
	newOffset := endFree - len(data) + 1
	copy(p.buf[newOffset:newOffset+len(data)], data)
	p.setEndFree(newOffset - 1)
	p.setSlot(id, len(data), newOffset)
	p.setNumRecords(int(id))
	return id, nil
}

// Get returns the bytes stored at id, or nil if the slot is a
// tombstone. Returns ErrNotFound if id was never allocated.
func (p *Page) Get(id RecordID) ([]byte, error) {
	if int(id) > p.NumRecords() || id == 0 {
		return nil, ErrNotFound
	}
	if p.isTombstone(id) {
		return nil, nil
	}
	size := p.slotSizeField(id)
	off := p.slotOffsetField(id)
	out := make([]byte, size)
	copy(out, p.buf[off:off+size])
	return out, nil
}

// Put replaces the record at id with data, preserving id. The policy is
// delete-then-append: the old slot is tombstoned (compacting the page)
// and data is written fresh at the top of the free region. Fails with
// ErrNoRoom if the net growth does not fit.
func (p *Page) Put(id RecordID, data []byte) error {
	if int(id) > p.NumRecords() || id == 0 {
		return ErrNotFound
	}
	if p.isTombstone(id) {
		return ErrNotFound
	}
	oldSize := p.slotSizeField(id)
	newSize := len(data)
	if newSize-oldSize > p.freeSpace() {
		return ErrNoRoom
	}
	if err := p.del(id); err != nil {
		return err
	}
	endFree := p.EndFree()
	newOffset := endFree - newSize + 1
	copy(p.buf[newOffset:newOffset+newSize], data)
	p.setEndFree(newOffset - 1)
	p.setSlot(id, newSize, newOffset)
	return nil
}

// Del tombstones id and compacts the data region, sliding every record
// that lived below or at the deleted record's offset upward by the
// freed size and patching its slot accordingly.
func (p *Page) Del(id RecordID) error {
	if int(id) > p.NumRecords() || id == 0 {
		return ErrNotFound
	}
	return p.del(id)
}

func (p *Page) del(id RecordID) error {
	size := p.slotSizeField(id)
	offset := p.slotOffsetField(id)
	if size == 0 && offset == 0 {
		// already a tombstone; nothing to compact.
		return nil
	}
	p.setSlot(id, 0, 0)

	endFree := p.EndFree()
	shift := size
	// Region [endFree+1, offset) slides up to [endFree+1+shift, offset+shift).
	start := offset
	if start > endFree+1 {
		src := p.buf[endFree+1 : start]
		copy(p.buf[endFree+1+shift:start+shift], src)
	}
	p.setEndFree(endFree + shift)

	n := p.NumRecords()
	for i := RecordID(1); i <= RecordID(n); i++ {
		if p.isTombstone(i) {
			continue
		}
		o := p.slotOffsetField(i)
		if o <= offset {
			sz := p.slotSizeField(i)
			p.setSlot(i, sz, o+shift)
		}
	}
	return nil
}

// IDs returns every live (non-tombstoned) record id, ascending.
func (p *Page) IDs() []RecordID {
	n := p.NumRecords()
	ids := make([]RecordID, 0, n)
	for i := RecordID(1); i <= RecordID(n); i++ {
		if !p.isTombstone(i) {
			ids = append(ids, i)
		}
	}
	return ids
}
