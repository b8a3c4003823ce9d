package relation

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kilndb/kilndb/internal/blockstore"
	"github.com/kilndb/kilndb/internal/heap"
	"github.com/kilndb/kilndb/internal/page"
)

// Handle identifies a row: the block it lives in, plus its record id
// within that block's slotted page. It remains valid across reopen so
// long as the record is not deleted.
type Handle struct {
	BlockID  blockstore.BlockID
	RecordID page.RecordID
}

// Table is the logical row interface over one heap file: a schema plus
// the physical file backing it.
type Table struct {
	name   string
	schema Schema
	file   *heap.File
}

// New returns a Table bound to name/schema, rooted at dir. It does not
// touch the filesystem; call Create, CreateIfNotExists, or Open next.
func New(dir, name string, schema Schema) *Table {
	return &Table{name: name, schema: schema, file: heap.New(dir, name)}
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's column list.
func (t *Table) Schema() Schema { return t.schema }

// Create delegates to the heap file.
func (t *Table) Create() error { return t.file.Create() }

// CreateIfNotExists creates the table, or opens it if a create conflict
// indicates the backing file already exists.
func (t *Table) CreateIfNotExists() error {
	if err := t.file.Create(); err != nil {
		if errors.Is(err, blockstore.ErrExists) {
			return t.file.Open()
		}
		return err
	}
	return nil
}

// Open delegates to the heap file.
func (t *Table) Open() error { return t.file.Open() }

// Close delegates to the heap file.
func (t *Table) Close() error { return t.file.Close() }

// Drop delegates to the heap file.
func (t *Table) Drop() error { return t.file.Drop() }

// Insert validates, marshals, and appends row, retrying on a fresh page
// when the current last page reports NoRoom. Returns the new handle.
func (t *Table) Insert(row Row) (Handle, error) {
	data, err := t.schema.Marshal(row)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "relation: %s: insert", t.name)
	}

	blockID := t.file.Last()
	p, err := t.file.Get(blockID)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "relation: %s: insert: read last block", t.name)
	}

	rid, err := p.Add(data)
	if errors.Is(err, page.ErrNoRoom) {
		p, err = t.file.GetNew()
		if err != nil {
			return Handle{}, errors.Wrapf(err, "relation: %s: insert: allocate block", t.name)
		}
		blockID = t.file.Last()
		rid, err = p.Add(data)
		if err != nil {
			return Handle{}, errors.Wrapf(err, "relation: %s: insert: fresh block still full", t.name)
		}
	} else if err != nil {
		return Handle{}, errors.Wrapf(err, "relation: %s: insert", t.name)
	}

	if err := t.file.Put(blockID, p); err != nil {
		return Handle{}, errors.Wrapf(err, "relation: %s: insert: write back", t.name)
	}
	log.WithFields(log.Fields{"table": t.name, "block": blockID, "record": rid}).Debug("relation: inserted")
	return Handle{BlockID: blockID, RecordID: rid}, nil
}

// Select performs a full scan, returning a handle for every live record
// across every block, in block then record order. Restartable, not
// lazy: the result is materialised.
func (t *Table) Select() ([]Handle, error) {
	var out []Handle
	for _, bid := range t.file.BlockIDs() {
		p, err := t.file.Get(bid)
		if err != nil {
			return nil, errors.Wrapf(err, "relation: %s: select: read block %d", t.name, bid)
		}
		for _, rid := range p.IDs() {
			out = append(out, Handle{BlockID: bid, RecordID: rid})
		}
	}
	return out, nil
}

// SelectWhere full-scans and keeps only handles whose projected row
// matches every key/value pair in where. A row missing a tested key is
// excluded, never matched.
func (t *Table) SelectWhere(where Row) ([]Handle, error) {
	handles, err := t.Select()
	if err != nil {
		return nil, err
	}
	if len(where) == 0 {
		return handles, nil
	}
	var out []Handle
	for _, h := range handles {
		row, err := t.Project(h, nil)
		if err != nil {
			return nil, err
		}
		if matches(row, where) {
			out = append(out, h)
		}
	}
	return out, nil
}

func matches(row Row, where Row) bool {
	for k, want := range where {
		got, ok := row[k]
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

// Project unmarshals all columns at h, then, if columns is non-empty,
// restricts the result to the named columns in the given order.
func (t *Table) Project(h Handle, columns []string) (Row, error) {
	p, err := t.file.Get(h.BlockID)
	if err != nil {
		return nil, errors.Wrapf(err, "relation: %s: project: read block %d", t.name, h.BlockID)
	}
	data, err := p.Get(h.RecordID)
	if err != nil {
		return nil, errors.Wrapf(err, "relation: %s: project: read record %d", t.name, h.RecordID)
	}
	full, err := t.schema.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "relation: %s: project", t.name)
	}
	if len(columns) == 0 {
		return full, nil
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := full[c]; ok {
			out[c] = v
		}
	}
	return out, nil
}

// Delete tombstones the record at h.
func (t *Table) Delete(h Handle) error {
	p, err := t.file.Get(h.BlockID)
	if err != nil {
		return errors.Wrapf(err, "relation: %s: delete: read block %d", t.name, h.BlockID)
	}
	if err := p.Del(h.RecordID); err != nil {
		return errors.Wrapf(err, "relation: %s: delete: record %d", t.name, h.RecordID)
	}
	if err := t.file.Put(h.BlockID, p); err != nil {
		return errors.Wrapf(err, "relation: %s: delete: write back", t.name)
	}
	return nil
}
