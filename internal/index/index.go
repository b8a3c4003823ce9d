// Package index defines the catalog-facing lifecycle of an index:
// creation and removal of the on-disk structure backing a
// `(table, index)` pair. B-tree body algorithms are an explicit external
// collaborator; this package only owns the part the catalog depends on.
package index

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kilndb/kilndb/internal/heap"
)

// Index is the physical lifecycle contract the catalog drives during
// CREATE INDEX / DROP INDEX.
type Index interface {
	Create() error
	Drop() error
}

// fileIndex is a minimal stand-in for a B-tree's on-disk body: a named
// heap file that exists between Create and Drop. The search structure
// itself is out of scope; what the catalog needs is that the name is
// claimed on create and released on drop.
type fileIndex struct {
	file *heap.File
}

func (f *fileIndex) Create() error { return f.file.Create() }
func (f *fileIndex) Drop() error   { return f.file.Drop() }

// Manager looks up or creates the Index for a given (table, name) pair.
type Manager struct {
	mu   sync.Mutex
	dir  string
	live map[string]Index

	// failNext, when set, makes the next Create call fail instead of
	// touching storage; used to exercise the DDL rollback path in tests
	// without needing a real index body.
	failNext error
}

// NewManager returns a Manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, live: make(map[string]Index)}
}

// FailNextCreate arranges for the next Create call to return err
// instead of performing physical creation.
func (m *Manager) FailNextCreate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func key(table, name string) string { return table + "." + name }

// Create creates the physical index backing (table, name).
func (m *Manager) Create(table, name string) error {
	m.mu.Lock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	idx := &fileIndex{file: heap.New(m.dir, indexFileName(table, name))}
	if err := idx.Create(); err != nil {
		return errors.Wrapf(err, "index: create %s on %s", name, table)
	}

	m.mu.Lock()
	m.live[key(table, name)] = idx
	m.mu.Unlock()
	log.WithFields(log.Fields{"table": table, "index": name}).Info("index: created")
	return nil
}

// Drop drops the physical index backing (table, name). Reports
// "index not found" if no such index is live.
func (m *Manager) Drop(table, name string) error {
	m.mu.Lock()
	idx, ok := m.live[key(table, name)]
	m.mu.Unlock()
	if !ok {
		return errors.Errorf("index not found: %s on %s", name, table)
	}
	if err := idx.Drop(); err != nil {
		return errors.Wrapf(err, "index: drop %s on %s", name, table)
	}
	m.mu.Lock()
	delete(m.live, key(table, name))
	m.mu.Unlock()
	log.WithFields(log.Fields{"table": table, "index": name}).Info("index: dropped")
	return nil
}

func indexFileName(table, name string) string {
	return "_idx_" + table + "_" + name
}
