// Package catalog bootstraps the schema catalog (`_tables`, `_columns`,
// `_indices`) on top of the heap-table layer, and drives DDL execution
// with compensating rollback plus SHOW reflection.
package catalog

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kilndb/kilndb/internal/index"
	"github.com/kilndb/kilndb/internal/relation"
)

// Reserved catalog table names. DROP TABLE on any of these fails.
const (
	TablesTable  = "_tables"
	ColumnsTable = "_columns"
	IndicesTable = "_indices"
)

// ErrExec wraps executor-level failures: a catalog-name DROP, an
// unrecognised statement type.
var ErrExec = errors.New("exec error")

// Catalog is the process-wide schema state, threaded explicitly rather
// than held in package-level singletons.
type Catalog struct {
	dir     string
	tables  *relation.Table
	columns *relation.Table
	indices *relation.Table
	idx     *index.Manager

	defaultIndexType string
}

// Open bootstraps (or reopens) the three catalog tables under dir and
// seeds their own rows into `_tables` idempotently.
func Open(dir string, defaultIndexType string) (*Catalog, error) {
	if defaultIndexType == "" {
		defaultIndexType = "BTREE"
	}

	c := &Catalog{
		dir:              dir,
		idx:              index.NewManager(dir),
		defaultIndexType: defaultIndexType,
	}

	c.tables = relation.New(dir, TablesTable, relation.Schema{
		{Name: "table_name", Type: relation.ColText},
	})
	if err := c.tables.CreateIfNotExists(); err != nil {
		return nil, errors.Wrap(err, "catalog: bootstrap _tables")
	}

	c.columns = relation.New(dir, ColumnsTable, relation.Schema{
		{Name: "table_name", Type: relation.ColText},
		{Name: "column_name", Type: relation.ColText},
		{Name: "data_type", Type: relation.ColText},
	})
	if err := c.columns.CreateIfNotExists(); err != nil {
		return nil, errors.Wrap(err, "catalog: bootstrap _columns")
	}

	c.indices = relation.New(dir, IndicesTable, relation.Schema{
		{Name: "table_name", Type: relation.ColText},
		{Name: "index_name", Type: relation.ColText},
		{Name: "seq_in_index", Type: relation.ColInt},
		{Name: "column_name", Type: relation.ColText},
		{Name: "index_type", Type: relation.ColText},
		{Name: "is_unique", Type: relation.ColBoolean},
	})
	if err := c.indices.CreateIfNotExists(); err != nil {
		return nil, errors.Wrap(err, "catalog: bootstrap _indices")
	}

	if err := c.seedSystemMetadata(); err != nil {
		return nil, errors.Wrap(err, "catalog: seed system metadata")
	}

	log.WithField("dir", dir).Info("catalog: opened")
	return c, nil
}

// seedSystemMetadata idempotently inserts rows for _tables, _columns,
// _indices into _tables, plus each catalog table's own column
// descriptions into _columns. It seeds only when _tables is empty, so
// reopening an existing catalog inserts no duplicate rows.
func (c *Catalog) seedSystemMetadata() error {
	existing, err := c.tables.Select()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	systemSchemas := []struct {
		name   string
		schema relation.Schema
	}{
		{TablesTable, c.tables.Schema()},
		{ColumnsTable, c.columns.Schema()},
		{IndicesTable, c.indices.Schema()},
	}

	for _, sys := range systemSchemas {
		if _, err := c.tables.Insert(relation.Row{"table_name": relation.TextValue(sys.name)}); err != nil {
			return err
		}
		for _, col := range sys.schema {
			_, err := c.columns.Insert(relation.Row{
				"table_name":  relation.TextValue(sys.name),
				"column_name": relation.TextValue(col.Name),
				"data_type":   relation.TextValue(col.Type.String()),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the three catalog tables.
func (c *Catalog) Close() error {
	var first error
	for _, t := range []*relation.Table{c.tables, c.columns, c.indices} {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func isReserved(name string) bool {
	return name == TablesTable || name == ColumnsTable || name == IndicesTable
}
