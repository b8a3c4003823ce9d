package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilndb/kilndb/internal/ast"
	"github.com/kilndb/kilndb/internal/relation"
)

// TestCreateIndexRollsBackOnPhysicalFailure forces the index manager's
// physical create to fail after the _indices rows are already inserted,
// and checks the compensating deletes leave no trace behind.
func TestCreateIndexRollsBackOnPhysicalFailure(t *testing.T) {
	c := openCatalog(t)

	_, err := c.Execute(ast.CreateTable{
		Table:   "widgets",
		Columns: []ast.ColumnDef{{Name: "sku", Type: relation.ColText}},
	})
	require.NoError(t, err)

	c.idx.FailNextCreate(errors.New("disk full"))

	_, err = c.Execute(ast.CreateIndex{Index: "ix_sku", Table: "widgets", IndexColumns: []string{"sku"}})
	require.Error(t, err)

	res, err := c.Execute(ast.ShowIndex{Table: "widgets"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 0 rows", res.Message)
}

// TestCreateTableRollsBackPartialColumns exercises the rollback path when
// the physical table create collides with an existing file of the same
// name: the _tables and _columns rows inserted ahead of the physical
// create must be undone, leaving the catalog as if CREATE TABLE had never
// been attempted.
func TestCreateTableRollsBackPartialColumns(t *testing.T) {
	c := openCatalog(t)

	phys := relation.New(c.dir, "dupe", relation.Schema{{Name: "a", Type: relation.ColInt}})
	require.NoError(t, phys.Create())
	t.Cleanup(func() { phys.Close() })

	_, err := c.Execute(ast.CreateTable{
		Table:   "dupe",
		Columns: []ast.ColumnDef{{Name: "a", Type: relation.ColInt}, {Name: "b", Type: relation.ColInt}},
	})
	require.Error(t, err)

	res, err := c.Execute(ast.ShowColumns{Table: "dupe"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 0 rows", res.Message)

	res, err = c.Execute(ast.ShowTables{})
	require.NoError(t, err)
	for _, row := range res.Rows {
		assert.NotEqual(t, "dupe", row[0].Text())
	}
}
