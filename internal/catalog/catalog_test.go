package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilndb/kilndb/internal/ast"
	"github.com/kilndb/kilndb/internal/relation"
)

func openCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(dir, "")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBootstrapSeedsSystemMetadata(t *testing.T) {
	c := openCatalog(t)

	res, err := c.Execute(ast.ShowTables{})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 0 rows", res.Message)

	res, err = c.Execute(ast.ShowColumns{Table: TablesTable})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 1 rows", res.Message)

	res, err = c.Execute(ast.ShowColumns{Table: ColumnsTable})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 3 rows", res.Message)
}

func TestEndToEndCreateShowDropTable(t *testing.T) {
	c := openCatalog(t)

	res, err := c.Execute(ast.CreateTable{
		Table: "foo",
		Columns: []ast.ColumnDef{
			{Name: "id", Type: relation.ColInt},
			{Name: "data", Type: relation.ColText},
			{Name: "x", Type: relation.ColInt},
			{Name: "y", Type: relation.ColInt},
			{Name: "z", Type: relation.ColInt},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "created foo", res.Message)

	res, err = c.Execute(ast.ShowColumns{Table: "foo"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 5 rows", res.Message)

	res, err = c.Execute(ast.DropTable{Table: "foo"})
	require.NoError(t, err)
	assert.Equal(t, "dropped foo", res.Message)

	res, err = c.Execute(ast.ShowColumns{Table: "foo"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 0 rows", res.Message)
}

func TestEndToEndCreateShowDropIndex(t *testing.T) {
	c := openCatalog(t)

	_, err := c.Execute(ast.CreateTable{
		Table: "ha",
		Columns: []ast.ColumnDef{
			{Name: "x", Type: relation.ColInt},
			{Name: "y", Type: relation.ColInt},
			{Name: "z", Type: relation.ColInt},
		},
	})
	require.NoError(t, err)

	res, err := c.Execute(ast.CreateIndex{Index: "fx", Table: "ha", IndexColumns: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, "created index fx", res.Message)

	res, err = c.Execute(ast.ShowIndex{Table: "ha"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 2 rows", res.Message)

	res, err = c.Execute(ast.DropIndex{Index: "fx", Table: "ha"})
	require.NoError(t, err)
	assert.Equal(t, "dropped index fx", res.Message)

	res, err = c.Execute(ast.ShowIndex{Table: "ha"})
	require.NoError(t, err)
	assert.Equal(t, "successfully returned 0 rows", res.Message)
}

func TestShowTablesExcludesCatalogNames(t *testing.T) {
	c := openCatalog(t)
	_, err := c.Execute(ast.CreateTable{Table: "users", Columns: []ast.ColumnDef{{Name: "id", Type: relation.ColInt}}})
	require.NoError(t, err)

	res, err := c.Execute(ast.ShowTables{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "users", res.Rows[0][0].Text())
}

func TestDropReservedTableFails(t *testing.T) {
	c := openCatalog(t)
	_, err := c.Execute(ast.DropTable{Table: TablesTable})
	assert.ErrorIs(t, err, ErrExec)
}

func TestDropIndexNotFound(t *testing.T) {
	c := openCatalog(t)
	_, err := c.Execute(ast.CreateTable{Table: "t", Columns: []ast.ColumnDef{{Name: "a", Type: relation.ColInt}}})
	require.NoError(t, err)

	_, err = c.Execute(ast.DropIndex{Index: "nope", Table: "t"})
	assert.Error(t, err)
}
