package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		{Name: "id", Type: ColInt},
		{Name: "name", Type: ColText},
		{Name: "active", Type: ColBoolean},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := testSchema()
	row := Row{"id": IntValue(7), "name": TextValue("widget"), "active": BoolValue(true)}

	buf, err := s.Marshal(row)
	require.NoError(t, err)

	got, err := s.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestMarshalRejectsMissingColumn(t *testing.T) {
	s := testSchema()
	row := Row{"id": IntValue(1), "name": TextValue("x")}
	_, err := s.Marshal(row)
	assert.ErrorIs(t, err, ErrRelation)
}

func TestInsertAndSelectFullScan(t *testing.T) {
	dir := t.TempDir()
	tbl := New(dir, "items", Schema{{Name: "id", Type: ColInt}, {Name: "label", Type: ColText}})
	require.NoError(t, tbl.Create())
	defer tbl.Drop()

	var handles []Handle
	for i := 0; i < 5; i++ {
		h, err := tbl.Insert(Row{"id": IntValue(int32(i)), "label": TextValue("item")})
		require.NoError(t, err)
		handles = append(handles, h)
	}

	got, err := tbl.Select()
	require.NoError(t, err)
	assert.Equal(t, handles, got)
}

func TestInsertSpillsToNewPageWhenFull(t *testing.T) {
	dir := t.TempDir()
	tbl := New(dir, "items", Schema{{Name: "blob", Type: ColText}})
	require.NoError(t, tbl.Create())
	defer tbl.Drop()

	big := make([]byte, 3000)
	for i := range big {
		big[i] = 'x'
	}

	h1, err := tbl.Insert(Row{"blob": TextValue(string(big))})
	require.NoError(t, err)
	h2, err := tbl.Insert(Row{"blob": TextValue(string(big))})
	require.NoError(t, err)

	assert.NotEqual(t, h1.BlockID, h2.BlockID, "second big row should have spilled to a new block")
}

func TestSelectWhereFiltersByEquality(t *testing.T) {
	dir := t.TempDir()
	tbl := New(dir, "people", Schema{{Name: "name", Type: ColText}, {Name: "age", Type: ColInt}})
	require.NoError(t, tbl.Create())
	defer tbl.Drop()

	_, _ = tbl.Insert(Row{"name": TextValue("ada"), "age": IntValue(30)})
	hBob, _ := tbl.Insert(Row{"name": TextValue("bob"), "age": IntValue(40)})
	_, _ = tbl.Insert(Row{"name": TextValue("cleo"), "age": IntValue(30)})

	got, err := tbl.SelectWhere(Row{"name": TextValue("bob")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, hBob, got[0])
}

func TestProjectRestrictsColumns(t *testing.T) {
	dir := t.TempDir()
	tbl := New(dir, "people", Schema{{Name: "name", Type: ColText}, {Name: "age", Type: ColInt}})
	require.NoError(t, tbl.Create())
	defer tbl.Drop()

	h, err := tbl.Insert(Row{"name": TextValue("ada"), "age": IntValue(30)})
	require.NoError(t, err)

	full, err := tbl.Project(h, nil)
	require.NoError(t, err)
	assert.Len(t, full, 2)

	restricted, err := tbl.Project(h, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, Row{"name": TextValue("ada")}, restricted)
}

func TestCreateIfNotExistsOpensExisting(t *testing.T) {
	dir := t.TempDir()
	tbl := New(dir, "people", Schema{{Name: "name", Type: ColText}})
	require.NoError(t, tbl.CreateIfNotExists())
	h, err := tbl.Insert(Row{"name": TextValue("ada")})
	require.NoError(t, err)
	require.NoError(t, tbl.Close())

	reopened := New(dir, "people", Schema{{Name: "name", Type: ColText}})
	require.NoError(t, reopened.CreateIfNotExists())
	defer reopened.Drop()

	row, err := reopened.Project(h, nil)
	require.NoError(t, err)
	assert.Equal(t, "ada", row["name"].Text())
}
