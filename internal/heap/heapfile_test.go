package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAllocatesFirstBlock(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	defer f.Drop()

	assert.EqualValues(t, 1, f.Last())
}

func TestBlockIDsAscendingAfterGetNew(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	defer f.Drop()

	for i := 0; i < 4; i++ {
		_, err := f.GetNew()
		require.NoError(t, err)
	}

	ids := f.BlockIDs()
	require.Len(t, ids, 5) // 1 from Create + 4 more
	for i, id := range ids {
		assert.EqualValues(t, i+1, id)
	}
}

func TestCreateTwiceFailsExclusive(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	defer f.Drop()

	f2 := New(dir, "widgets")
	err := f2.Create()
	assert.Error(t, err)
}

func TestReopenRestoresLast(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	_, err := f.GetNew()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2 := New(dir, "widgets")
	require.NoError(t, f2.Open())
	defer f2.Drop()
	assert.EqualValues(t, 2, f2.Last())
}

func TestGetPutRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	defer f.Drop()

	p, err := f.Get(1)
	require.NoError(t, err)
	_, err = p.Add([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Put(1, p))

	reread, err := f.Get(1)
	require.NoError(t, err)
	got, err := reread.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, "widgets")
	require.NoError(t, f.Create())
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}
