package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-hdf4/backend"
)

func TestPersistAcrossSessions(t *testing.T) {
	b := New()

	h, err := b.OpenContainer("one.h4", backend.Create)
	require.NoError(t, err)
	oh, err := b.CreateObject(h, backend.CreateSpec{Kind: backend.KindArray, Name: "a", Dims: []int64{2}, Type: backend.TypeInt8})
	require.NoError(t, err)
	require.NoError(t, b.WriteRaw(oh, nil, nil, nil, []byte{4, 5}))
	require.NoError(t, b.Detach(oh))

	// Not visible before close.
	assert.Empty(t, b.Paths())
	require.NoError(t, b.CloseContainer(h))
	assert.Equal(t, []string{"one.h4"}, b.Paths())

	h, err = b.OpenContainer("one.h4", backend.ReadOnly)
	require.NoError(t, err)
	defer b.CloseContainer(h)

	ids, err := b.EnumerateTopLevel(h, backend.KindArray, backend.Window{})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	oh, err = b.Attach(h, ids[0], backend.ReadOnly)
	require.NoError(t, err)
	defer b.Detach(oh)
	data, err := b.ReadRaw(oh, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, data)
	assert.Equal(t, 1, b.Calls("ReadRaw"))
}

func TestMissing(t *testing.T) {
	_, err := New().OpenContainer("missing.h4", backend.ReadOnly)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
