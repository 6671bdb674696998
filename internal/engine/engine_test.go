package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/robert-malhotra/go-hdf4/backend"
)

type mapStore struct {
	mu    sync.Mutex
	files map[string]*Container
}

func (m *mapStore) Load(path string) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[path]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return c.Clone(), nil
}

func (m *mapStore) Save(path string, c *Container) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string]*Container)
	}
	m.files[path] = c.Clone()
	return nil
}

func newTestEngine(t *testing.T) (*Engine, backend.Handle) {
	t.Helper()
	e := New(&mapStore{}, WithLogger(zaptest.NewLogger(t)))
	h, err := e.OpenContainer("test.h4", backend.Create)
	require.NoError(t, err)
	return e, h
}

func create(t *testing.T, e *Engine, h backend.Handle, spec backend.CreateSpec) backend.ObjectID {
	t.Helper()
	oh, err := e.CreateObject(h, spec)
	require.NoError(t, err)
	defer e.Detach(oh)
	id, err := e.ObjectID(oh)
	require.NoError(t, err)
	return id
}

func TestOpenMissing(t *testing.T) {
	e := New(&mapStore{})
	_, err := e.OpenContainer("nope.h4", backend.ReadOnly)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, Error.Has(err))
}

func TestCreateAndReopen(t *testing.T) {
	store := &mapStore{}
	e := New(store)
	h, err := e.OpenContainer("a.h4", backend.Create)
	require.NoError(t, err)

	g := create(t, e, h, backend.CreateSpec{Kind: backend.KindGroup, Name: "g"})
	arr := create(t, e, h, backend.CreateSpec{
		Kind: backend.KindArray, Name: "temp", Dims: []int64{2, 3}, Type: backend.TypeInt16,
	})
	assert.Equal(t, backend.TagVG, g.Tag)
	assert.Equal(t, backend.TagNDG, arr.Tag)
	assert.Equal(t, int32(1), arr.Ref)

	gh, err := e.Attach(h, g, backend.ReadWrite)
	require.NoError(t, err)
	require.NoError(t, e.InsertChild(gh, arr))
	require.NoError(t, e.Detach(gh))
	require.NoError(t, e.CloseContainer(h))

	h, err = e.OpenContainer("a.h4", backend.ReadOnly)
	require.NoError(t, err)
	defer e.CloseContainer(h)

	groups, err := e.EnumerateTopLevel(h, backend.KindGroup, backend.Window{})
	require.NoError(t, err)
	assert.Equal(t, []backend.ObjectID{g}, groups)

	arrays, err := e.EnumerateTopLevel(h, backend.KindArray, backend.Window{})
	require.NoError(t, err)
	assert.Empty(t, arrays, "arrays inside a group are not lone")

	// New refs continue after the reserved ones.
	rw, err := e.OpenContainer("a.h4", backend.ReadWrite)
	require.NoError(t, err)
	next := create(t, e, rw, backend.CreateSpec{Kind: backend.KindArray, Name: "b", Dims: []int64{1}, Type: backend.TypeInt8})
	assert.Equal(t, int32(2), next.Ref)
	require.NoError(t, e.CloseContainer(rw))
}

func TestEnumerateWindow(t *testing.T) {
	e, h := newTestEngine(t)
	for range 100 {
		create(t, e, h, backend.CreateSpec{Kind: backend.KindArray, Dims: []int64{1}, Type: backend.TypeUInt8})
	}

	ids, err := e.EnumerateTopLevel(h, backend.KindArray, backend.Window{Start: 10, MaxCount: 20})
	require.NoError(t, err)
	require.Len(t, ids, 20)
	assert.Equal(t, int32(11), ids[0].Ref)
	assert.Equal(t, int32(30), ids[19].Ref)

	all, err := e.EnumerateTopLevel(h, backend.KindArray, backend.Window{Start: 50, MaxCount: 1000})
	require.NoError(t, err)
	assert.Len(t, all, 100)
}

func TestNoSubsystem(t *testing.T) {
	store := &mapStore{}
	require.NoError(t, store.Save("bare.h4", &Container{}))

	e := New(store)
	h, err := e.OpenContainer("bare.h4", backend.ReadOnly)
	require.NoError(t, err)

	_, err = e.EnumerateTopLevel(h, backend.KindImage, backend.Window{})
	assert.ErrorIs(t, err, backend.ErrNoSubsystem)
	_, err = e.GlobalAttrs(h, backend.SubsystemArray)
	assert.ErrorIs(t, err, backend.ErrNoSubsystem)

	groups, err := e.EnumerateTopLevel(h, backend.KindGroup, backend.Window{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestReadWriteStrided(t *testing.T) {
	e, h := newTestEngine(t)
	oh, err := e.CreateObject(h, backend.CreateSpec{
		Kind: backend.KindArray, Dims: []int64{3, 4}, Type: backend.TypeUInt8,
	})
	require.NoError(t, err)
	defer e.Detach(oh)

	all := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	require.NoError(t, e.WriteRaw(oh, nil, nil, nil, all))

	got, err := e.ReadRaw(oh, []int64{0, 1}, []int64{2, 2}, []int64{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 3, 9, 11}, got)

	err = e.WriteRaw(oh, []int64{0, 0}, nil, []int64{1, 2}, []byte{1})
	assert.ErrorIs(t, err, backend.ErrShapeMismatch)

	_, err = e.ReadRaw(oh, []int64{2, 0}, nil, []int64{2, 1})
	assert.Error(t, err)
}

func TestUnlimitedGrowth(t *testing.T) {
	e, h := newTestEngine(t)
	oh, err := e.CreateObject(h, backend.CreateSpec{
		Kind:    backend.KindArray,
		Dims:    []int64{2, 2},
		MaxDims: []int64{backend.Unlimited, 2},
		Type:    backend.TypeInt8,
	})
	require.NoError(t, err)
	defer e.Detach(oh)

	require.NoError(t, e.WriteRaw(oh, []int64{3, 0}, nil, []int64{1, 2}, []byte{7, 8}))

	shape, err := e.ShapeInfo(oh)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, shape.Dims)

	got, err := e.ReadRaw(oh, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 7, 8}, got)
}

func TestImageAxes(t *testing.T) {
	e, h := newTestEngine(t)
	// 3 wide, 2 high, 2 components.
	oh, err := e.CreateObject(h, backend.CreateSpec{
		Kind: backend.KindImage, Dims: []int64{3, 2}, NComp: 2, Type: backend.TypeUInt8,
	})
	require.NoError(t, err)
	defer e.Detach(oh)

	pixels := []byte{
		0, 0, 1, 0, 2, 0, // row 0
		0, 1, 1, 1, 2, 1, // row 1
	}
	require.NoError(t, e.WriteRaw(oh, []int64{0, 0}, nil, []int64{3, 2}, pixels))

	// Column x=1 over both rows.
	got, err := e.ReadRaw(oh, []int64{1, 0}, nil, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1, 1}, got)
}

func TestTableRecords(t *testing.T) {
	e, h := newTestEngine(t)
	oh, err := e.CreateObject(h, backend.CreateSpec{
		Kind: backend.KindTable,
		Name: "obs",
		Fields: []backend.Field{
			{Name: "id", Type: backend.TypeInt16},
			{Name: "v", Type: backend.TypeUInt8, Order: 2},
		},
	})
	require.NoError(t, err)
	defer e.Detach(oh)

	recs := []byte{0, 1, 9, 9, 0, 2, 8, 8}
	require.NoError(t, e.WriteRaw(oh, []int64{0}, nil, []int64{2}, recs))

	shape, err := e.ShapeInfo(oh)
	require.NoError(t, err)
	assert.Equal(t, 4, shape.RecordSize)
	assert.Equal(t, []int64{2}, shape.Dims)

	got, err := e.ReadRaw(oh, []int64{1}, nil, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 2, 8, 8}, got)
}

func TestAttributes(t *testing.T) {
	e, h := newTestEngine(t)
	oh, err := e.CreateObject(h, backend.CreateSpec{Kind: backend.KindGroup, Name: "g"})
	require.NoError(t, err)
	defer e.Detach(oh)

	require.NoError(t, e.WriteAttr(oh, backend.RawAttr{Name: "units", Type: backend.TypeChar8, Count: 1, Data: []byte("K")}))
	require.NoError(t, e.WriteAttr(oh, backend.RawAttr{Name: "scale", Type: backend.TypeInt16, Count: 2, Data: []byte{0, 1, 0, 2}}))
	require.NoError(t, e.WriteAttr(oh, backend.RawAttr{Name: "units", Type: backend.TypeChar8, Count: 2, Data: []byte("mK")}))

	shape, err := e.ShapeInfo(oh)
	require.NoError(t, err)
	assert.Equal(t, 2, shape.AttrCount)

	info, err := e.AttrInfo(oh, 0)
	require.NoError(t, err)
	assert.Equal(t, backend.AttrInfo{Name: "units", Type: backend.TypeChar8, Count: 2}, info)

	data, err := e.ReadAttr(oh, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("mK"), data)

	_, err = e.ReadAttr(oh, 5)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	err = e.WriteAttr(oh, backend.RawAttr{Name: "bad", Type: backend.TypeInt32, Count: 2, Data: []byte{1}})
	assert.ErrorIs(t, err, backend.ErrShapeMismatch)

	require.NoError(t, e.RemoveAttr(oh, "units"))
	shape, _ = e.ShapeInfo(oh)
	assert.Equal(t, 1, shape.AttrCount)
}

func TestReadOnly(t *testing.T) {
	store := &mapStore{}
	e := New(store)
	h, err := e.OpenContainer("ro.h4", backend.Create)
	require.NoError(t, err)
	id := create(t, e, h, backend.CreateSpec{Kind: backend.KindArray, Dims: []int64{1}, Type: backend.TypeInt8})
	require.NoError(t, e.CloseContainer(h))

	h, err = e.OpenContainer("ro.h4", backend.ReadOnly)
	require.NoError(t, err)
	oh, err := e.Attach(h, id, backend.ReadOnly)
	require.NoError(t, err)
	defer e.Detach(oh)

	assert.ErrorIs(t, e.WriteRaw(oh, nil, nil, nil, []byte{1}), backend.ErrReadOnly)
	_, err = e.CreateObject(h, backend.CreateSpec{Kind: backend.KindGroup})
	assert.ErrorIs(t, err, backend.ErrReadOnly)
	assert.ErrorIs(t, e.WriteGlobalAttr(h, backend.SubsystemArray, backend.RawAttr{Name: "a", Type: backend.TypeInt8, Count: 1, Data: []byte{1}}), backend.ErrReadOnly)
}

func TestPalette(t *testing.T) {
	e, h := newTestEngine(t)
	oh, err := e.CreateObject(h, backend.CreateSpec{Kind: backend.KindImage, Dims: []int64{2, 2}, Type: backend.TypeUInt8})
	require.NoError(t, err)
	defer e.Detach(oh)

	_, err = e.ReadPalette(oh, 0)
	assert.ErrorIs(t, err, backend.ErrNoPalette)

	p := backend.Palette{NComp: 3, Type: backend.TypeUInt8, Entries: 2, Data: []byte{1, 2, 3, 4, 5, 6}}
	require.NoError(t, e.WritePalette(oh, 0, p))

	got, err := e.ReadPalette(oh, 0)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCallsAndFaults(t *testing.T) {
	e, h := newTestEngine(t)
	boom := errors.New("boom")

	e.Fail("Annotations", boom)
	_, err := e.Annotations(h)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, e.Calls("Annotations"))

	e.Fail("Annotations", nil)
	_, err = e.Annotations(h)
	assert.NoError(t, err)
	assert.Equal(t, 2, e.Calls("Annotations"))

	e.ResetCalls()
	assert.Equal(t, 0, e.Calls("Annotations"))
}

func TestDetachBalance(t *testing.T) {
	e, h := newTestEngine(t)
	id := create(t, e, h, backend.CreateSpec{Kind: backend.KindGroup})
	assert.Equal(t, 0, e.Attached())

	oh, err := e.Attach(h, id, backend.ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Attached())
	require.NoError(t, e.Detach(oh))
	assert.ErrorIs(t, e.Detach(oh), backend.ErrBadHandle)
	assert.Equal(t, 0, e.Attached())
}

func TestObjectClone(t *testing.T) {
	o := &Object{Dims: []int64{1}, Attrs: []backend.RawAttr{{Name: "a", Data: []byte{1}}}, Data: []byte{5}}
	c := o.Clone()
	c.Dims[0] = 9
	c.Attrs[0].Data[0] = 9
	c.Data[0] = 9
	assert.Equal(t, int64(1), o.Dims[0])
	assert.Equal(t, byte(1), o.Attrs[0].Data[0])
	assert.Equal(t, byte(5), o.Data[0])
}
