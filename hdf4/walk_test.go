package hdf4

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-hdf4/backend"
)

func walkFixture(t *testing.T) *File {
	t.Helper()
	f := createFile(t, "walk.h4")
	g, err := f.CreateGroup("g", nil)
	require.NoError(t, err)
	units, err := NewAttribute("units", backend.TypeChar8, "m")
	require.NoError(t, err)
	_, err = f.CreateArray("a", g, backend.TypeInt32, []int64{1}, WithAttribute(units))
	require.NoError(t, err)
	skip, err := f.CreateGroup("skip", nil)
	require.NoError(t, err)
	_, err = f.CreateArray("hidden", skip, backend.TypeInt32, []int64{1})
	require.NoError(t, err)
	_, err = f.CreateImage("img", nil, backend.TypeUInt8, 2, 2)
	require.NoError(t, err)
	return f
}

func TestWalk(t *testing.T) {
	f := walkFixture(t)

	var paths []string
	err := Walk(f.Root(), func(path string, n Node, err error) error {
		paths = append(paths, path)
		if g, ok := n.(*Group); ok && g.Name() == "skip" {
			return SkipGroup
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/g", "/g/a", "/skip", "/img"}, paths)
}

func TestWalkStops(t *testing.T) {
	f := walkFixture(t)
	stop := errors.New("stop")

	visited := 0
	err := Walk(f.Root(), func(string, Node, error) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestWalkAttrs(t *testing.T) {
	f := walkFixture(t)

	var got []string
	require.NoError(t, f.WalkAttrs(func(info AttrInfo) error {
		got = append(got, info.Path+"="+info.Attr.String())
		return nil
	}))
	assert.Equal(t, []string{"/g/a@units=m"}, got)
}

func TestFind(t *testing.T) {
	f := walkFixture(t)
	n, ok := f.Get("/g/a")
	require.True(t, ok)

	found, ok := f.Find(n.ID())
	require.True(t, ok)
	assert.Same(t, n, found)

	_, ok = f.Find(backend.ObjectID{Tag: 1, Ref: 1})
	assert.False(t, ok)
}
