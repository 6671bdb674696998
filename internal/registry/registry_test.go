package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-hdf4/backend"
)

func TestRegister(t *testing.T) {
	r := New()
	a := backend.ObjectID{Tag: backend.TagVG, Ref: 2}
	b := backend.ObjectID{Tag: backend.TagNDG, Ref: 2}

	assert.False(t, r.Register(a))
	assert.True(t, r.Register(a))
	assert.False(t, r.Register(b))

	assert.True(t, r.Seen(a))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []backend.ObjectID{a, b}, r.IDs())

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Seen(a))
	assert.Empty(t, r.IDs())
}

func TestRegisterConcurrent(t *testing.T) {
	r := New()
	id := backend.ObjectID{Tag: backend.TagSD, Ref: 9}

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !r.Register(id) {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, fresh)
	require.Equal(t, 1, r.Len())
}
