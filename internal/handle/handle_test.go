package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	name string
}

func TestArenaLifecycle(t *testing.T) {
	a := NewArena[record]()

	h1 := a.Insert(&record{name: "a"})
	h2 := a.Insert(&record{name: "b"})
	assert.False(t, h1.IsNil())
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "b", a.Get(h2).name)

	require.True(t, a.Update(h1, func(r *record) { r.name = "c" }))
	assert.Equal(t, uint64(2), a.Version(h1))
	assert.Equal(t, uint64(1), a.Version(h2))

	r, ok := a.Remove(h1)
	require.True(t, ok)
	assert.Equal(t, "c", r.name)
	assert.Nil(t, a.Get(h1))
	assert.False(t, a.Touch(h1))
	assert.Equal(t, uint64(0), a.Version(h1))

	h3 := a.Insert(&record{})
	assert.NotEqual(t, h1, h3, "handles are not reused")
}

func TestArenaOrder(t *testing.T) {
	a := NewArena[record]()
	var want []Handle
	for range 5 {
		want = append(want, a.Insert(&record{}))
	}
	assert.Equal(t, want, a.Handles())

	var seen []Handle
	a.Each(func(h Handle, _ *record) { seen = append(seen, h) })
	assert.Equal(t, want, seen)
}

func TestTracker(t *testing.T) {
	a := NewArena[record]()
	h := a.Insert(&record{})
	tr := Tracker{}

	assert.True(t, tr.Changed(h, a.Version(h)))
	tr.Mark(h, a.Version(h))
	assert.False(t, tr.Changed(h, a.Version(h)))

	a.Touch(h)
	assert.True(t, tr.Changed(h, a.Version(h)))

	tr.Forget(h)
	assert.True(t, tr.Changed(h, 1))
}
