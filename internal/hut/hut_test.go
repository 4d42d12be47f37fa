package hut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOrderIsDeterministic(t *testing.T) {
	reg := NewRegistry([]Descriptor{
		{Name: "B", UpstreamID: 2},
		{Name: "A", UpstreamID: 1},
		{Name: "C", UpstreamID: 3},
	})

	var names []string
	for _, h := range reg.All() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names, "registry must preserve construction order")
}

func TestRegistryIsolatedFromCallerSlice(t *testing.T) {
	src := []Descriptor{{Name: "A", UpstreamID: 1}}
	reg := NewRegistry(src)

	src[0].Name = "mutated"

	got, ok := reg.ByID(1)
	assert.True(t, ok)
	assert.Equal(t, "A", got.Name)
}

func TestRegistryByID(t *testing.T) {
	reg := Default()

	h, ok := reg.ByID(675)
	assert.True(t, ok)
	assert.Equal(t, "Franz Senn Hütte", h.Name)

	_, ok = reg.ByID(9999)
	assert.False(t, ok)
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, 3, reg.Len())

	var names []string
	for _, h := range reg.All() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"Franz Senn Hütte", "Regensburger Hütte", "Starkenburger Hütte"}, names)
}
