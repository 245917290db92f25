package scan

import (
	"testing"

	"github.com/buemura/rock/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, n := range names {
		require.NoError(t, r.Register(CategoryGeneral, stubDescriptor(n, stubModule{})))
	}
	return r
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := newTestRegistry(t, "headers")

	got, err := r.Get(CategoryGeneral, "Headers")
	require.NoError(t, err)
	assert.Equal(t, "headers", got.Name)
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(CategoryGeneral, "nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_RegisterRejectsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		desc     Descriptor
	}{
		{name: "empty category", category: "", desc: stubDescriptor("a", stubModule{})},
		{name: "empty name", category: CategoryGeneral, desc: stubDescriptor("  ", stubModule{})},
		{name: "nil factory", category: CategoryGeneral, desc: Descriptor{Name: "nofactory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.category, tt.desc)
			assert.ErrorIs(t, err, ErrDiscovery)
		})
	}
}

func TestRegistry_RegisterRejectsDuplicate(t *testing.T) {
	r := newTestRegistry(t, "xss")
	err := r.Register(CategoryGeneral, stubDescriptor("XSS", stubModule{}))
	assert.ErrorIs(t, err, ErrDiscovery)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestRegistry_DiscoverAppliesExclusion(t *testing.T) {
	r := newTestRegistry(t, "headers", "sqli", "xss")

	got, err := r.Discover(CategoryGeneral, config.NewExcludedModules("sqli.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"headers", "xss"}, Names(got))

	for _, d := range got {
		assert.NotEqual(t, "sqli", d.Name)
	}
}

func TestRegistry_DiscoverIsDeterministic(t *testing.T) {
	r := newTestRegistry(t, "e", "d", "c", "b", "a")

	first, err := r.Discover(CategoryGeneral, nil)
	require.NoError(t, err)
	second, err := r.Discover(CategoryGeneral, nil)
	require.NoError(t, err)

	assert.Equal(t, Names(first), Names(second))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, Names(first))
}

func TestRegistry_DiscoverUnknownCategory(t *testing.T) {
	r := newTestRegistry(t, "headers")

	_, err := r.Discover(Category("api"), nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestRegistry_CategoriesAndDescriptors(t *testing.T) {
	r := newTestRegistry(t, "b", "a")
	require.NoError(t, r.Register(Category("api"), stubDescriptor("cors", stubModule{})))

	assert.Equal(t, []Category{"api", CategoryGeneral}, r.Categories())
	assert.Equal(t, []string{"a", "b"}, Names(r.Descriptors(CategoryGeneral)))
	assert.Empty(t, r.Descriptors(Category("missing")))
}
