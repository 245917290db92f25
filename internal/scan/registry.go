package scan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/buemura/rock/internal/config"
)

// Category groups related modules, e.g. "general".
type Category string

const (
	// CategoryGeneral holds the per-URL web checks shipped with rock.
	CategoryGeneral Category = "general"
	// CategoryAPI holds checks aimed at JSON API endpoints.
	CategoryAPI Category = "api"
)

var (
	// ErrDiscovery marks a module table that cannot be used. It is fatal at
	// startup; there is no partial registry.
	ErrDiscovery = errors.New("module discovery failed")
	// ErrUnknownCategory is returned for a category with no registered modules.
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrDiscovery)
)

// Registry maps categories to their modules. Modules are added explicitly
// through Register; nothing is discovered by introspection.
type Registry struct {
	mu      sync.RWMutex
	modules map[Category]map[string]Descriptor
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[Category]map[string]Descriptor)}
}

// Register adds a module to a category. Malformed descriptors and duplicate
// names are rejected with an error wrapping ErrDiscovery.
func (r *Registry) Register(category Category, d Descriptor) error {
	if strings.TrimSpace(string(category)) == "" {
		return fmt.Errorf("%w: module %q has no category", ErrDiscovery, d.Name)
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: module in category %q has no name", ErrDiscovery, category)
	}
	if d.New == nil {
		return fmt.Errorf("%w: module %q has no factory", ErrDiscovery, d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mods, ok := r.modules[category]
	if !ok {
		mods = make(map[string]Descriptor)
		r.modules[category] = mods
	}
	key := strings.ToLower(d.Name)
	if _, dup := mods[key]; dup {
		return fmt.Errorf("%w: module %q registered twice in category %q", ErrDiscovery, d.Name, category)
	}
	mods[key] = d
	return nil
}

// Discover returns the modules of category that survive the exclusion
// filter, sorted by name.
func (r *Registry) Discover(category Category, excluded config.ExcludedModules) ([]Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mods, ok := r.modules[category]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}

	result := make([]Descriptor, 0, len(mods))
	for _, d := range mods {
		if !excluded.Included(d.Name) {
			continue
		}
		result = append(result, d)
	}
	sortDescriptors(result)
	return result, nil
}

// Get retrieves a module by category and name.
func (r *Registry) Get(category Category, name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.modules[category][strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Descriptor{}, fmt.Errorf("module %q not found in category %q", name, category)
	}
	return d, nil
}

// Descriptors returns every module in category, sorted by name.
func (r *Registry) Descriptors(category Category) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.modules[category]))
	for _, d := range r.modules[category] {
		result = append(result, d)
	}
	sortDescriptors(result)
	return result
}

// Categories returns all categories with at least one module.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Category, 0, len(r.modules))
	for c := range r.modules {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func sortDescriptors(ds []Descriptor) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
}

// Names returns the names of ds in order.
func Names(ds []Descriptor) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}
