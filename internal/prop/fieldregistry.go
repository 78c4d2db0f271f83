package prop

import (
	"fmt"
	"sort"
	"sync"
)

// FieldRegistry maps photon field names to lazily constructed, shared
// instances. A field is built exactly once (tabulated fields read their data
// files at that point) and then handed out read-only to every consumer.
type FieldRegistry struct {
	mu       sync.Mutex
	builders map[string]func() (PhotonField, error)
	fields   map[string]PhotonField
}

func NewFieldRegistry() *FieldRegistry {
	return &FieldRegistry{
		builders: make(map[string]func() (PhotonField, error)),
		fields:   make(map[string]PhotonField),
	}
}

// Register adds a named field constructor. Registering a name twice is an
// error.
func (r *FieldRegistry) Register(name string, builder func() (PhotonField, error)) error {
	if name == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if builder == nil {
		return fmt.Errorf("field builder cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("photon field %s already registered", name)
	}
	r.builders[name] = builder
	return nil
}

// Field returns the shared instance for name, constructing it on first use.
// A failed construction is not cached, so a missing data file can be fixed
// and retried.
func (r *FieldRegistry) Field(name string) (PhotonField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fields[name]; ok {
		return f, nil
	}
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown photon field %s", name)
	}
	f, err := builder()
	if err != nil {
		return nil, err
	}
	r.fields[name] = f
	return f, nil
}

// Has reports whether name is registered.
func (r *FieldRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered field names, sorted.
func (r *FieldRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = func() *FieldRegistry {
	r := NewFieldRegistry()
	_ = r.Register("CMB", func() (PhotonField, error) {
		return NewCMB(), nil
	})
	// Extragalactic background light catalogue; tabulated, redshift evolving.
	for _, name := range []string{"IRB_Kneiske04", "IRB_Stecker05"} {
		name := name
		_ = r.Register(name, func() (PhotonField, error) {
			return NewTabularPhotonField(name, true)
		})
	}
	return r
}()

// DefaultFieldRegistry returns the process-wide registry holding the
// built-in photon field catalogue.
func DefaultFieldRegistry() *FieldRegistry {
	return defaultRegistry
}
