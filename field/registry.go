package field

import (
	"sync"

	"github.com/unicfd/uniflow/tensor"
)

// namedRegistry is the process-wide named-field registry: populated as
// named fields are constructed, read during step-boundary I/O,
// otherwise read-only.
type namedRegistry struct {
	mu     sync.Mutex
	byName map[string]any
}

var defaultRegistry = &namedRegistry{byName: make(map[string]any)}

// Lookup returns a previously constructed named field of type T, used by
// drivers that need to find a field another component declared (e.g. the
// wall-distance pass looking up "yWall"). ok is false if no field with
// that name and type was registered.
func Lookup[T tensor.Algebra[T]](name string) (*Field[T], bool) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	v, ok := defaultRegistry.byName[name]
	if !ok {
		return nil, false
	}
	f, ok := v.(*Field[T])
	return f, ok
}
