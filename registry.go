package archive

import (
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]any)
	registryMu sync.RWMutex
)

// Use returns a cached processor or builds a new one.
// The processor is cached by type; options only apply when it is built.
func Use[T any](opts ...Option) (*Processor[T], error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return cached.(*Processor[T]), nil
	}

	processor, err := NewProcessor[T](opts...)
	if err != nil {
		return nil, err
	}

	registry[typ] = processor
	return processor, nil
}

// Reset clears the processor registry and the compiled plan cache.
// Registered handlers are kept. This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	registry = make(map[reflect.Type]any)
	registryMu.Unlock()

	resetPlans()
}
