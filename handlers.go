package archive

import (
	"context"
	"reflect"
	"sync"
)

// Handler styles as reported in signals.
const (
	styleFuncs  = "funcs"
	styleStream = "stream"
)

// handler is a registered adapter for a type the caller does not own.
// Exactly one of (marshal, unmarshal) or stream is set.
type handler struct {
	marshal   func(a *Archive, v reflect.Value) uint64
	unmarshal func(a *Archive, v reflect.Value)
	stream    func(s *Stream, v reflect.Value)
}

func (h *handler) style() string {
	if h.stream != nil {
		return styleStream
	}
	return styleFuncs
}

var (
	handlers   = make(map[reflect.Type]*handler)
	handlersMu sync.RWMutex
)

// RegisterFuncs registers a function pair for T. Registered handlers take
// priority over every structural rule and over T's own methods.
//
// Registering funcs for a type that already has a stream handler returns
// ErrHandlerConflict; registering funcs again replaces the previous pair.
func RegisterFuncs[T any](marshal func(v T, a *Archive) uint64, unmarshal func(v *T, a *Archive)) error {
	typ := reflect.TypeFor[T]()
	if marshal == nil || unmarshal == nil {
		return newTypeError(ErrIncompleteHandler, typ, "both marshal and unmarshal funcs are required")
	}
	return register(typ, &handler{
		marshal: func(a *Archive, v reflect.Value) uint64 {
			var val T
			reflect.ValueOf(&val).Elem().Set(v)
			return marshal(val, a)
		},
		unmarshal: func(a *Archive, v reflect.Value) {
			unmarshal(v.Addr().Interface().(*T), a)
		},
	})
}

// RegisterStream registers a single stream handler for T, used for both
// directions. See Streamer for the calling convention.
//
// Registering a stream handler for a type that already has a function pair
// returns ErrHandlerConflict.
func RegisterStream[T any](fn func(s *Stream, v *T)) error {
	typ := reflect.TypeFor[T]()
	if fn == nil {
		return newTypeError(ErrIncompleteHandler, typ, "stream func is required")
	}
	return register(typ, &handler{
		stream: func(s *Stream, v reflect.Value) {
			fn(s, v.Addr().Interface().(*T))
		},
	})
}

// Unregister removes any handler registered for T.
func Unregister[T any]() {
	typ := reflect.TypeFor[T]()

	handlersMu.Lock()
	delete(handlers, typ)
	handlersMu.Unlock()

	resetPlans()
}

func register(typ reflect.Type, h *handler) error {
	handlersMu.Lock()
	if existing, ok := handlers[typ]; ok && existing.style() != h.style() {
		handlersMu.Unlock()
		return newTypeError(ErrHandlerConflict, typ, "already registered with "+existing.style()+" style")
	}
	handlers[typ] = h
	handlersMu.Unlock()

	// Plans compiled before registration may have classified typ structurally.
	resetPlans()

	emitHandlerRegistered(context.Background(), typ.String(), h.style())
	return nil
}

func lookupHandler(typ reflect.Type) (*handler, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[typ]
	return h, ok
}
