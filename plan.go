package archive

import (
	"cmp"
	"context"
	"encoding"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"
)

// countSize is the encoded size of every length prefix.
const countSize = 8

type (
	encodeFunc func(a *Archive, v reflect.Value) uint64
	decodeFunc func(a *Archive, v reflect.Value)
)

// plan is the compiled encoder/decoder pair for one type.
// Plans are immutable once published to the cache.
type plan struct {
	typ      reflect.Type
	category Category
	size     int // fixed encoded size, -1 when variable
	encode   encodeFunc
	decode   decodeFunc
}

var (
	plans   = make(map[reflect.Type]*plan)
	plansMu sync.RWMutex
)

// planFor returns the cached plan for t or compiles one.
func planFor(t reflect.Type) (*plan, error) {
	// Fast path: read-lock cache check
	plansMu.RLock()
	if p, ok := plans[t]; ok {
		plansMu.RUnlock()
		return p, nil
	}
	plansMu.RUnlock()

	// Slow path: compile and cache with write-lock
	p, compiled, err := compilePlans(t)
	if err != nil {
		return nil, err
	}
	if compiled > 0 {
		emitPlanCompiled(context.Background(), t.String(), p.category.String(), compiled)
	}
	return p, nil
}

// compilePlans builds the plan tree rooted at t and publishes it, returning
// how many plans were newly compiled.
func compilePlans(t reflect.Type) (*plan, int, error) {
	plansMu.Lock()
	defer plansMu.Unlock()

	// Double-check pattern
	if p, ok := plans[t]; ok {
		return p, 0, nil
	}

	b := &builder{pending: make(map[reflect.Type]*plan)}
	p, err := b.build(t)
	if err != nil {
		return nil, 0, err
	}

	// Publish the whole type tree only once every nested type compiled.
	for typ, compiled := range b.pending {
		plans[typ] = compiled
	}
	return p, len(b.pending), nil
}

// resetPlans clears the plan cache.
func resetPlans() {
	plansMu.Lock()
	defer plansMu.Unlock()
	plans = make(map[reflect.Type]*plan)
}

// builder compiles a type tree. Callers hold plansMu.
type builder struct {
	pending map[reflect.Type]*plan
}

func (b *builder) build(t reflect.Type) (*plan, error) {
	if p, ok := plans[t]; ok {
		return p, nil
	}
	// Recursive types resolve to the placeholder; its funcs are read at call time.
	if p, ok := b.pending[t]; ok {
		return p, nil
	}

	s, err := classify(t)
	if err != nil {
		return nil, err
	}

	p := &plan{typ: t, category: s.category, size: -1}
	b.pending[t] = p

	switch s.category {
	case CategoryExternal:
		b.external(p, s)
	case CategoryOptional:
		err = b.optional(p, s)
	case CategoryKeyValue:
		err = b.keyValue(p, s)
	case CategorySequence:
		err = b.sequence(p, s)
	case CategoryFixedArray:
		err = b.fixedArray(p, s)
	case CategoryTuple:
		err = b.tuple(p, s)
	case CategoryEmpty:
		p.size = 0
		p.encode = func(*Archive, reflect.Value) uint64 { return 0 }
		p.decode = func(*Archive, reflect.Value) {}
	case CategoryPrimitive:
		p.size = int(t.Size())
		p.encode = encodePrimitive
		p.decode = decodePrimitive
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ===== Primitive =====

var ne = binary.NativeEndian

func encodePrimitive(a *Archive, v reflect.Value) uint64 {
	var scratch [16]byte
	b := scratch[:0]

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b = appendUint(b, uint64(v.Int()), v.Type().Size())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b = appendUint(b, v.Uint(), v.Type().Size())
	case reflect.Float32:
		b = ne.AppendUint32(b, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		b = ne.AppendUint64(b, math.Float64bits(v.Float()))
	case reflect.Complex64:
		c := v.Complex()
		b = ne.AppendUint32(b, math.Float32bits(float32(real(c))))
		b = ne.AppendUint32(b, math.Float32bits(float32(imag(c))))
	case reflect.Complex128:
		c := v.Complex()
		b = ne.AppendUint64(b, math.Float64bits(real(c)))
		b = ne.AppendUint64(b, math.Float64bits(imag(c)))
	}
	return a.write(b)
}

func appendUint(b []byte, u uint64, size uintptr) []byte {
	switch size {
	case 1:
		return append(b, byte(u))
	case 2:
		return ne.AppendUint16(b, uint16(u))
	case 4:
		return ne.AppendUint32(b, uint32(u))
	default:
		return ne.AppendUint64(b, u)
	}
}

func decodePrimitive(a *Archive, v reflect.Value) {
	var scratch [16]byte
	b := scratch[:v.Type().Size()]
	a.read(b)
	if a.failed() {
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(b[0] != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(signExtend(readUint(b), len(b)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(readUint(b))
	case reflect.Float32:
		v.SetFloat(float64(math.Float32frombits(ne.Uint32(b))))
	case reflect.Float64:
		v.SetFloat(math.Float64frombits(ne.Uint64(b)))
	case reflect.Complex64:
		re := math.Float32frombits(ne.Uint32(b[:4]))
		im := math.Float32frombits(ne.Uint32(b[4:]))
		v.SetComplex(complex(float64(re), float64(im)))
	case reflect.Complex128:
		re := math.Float64frombits(ne.Uint64(b[:8]))
		im := math.Float64frombits(ne.Uint64(b[8:]))
		v.SetComplex(complex(re, im))
	}
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(ne.Uint16(b))
	case 4:
		return uint64(ne.Uint32(b))
	default:
		return ne.Uint64(b)
	}
}

func signExtend(u uint64, size int) int64 {
	switch size {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}

// ===== Optional =====

func (b *builder) optional(p *plan, s shape) error {
	elem, err := b.build(s.elem)
	if err != nil {
		return err
	}

	if !s.methods.user {
		// Pointer: nil is absent.
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			if v.IsNil() {
				return a.writeBool(false)
			}
			return a.writeBool(true) + elem.encode(a, v.Elem())
		}
		p.decode = func(a *Archive, v reflect.Value) {
			present := a.readBool()
			if a.failed() {
				return
			}
			if !present {
				v.SetZero()
				return
			}
			fresh := reflect.New(s.elem)
			elem.decode(a, fresh.Elem())
			if !a.failed() {
				v.Set(fresh)
			}
		}
		return nil
	}

	m := s.methods
	p.encode = func(a *Archive, v reflect.Value) uint64 {
		ptr := addressable(v).Addr()
		if !ptr.Method(m.hasValue).Call(nil)[0].Bool() {
			return a.writeBool(false)
		}
		value := ptr.Method(m.value).Call(nil)[0]
		return a.writeBool(true) + elem.encode(a, value)
	}
	p.decode = func(a *Archive, v reflect.Value) {
		ptr := v.Addr()
		present := a.readBool()
		if a.failed() {
			return
		}
		if !present {
			ptr.Method(m.reset).Call(nil)
			return
		}
		fresh := reflect.New(s.elem).Elem()
		elem.decode(a, fresh)
		if !a.failed() {
			ptr.Method(m.set).Call([]reflect.Value{fresh})
		}
	}
	return nil
}

// ===== Sequence =====

func (b *builder) sequence(p *plan, s shape) error {
	elem, err := b.build(s.elem)
	if err != nil {
		return err
	}

	switch {
	case s.methods.user:
		b.userSequence(p, s, elem)
	case p.typ.Kind() == reflect.String:
		p.encode = encodeString
		p.decode = decodeString
	case s.elem == byteType:
		p.encode = encodeBytes
		p.decode = decodeBytes
	default:
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			n := v.Len()
			if elem.size >= 0 {
				a.reserve(countSize + n*elem.size)
			}
			total := a.writeCount(n)
			for i := 0; i < n; i++ {
				total += elem.encode(a, v.Index(i))
			}
			return total
		}
		p.decode = func(a *Archive, v reflect.Value) {
			n := a.readLen()
			if n == 0 {
				return
			}
			// Append at end; Grow applies the capacity hint.
			start := v.Len()
			v.Grow(n)
			v.SetLen(start + n)
			for i := start; i < start+n; i++ {
				slot := v.Index(i)
				slot.SetZero()
				elem.decode(a, slot)
			}
			if a.failed() {
				v.SetLen(start)
			}
		}
	}
	return nil
}

func (b *builder) userSequence(p *plan, s shape, elem *plan) {
	m := s.methods
	p.encode = func(a *Archive, v reflect.Value) uint64 {
		ptr := addressable(v).Addr()
		n := int(ptr.Method(m.len).Call(nil)[0].Int())
		if elem.size >= 0 {
			a.reserve(countSize + n*elem.size)
		}
		total := a.writeCount(n)
		for e := range ptr.Method(m.all).Call(nil)[0].Seq() {
			total += elem.encode(a, e)
		}
		return total
	}
	p.decode = func(a *Archive, v reflect.Value) {
		ptr := v.Addr()
		n := a.readLen()
		if n == 0 {
			return
		}
		if m.reserve >= 0 {
			ptr.Method(m.reserve).Call([]reflect.Value{reflect.ValueOf(n)})
		}
		insert := ptr.Method(m.insert)

		if !m.front {
			for i := 0; i < n; i++ {
				fresh := reflect.New(s.elem).Elem()
				elem.decode(a, fresh)
				if a.failed() {
					return
				}
				insert.Call([]reflect.Value{fresh})
			}
			return
		}

		// Insert-after-head reverses order, so push the decoded run backwards.
		decoded := make([]reflect.Value, n)
		for i := range decoded {
			decoded[i] = reflect.New(s.elem).Elem()
			elem.decode(a, decoded[i])
		}
		if a.failed() {
			return
		}
		for i := n - 1; i >= 0; i-- {
			insert.Call([]reflect.Value{decoded[i]})
		}
	}
}

func encodeString(a *Archive, v reflect.Value) uint64 {
	str := v.String()
	a.reserve(countSize + len(str))
	return a.writeCount(len(str)) + a.write([]byte(str))
}

func decodeString(a *Archive, v reflect.Value) {
	n := a.readLen()
	if a.failed() {
		return
	}
	if n == 0 {
		v.SetString("")
		return
	}
	buf := make([]byte, n)
	a.read(buf)
	if a.failed() {
		return
	}
	v.SetString(string(buf))
}

func encodeBytes(a *Archive, v reflect.Value) uint64 {
	data := v.Bytes()
	return a.writeCount(len(data)) + a.write(data)
}

func decodeBytes(a *Archive, v reflect.Value) {
	n := a.readLen()
	if n == 0 {
		return
	}
	buf := make([]byte, n)
	a.read(buf)
	if a.failed() {
		return
	}
	if v.Len() == 0 {
		v.SetBytes(buf)
		return
	}
	v.SetBytes(append(v.Bytes(), buf...))
}

// ===== Key-value =====

func (b *builder) keyValue(p *plan, s shape) error {
	key, err := b.build(s.key)
	if err != nil {
		return err
	}
	mapped, err := b.build(s.elem)
	if err != nil {
		return err
	}

	if s.methods.user {
		m := s.methods
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			ptr := addressable(v).Addr()
			n := int(ptr.Method(m.len).Call(nil)[0].Int())
			total := a.writeCount(n)
			for k, e := range ptr.Method(m.all).Call(nil)[0].Seq2() {
				total += key.encode(a, k)
				total += mapped.encode(a, e)
			}
			return total
		}
		p.decode = func(a *Archive, v reflect.Value) {
			ptr := v.Addr()
			n := a.readLen()
			if n == 0 {
				return
			}
			if m.reserve >= 0 {
				ptr.Method(m.reserve).Call([]reflect.Value{reflect.ValueOf(n)})
			}
			put := ptr.Method(m.put)
			for i := 0; i < n; i++ {
				k := reflect.New(s.key).Elem()
				key.decode(a, k)
				e := reflect.New(s.elem).Elem()
				mapped.decode(a, e)
				if a.failed() {
					return
				}
				put.Call([]reflect.Value{k, e})
			}
		}
		return nil
	}

	p.encode = func(a *Archive, v reflect.Value) uint64 {
		n := v.Len()
		total := a.writeCount(n)
		keys := v.MapKeys()
		sortKeys(keys)
		for _, k := range keys {
			total += key.encode(a, k)
			total += mapped.encode(a, v.MapIndex(k))
		}
		return total
	}
	p.decode = func(a *Archive, v reflect.Value) {
		n := a.readLen()
		if n == 0 {
			return
		}
		for i := 0; i < n; i++ {
			// The stored key is immutable, so decode into a fresh local first.
			k := reflect.New(s.key).Elem()
			key.decode(a, k)
			e := reflect.New(s.elem).Elem()
			mapped.decode(a, e)
			if a.failed() {
				return
			}
			if v.IsNil() {
				v.Set(reflect.MakeMapWithSize(p.typ, n))
			}
			v.SetMapIndex(k, e)
		}
	}
	return nil
}

// sortKeys orders map keys of orderable kinds so encoding is deterministic.
// Other key kinds keep map iteration order.
func sortKeys(keys []reflect.Value) {
	if len(keys) < 2 {
		return
	}
	switch keys[0].Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(x, y reflect.Value) int { return cmp.Compare(x.Int(), y.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		slices.SortFunc(keys, func(x, y reflect.Value) int { return cmp.Compare(x.Uint(), y.Uint()) })
	case reflect.Float32, reflect.Float64:
		slices.SortFunc(keys, func(x, y reflect.Value) int { return cmp.Compare(x.Float(), y.Float()) })
	case reflect.String:
		slices.SortFunc(keys, func(x, y reflect.Value) int { return cmp.Compare(x.String(), y.String()) })
	case reflect.Bool:
		slices.SortFunc(keys, func(x, y reflect.Value) int {
			if x.Bool() == y.Bool() {
				return 0
			}
			if !x.Bool() {
				return -1
			}
			return 1
		})
	}
}

// ===== Fixed array =====

func (b *builder) fixedArray(p *plan, s shape) error {
	elem, err := b.build(s.elem)
	if err != nil {
		return err
	}

	extent := p.typ.Len()
	if elem.size >= 0 {
		p.size = countSize + extent*elem.size
	}
	p.encode = func(a *Archive, v reflect.Value) uint64 {
		total := a.writeCount(extent)
		for i := 0; i < extent; i++ {
			total += elem.encode(a, v.Index(i))
		}
		return total
	}
	p.decode = func(a *Archive, v reflect.Value) {
		stored := a.readCount()
		if a.failed() {
			return
		}
		if stored != uint64(extent) {
			panic(&LengthMismatchError{Type: p.typ, Want: extent, Got: stored})
		}
		for i := 0; i < extent; i++ {
			elem.decode(a, v.Index(i))
		}
	}
	return nil
}

// ===== Tuple =====

type fieldPlan struct {
	index int
	plan  *plan
}

func (b *builder) tuple(p *plan, s shape) error {
	fields := make([]fieldPlan, len(s.fields))
	size := 0
	for i, f := range s.fields {
		fp, err := b.build(f.typ)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
		fields[i] = fieldPlan{index: f.index, plan: fp}
		if size >= 0 && fp.size >= 0 {
			size += fp.size
		} else {
			size = -1
		}
	}

	p.size = size
	p.encode = func(a *Archive, v reflect.Value) uint64 {
		var total uint64
		for _, f := range fields {
			total += f.plan.encode(a, v.Field(f.index))
		}
		return total
	}
	p.decode = func(a *Archive, v reflect.Value) {
		for _, f := range fields {
			f.plan.decode(a, v.Field(f.index))
		}
	}
	return nil
}

// ===== External =====

func (b *builder) external(p *plan, s shape) {
	t := p.typ

	switch s.external {
	case externalRegistered:
		h := s.handler
		if h.stream != nil {
			p.encode = func(a *Archive, v reflect.Value) uint64 {
				st := &Stream{archive: a, dir: Encode}
				h.stream(st, copyOf(v))
				return st.size
			}
			p.decode = func(a *Archive, v reflect.Value) {
				h.stream(&Stream{archive: a, dir: Decode}, v)
			}
			return
		}
		p.encode = h.marshal
		p.decode = h.unmarshal

	case externalPair:
		valueReceiver := t.Implements(marshalerType)
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			if valueReceiver {
				return v.Interface().(Marshaler).MarshalArchive(a)
			}
			return addressable(v).Addr().Interface().(Marshaler).MarshalArchive(a)
		}
		p.decode = func(a *Archive, v reflect.Value) {
			v.Addr().Interface().(Unmarshaler).UnmarshalArchive(a)
		}

	case externalStream:
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			st := &Stream{archive: a, dir: Encode}
			copyOf(v).Addr().Interface().(Streamer).StreamArchive(st)
			return st.size
		}
		p.decode = func(a *Archive, v reflect.Value) {
			v.Addr().Interface().(Streamer).StreamArchive(&Stream{archive: a, dir: Decode})
		}

	case externalBinary:
		valueReceiver := t.Implements(binaryMarshalerType)
		p.encode = func(a *Archive, v reflect.Value) uint64 {
			var m encoding.BinaryMarshaler
			if valueReceiver {
				m = v.Interface().(encoding.BinaryMarshaler)
			} else {
				m = addressable(v).Addr().Interface().(encoding.BinaryMarshaler)
			}
			data, err := m.MarshalBinary()
			if err != nil {
				a.SetError(fmt.Errorf("marshal binary %s: %w", t, err))
				return 0
			}
			return a.writeCount(len(data)) + a.write(data)
		}
		p.decode = func(a *Archive, v reflect.Value) {
			n := a.readLen()
			data := make([]byte, n)
			a.read(data)
			if a.failed() {
				return
			}
			if err := v.Addr().Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(data); err != nil {
				a.SetError(fmt.Errorf("unmarshal binary %s: %w", t, err))
			}
		}
	}
}

// addressable returns v itself when addressable, otherwise an addressable copy.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	return copyOf(v)
}

// copyOf returns an addressable shallow copy of v.
func copyOf(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}
