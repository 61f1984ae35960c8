package archive

import (
	"cmp"
	"encoding"
	"reflect"
	"slices"
	"strings"

	"github.com/zoobzio/sentinel"
)

// Category is the serialization rule selected for a type.
type Category uint8

// Categories, in classification priority order.
const (
	CategoryInvalid Category = iota
	CategoryExternal
	CategoryOptional
	CategoryKeyValue
	CategorySequence
	CategoryFixedArray
	CategoryTuple
	CategoryEmpty
	CategoryPrimitive
)

var categoryNames = [...]string{
	CategoryInvalid:    "invalid",
	CategoryExternal:   "external",
	CategoryOptional:   "optional",
	CategoryKeyValue:   "key-value",
	CategorySequence:   "sequence",
	CategoryFixedArray: "fixed-array",
	CategoryTuple:      "tuple",
	CategoryEmpty:      "empty",
	CategoryPrimitive:  "primitive",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "invalid"
}

// tagName is the struct tag consulted for field options.
const tagName = "archive"

func init() {
	sentinel.Tag(tagName)
}

var (
	marshalerType       = reflect.TypeFor[Marshaler]()
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	streamerType        = reflect.TypeFor[Streamer]()
	binaryMarshalerType = reflect.TypeFor[encoding.BinaryMarshaler]()
	binaryUnmarshalType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
	byteType            = reflect.TypeFor[byte]()
	intType             = reflect.TypeFor[int]()
)

// externalKind distinguishes the ways a type can be externally handled.
type externalKind uint8

const (
	externalRegistered externalKind = iota + 1
	externalPair
	externalStream
	externalBinary
)

// shape is the shallow classification of a type: its category plus whatever
// the plan builder needs to recurse into it.
type shape struct {
	category Category

	external externalKind
	handler  *handler

	elem reflect.Type // optional/sequence/fixed-array element, key-value mapped type
	key  reflect.Type // key-value key type

	methods containerMethods // set when a user type drives the container protocol
	fields  []field          // tuple fields
}

// containerMethods holds method indexes on the pointer type of a
// user-defined optional or container. An index of -1 means absent.
type containerMethods struct {
	user    bool
	len     int
	all     int
	insert  int
	front   bool // insert is PushFront: elements are pushed in reverse
	put     int
	reserve int

	hasValue int
	value    int
	set      int
	reset    int
}

// field is one encodable struct field of a tuple.
type field struct {
	name  string
	index int
	typ   reflect.Type
}

// Classify returns the category of t, validating t and every type nested in it.
// The result depends only on t and the handlers registered at the time of the call.
func Classify(t reflect.Type) (Category, error) {
	if t == nil {
		return CategoryInvalid, newTypeError(ErrNilValue, nil, "nil type")
	}
	p, err := planFor(t)
	if err != nil {
		return CategoryInvalid, err
	}
	return p.category, nil
}

// CategoryOf returns the category of T.
func CategoryOf[T any]() (Category, error) {
	return Classify(reflect.TypeFor[T]())
}

// Check validates that T and every type nested in it can be serialized.
// Call it at startup to surface classification failures early.
func Check[T any]() error {
	_, err := CategoryOf[T]()
	return err
}

// classify assigns t exactly one category without recursing into element types.
func classify(t reflect.Type) (shape, error) {
	// 1. Externally handled
	if h, ok := lookupHandler(t); ok {
		return shape{category: CategoryExternal, external: externalRegistered, handler: h}, nil
	}

	switch t.Kind() {
	case reflect.Interface:
		return shape{}, newTypeError(ErrUnsupportedType, t, "interface types need a registered handler")
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return shape{}, newTypeError(ErrUnsupportedType, t, "")
	case reflect.Pointer:
		// 2. Pointers are optional wrappers around their element.
		return shape{category: CategoryOptional, elem: t.Elem()}, nil
	}

	if kind, err := externalMethods(t); err != nil {
		return shape{}, err
	} else if kind != 0 {
		return shape{category: CategoryExternal, external: kind}, nil
	}

	// 2. Optional-like
	if m, elem, ok := optionalMethods(t); ok {
		return shape{category: CategoryOptional, elem: elem, methods: m}, nil
	}

	// 3. Container-like
	if m, key, elem, ok := containerMethodSet(t); ok {
		if key != nil {
			return shape{category: CategoryKeyValue, key: key, elem: elem, methods: m}, nil
		}
		return shape{category: CategorySequence, elem: elem, methods: m}, nil
	}

	switch t.Kind() {
	case reflect.Map:
		return shape{category: CategoryKeyValue, key: t.Key(), elem: t.Elem()}, nil
	case reflect.Slice:
		return shape{category: CategorySequence, elem: t.Elem()}, nil
	case reflect.String:
		return shape{category: CategorySequence, elem: byteType}, nil
	case reflect.Array:
		return shape{category: CategoryFixedArray, elem: t.Elem()}, nil

	// 4. Tuple-like
	case reflect.Struct:
		fields, err := structFields(t)
		if err != nil {
			return shape{}, err
		}
		if len(fields) == 0 {
			return shape{category: CategoryEmpty}, nil
		}
		return shape{category: CategoryTuple, fields: fields}, nil

	// 5. Primitive
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return shape{category: CategoryPrimitive}, nil
	}

	return shape{}, newTypeError(ErrUnsupportedType, t, "")
}

// externalMethods reports which override interface t implements, if any.
func externalMethods(t reflect.Type) (externalKind, error) {
	pt := reflect.PointerTo(t)
	marshal := pt.Implements(marshalerType)
	unmarshal := pt.Implements(unmarshalerType)
	stream := pt.Implements(streamerType)

	switch {
	case (marshal || unmarshal) && stream:
		return 0, newTypeError(ErrAmbiguousType, t, "implements both Marshaler/Unmarshaler and Streamer")
	case marshal != unmarshal:
		return 0, newTypeError(ErrIncompleteHandler, t, "Marshaler and Unmarshaler must both be implemented")
	case marshal:
		return externalPair, nil
	case stream:
		return externalStream, nil
	case pt.Implements(binaryMarshalerType) && pt.Implements(binaryUnmarshalType):
		return externalBinary, nil
	}
	return 0, nil
}

// optionalMethods detects HasValue() bool, Value() E, Set(E) and Reset().
func optionalMethods(t reflect.Type) (containerMethods, reflect.Type, bool) {
	m := emptyMethods()
	pt := reflect.PointerTo(t)

	has, ok := pt.MethodByName("HasValue")
	if !ok || has.Type.NumIn() != 1 || has.Type.NumOut() != 1 || has.Type.Out(0).Kind() != reflect.Bool {
		return m, nil, false
	}
	val, ok := pt.MethodByName("Value")
	if !ok || val.Type.NumIn() != 1 || val.Type.NumOut() != 1 {
		return m, nil, false
	}
	elem := val.Type.Out(0)
	set, ok := pt.MethodByName("Set")
	if !ok || set.Type.NumIn() != 2 || set.Type.In(1) != elem {
		return m, nil, false
	}
	reset, ok := pt.MethodByName("Reset")
	if !ok || reset.Type.NumIn() != 1 {
		return m, nil, false
	}

	m.user = true
	m.hasValue = has.Index
	m.value = val.Index
	m.set = set.Index
	m.reset = reset.Index
	return m, elem, true
}

// containerMethodSet detects the user container protocol:
//
//	Len() int
//	All() iter.Seq[E]       + PushBack(E) | Add(E) | PushFront(E)
//	All() iter.Seq2[K, V]   + Put(K, V)
//	Reserve(int)            (optional)
//
// A non-nil key marks a key-value container.
func containerMethodSet(t reflect.Type) (m containerMethods, key, elem reflect.Type, ok bool) {
	m = emptyMethods()
	pt := reflect.PointerTo(t)

	length, found := pt.MethodByName("Len")
	if !found || length.Type.NumIn() != 1 || length.Type.NumOut() != 1 || length.Type.Out(0).Kind() != reflect.Int {
		return m, nil, nil, false
	}
	all, found := pt.MethodByName("All")
	if !found || all.Type.NumIn() != 1 || all.Type.NumOut() != 1 {
		return m, nil, nil, false
	}
	yieldArgs, found := iteratorArgs(all.Type.Out(0))
	if !found {
		return m, nil, nil, false
	}
	m.len = length.Index
	m.all = all.Index

	if r, found := pt.MethodByName("Reserve"); found && r.Type.NumIn() == 2 && r.Type.In(1) == intType {
		m.reserve = r.Index
	}

	switch len(yieldArgs) {
	case 1:
		elem = yieldArgs[0]
		for _, name := range []string{"PushBack", "Add", "PushFront"} {
			ins, found := pt.MethodByName(name)
			if found && ins.Type.NumIn() == 2 && ins.Type.In(1) == elem {
				m.user = true
				m.insert = ins.Index
				m.front = name == "PushFront"
				return m, nil, elem, true
			}
		}
	case 2:
		key, elem = yieldArgs[0], yieldArgs[1]
		put, found := pt.MethodByName("Put")
		if found && put.Type.NumIn() == 3 && put.Type.In(1) == key && put.Type.In(2) == elem {
			m.user = true
			m.put = put.Index
			return m, key, elem, true
		}
	}
	return emptyMethods(), nil, nil, false
}

// iteratorArgs returns the yield arguments of an iter.Seq or iter.Seq2 shaped func type.
func iteratorArgs(seq reflect.Type) ([]reflect.Type, bool) {
	if seq.Kind() != reflect.Func || seq.NumIn() != 1 || seq.NumOut() != 0 {
		return nil, false
	}
	yield := seq.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	if yield.NumIn() != 1 && yield.NumIn() != 2 {
		return nil, false
	}
	args := make([]reflect.Type, yield.NumIn())
	for i := range args {
		args[i] = yield.In(i)
	}
	return args, true
}

func emptyMethods() containerMethods {
	return containerMethods{
		len: -1, all: -1, insert: -1, put: -1, reserve: -1,
		hasValue: -1, value: -1, set: -1, reset: -1,
	}
}

// structFields lists the encodable fields of t in declaration order, read
// from t's sentinel metadata.
func structFields(t reflect.Type) ([]field, error) {
	spec := structMetadata(t)

	fields := make([]field, 0, len(spec.Fields))
	for _, fm := range spec.Fields {
		if !t.Field(fm.Index[0]).IsExported() || skipField(fm.Tags[tagName]) {
			continue
		}
		fields = append(fields, field{name: fm.Name, index: fm.Index[0], typ: fm.ReflectType})
	}
	slices.SortFunc(fields, func(a, b field) int { return cmp.Compare(a.index, b.index) })

	if len(fields) == 0 {
		for i := 0; i < t.NumField(); i++ {
			if sf := t.Field(i); !sf.IsExported() && sf.Name != "_" {
				return nil, newTypeError(ErrUnsupportedType, t, "no exported fields; register a handler")
			}
		}
	}
	return fields, nil
}

// structMetadata returns the metadata sentinel holds for t. Types sentinel
// has not scanned, or whose registered name resolves to a different type,
// are described from reflection in the same shape.
func structMetadata(t reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(t.String()); ok && describes(spec, t) {
		return spec
	}
	return reflectMetadata(t)
}

// describes reports whether spec lists fields of t. Metadata is keyed by
// type name, so two types printing the same name can collide.
func describes(spec sentinel.Metadata, t reflect.Type) bool {
	for _, fm := range spec.Fields {
		if len(fm.Index) != 1 || fm.Index[0] >= t.NumField() {
			return false
		}
		sf := t.Field(fm.Index[0])
		if sf.Name != fm.Name || sf.Type != fm.ReflectType {
			return false
		}
	}
	return true
}

func reflectMetadata(t reflect.Type) sentinel.Metadata {
	spec := sentinel.Metadata{
		TypeName:    t.Name(),
		PackageName: t.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, t.NumField()),
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if tag, ok := sf.Tag.Lookup(tagName); ok {
			fm.Tags[tagName] = tag
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}
	return spec
}

// skipField reports whether an archive tag excludes its field.
func skipField(tag string) bool {
	name, _, _ := strings.Cut(tag, ",")
	return name == "-"
}
