package enumptr

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/errors"
	"github.com/QuarticCat/enum-ptr/internal/codec"
	"github.com/QuarticCat/enum-ptr/plan"
)

// registry maps the reflect.Type of a union interface to its *Layout.
var registry = xsync.NewMapOf[reflect.Type, any]()

// Layout is the registered tag plan of the union interface T together with
// the conversions between T values and compact words.
type Layout[T any] struct {
	plan     *plan.Plan
	variants []*variantInfo[T]
	byType   map[reflect.Type]int
	gates    []gate // nil when validated at registration
}

// gate runs the alignment check of one variant on its first construct.
type gate struct {
	once sync.Once
	err  error
}

// Register validates the variant table of T, including every alignment
// requirement, and installs the layout.
func Register[T any](variants ...Variant[T]) (*Layout[T], error) {
	return register(variants, false)
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](variants ...Variant[T]) *Layout[T] {
	l, err := Register(variants...)
	if err != nil {
		panic(err)
	}
	return l
}

// Declare installs the layout of T after the structural checks only.
// Alignment is checked per variant on the first construct of that variant,
// so an insufficiently aligned variant panics while the others keep working.
func Declare[T any](variants ...Variant[T]) (*Layout[T], error) {
	return register(variants, true)
}

// LayoutOf returns the layout registered for T. It panics if there is none.
func LayoutOf[T any]() *Layout[T] {
	return layoutFor[T](errors.PhaseAccess)
}

// Lookup returns the layout registered for T, if any.
func Lookup[T any]() (*Layout[T], bool) {
	l, ok := registry.Load(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return l.(*Layout[T]), true
}

func layoutFor[T any](phase errors.Phase) *Layout[T] {
	l, ok := Lookup[T]()
	if !ok {
		panic(errors.NotRegistered(phase, typeName(reflect.TypeFor[T]())))
	}
	return l
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func register[T any](variants []Variant[T], lazy bool) (*Layout[T], error) {
	ut := reflect.TypeFor[T]()
	name := typeName(ut)

	var errs error
	if ut.Kind() != reflect.Interface {
		errs = multierr.Append(errs, errors.Structure(name, "",
			fmt.Sprintf("%s is not an interface type", ut.Kind())))
	}

	l := &Layout[T]{
		variants: make([]*variantInfo[T], len(variants)),
		byType:   make(map[reflect.Type]int, len(variants)),
	}
	table := plan.Table{
		Name:      name,
		Variants:  make([]plan.Variant, len(variants)),
		Footprint: ut.Size(),
	}

	for i, v := range variants {
		info := v.info()
		if info.index >= 0 {
			errs = multierr.Append(errs, errors.Structure(name, info.name(),
				"variant already belongs to a registered layout"))
		}
		for _, p := range info.problems {
			errs = multierr.Append(errs, errors.Structure(name, info.name(), p))
		}
		if ut.Kind() == reflect.Interface && !info.typ.Implements(ut) {
			errs = multierr.Append(errs, errors.Structure(name, info.name(),
				fmt.Sprintf("%s does not implement %s", info.typ, ut)))
		}
		if j, dup := l.byType[info.typ]; dup {
			errs = multierr.Append(errs, errors.Structure(name, info.name(),
				fmt.Sprintf("%s already used by variant %s", info.typ, l.variants[j].name())))
		}
		l.byType[info.typ] = i
		l.variants[i] = info
		table.Variants[i] = info.desc
	}

	p, err := plan.New(table)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	l.plan = p

	if lazy {
		l.gates = make([]gate, len(variants))
	} else if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, loaded := registry.LoadOrStore(ut, l); loaded {
		return nil, errors.Duplicate(name)
	}
	for i, info := range l.variants {
		info.index = i
	}

	Logger().Debug("registered layout",
		zap.String("type", name),
		zap.Int("variants", p.Len()),
		zap.Uint("tag_bits", p.TagBits),
		zap.Uintptr("min_align", p.MinAlign),
		zap.Stringer("storage", p.Storage),
		zap.Bool("lazy", lazy))
	return l, nil
}

// Plan returns the validated tag plan.
func (l *Layout[T]) Plan() *plan.Plan { return l.plan }

// Name returns the union type name.
func (l *Layout[T]) Name() string { return l.plan.Name }

// Len returns the number of variants.
func (l *Layout[T]) Len() int { return len(l.variants) }

// VariantName returns the name of the i-th variant.
func (l *Layout[T]) VariantName(i int) string { return l.variants[i].name() }

// VariantOf returns the ordinal of the variant v belongs to.
func (l *Layout[T]) VariantOf(v T) (int, bool) {
	i, ok := l.byType[reflect.TypeOf(any(v))]
	return i, ok
}

// check applies the lazy alignment gate of variant i.
func (l *Layout[T]) check(i int) {
	if l.gates == nil {
		return
	}
	g := &l.gates[i]
	g.once.Do(func() {
		g.err = l.plan.CheckVariant(i)
		if g.err != nil {
			Logger().Error("variant cannot be compacted",
				zap.String("type", l.plan.Name),
				zap.String("variant", l.variants[i].name()),
				zap.Uint("tag_bits", l.plan.TagBits),
				zap.Uint("clear_bits", l.variants[i].desc.Witness.TagBits()),
				zap.Error(g.err))
		}
	})
	if g.err != nil {
		panic(g.err)
	}
}

// classify finds the variant of v and applies its alignment gate.
func (l *Layout[T]) classify(phase errors.Phase, v T) *variantInfo[T] {
	i, ok := l.VariantOf(v)
	if !ok {
		panic(errors.UnknownVariant(phase, l.plan.Name, any(v)))
	}
	l.check(i)
	return l.variants[i]
}

func (l *Layout[T]) at(phase errors.Phase, tag uintptr) *variantInfo[T] {
	if tag >= uintptr(len(l.variants)) {
		panic(errors.InvalidVariant(phase, l.plan.Name, uint64(tag), len(l.variants)))
	}
	return l.variants[tag]
}

// encodePointer converts v into a tagged pointer word.
func (l *Layout[T]) encodePointer(phase errors.Phase, v T) unsafe.Pointer {
	l.requireStorage(phase, plan.StoragePointer)
	info := l.classify(phase, v)
	if info.kind() == align.KindUnit {
		return codec.EncodeNullable(uintptr(info.index), nil)
	}
	p := info.ptrOf(v)
	if p == nil {
		if !info.kind().Nullable() {
			panic(errors.New(phase, errors.KindNilPayload).
				Type(l.plan.Name).
				Variant(info.name()).
				Detail("nil payload for a non-optional pointer").
				Build())
		}
		return codec.EncodeNullable(uintptr(info.index), nil)
	}
	if !codec.PointerFits(p, l.plan.Mask) {
		panic(errors.New(phase, errors.KindMisaligned).
			Type(l.plan.Name).
			Variant(info.name()).
			Value(uintptr(p)).
			Detail("payload address %#x has tag bits set", uintptr(p)).
			Build())
	}
	return codec.EncodePointer(uintptr(info.index), p)
}

// decodePointer splits a tagged pointer word into its variant and payload.
func (l *Layout[T]) decodePointer(phase errors.Phase, w unsafe.Pointer) (*variantInfo[T], unsafe.Pointer) {
	tag, p := codec.DecodeNullable(w, l.plan.Mask)
	return l.at(phase, tag), p
}

func (l *Layout[T]) encodeScalar(phase errors.Phase, v T) uintptr {
	l.requireStorage(phase, plan.StorageScalar)
	info := l.classify(phase, v)
	if info.kind() == align.KindUnit {
		return uintptr(info.index)
	}
	b := info.bitsOf(v)
	if !codec.Fits(b, l.plan.Mask) {
		panic(errors.New(phase, errors.KindMisaligned).
			Type(l.plan.Name).
			Variant(info.name()).
			Value(b).
			Detail("custom word %#x has tag bits set", b).
			Build())
	}
	return codec.Encode(uintptr(info.index), b)
}

func (l *Layout[T]) decodeScalar(phase errors.Phase, w uintptr) (*variantInfo[T], uintptr) {
	tag, b := codec.Decode(w, l.plan.Mask)
	return l.at(phase, tag), b
}

func (l *Layout[T]) requireStorage(phase errors.Phase, s plan.Storage) {
	if l.plan.Storage != s {
		panic(errors.New(phase, errors.KindStorageMismatch).
			Type(l.plan.Name).
			Detail("layout uses %s storage, not %s", l.plan.Storage, s).
			Build())
	}
}

// Construct consumes v into a compact value.
func (l *Layout[T]) Construct(v T) Compact[T] {
	return Compact[T]{w: l.encodePointer(errors.PhaseConstruct, v)}
}
